// Package main 提供 flowbus 命令行入口
//
// 启动一个 FlowBus 运行时，执行演示场景，并可选地通过 HTTP 暴露 Prometheus 指标。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-flowbus"
	"github.com/dep2p/go-flowbus/pkg/lib/log"
)

var logger = log.Logger("flowbus/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 运行时参数
	// ─────────────────────────────────────────────────────────────────────
	configFile = flag.String("config", "", "配置文件路径（.yaml / .yml / .json）")
	preset     = flag.String("preset", "", "预设配置 (development/production/strict/test)")
	scenario   = flag.String("scenario", "all", "演示场景 (transient/sticky/lifecycle/all)")
	wait       = flag.Bool("wait", false, "场景结束后保持运行，直到收到退出信号")

	// ─────────────────────────────────────────────────────────────────────
	// 指标参数
	// ─────────────────────────────────────────────────────────────────────
	metricsAddr = flag.String("metrics-addr", "", "Prometheus 指标监听地址，如 :9090（为空不启用）")

	// ─────────────────────────────────────────────────────────────────────
	// 日志参数
	// ─────────────────────────────────────────────────────────────────────
	logFile  = flag.String("log", "", "日志文件路径（为空输出到 stderr）")
	logLevel = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(flowbus.VersionInfo())
		return nil
	}

	settings := cliSettings{
		configFile: *configFile,
		preset:     *preset,
		logFile:    *logFile,
		logLevel:   *logLevel,
	}
	applyEnvOverrides(&settings, os.Getenv)

	var registry *prometheus.Registry
	if *metricsAddr != "" {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	opts, err := settings.options(registry)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("启动 flowbus", "version", flowbus.Version, "commit", flowbus.GitCommit, "buildDate", flowbus.BuildDate)
	rt, err := flowbus.Start(ctx, opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() {
		if err := rt.Stop(context.Background()); err != nil {
			logger.Warn("停止运行时失败", "err", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	if registry != nil {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           metricsHandler(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("指标服务已启动", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer func() {
			if !*wait {
				stop()
			}
		}()
		if err := runScenarios(gctx, rt, *scenario, os.Stdout); err != nil {
			return err
		}
		printSummary(rt)
		if *wait {
			fmt.Println("按 Ctrl+C 退出")
			<-gctx.Done()
		}
		return nil
	})

	return g.Wait()
}

// metricsHandler 返回指标 HTTP 处理器
func metricsHandler(registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	return mux
}

// printSummary 打印运行时指标摘要
func printSummary(rt *flowbus.Runtime) {
	m := rt.Metrics()
	fmt.Println("── summary ──")
	fmt.Printf("posted=%d delivered=%d dropped=%d panics=%d active=%d\n",
		m.Posted(), m.Delivered, m.Dropped(), m.HandlerPanics, m.ActiveSubscriptions)
}

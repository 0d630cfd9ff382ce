package flowbus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-flowbus/config"
	"github.com/dep2p/go-flowbus/pkg/lib/log"
	"github.com/dep2p/go-flowbus/tests/testutil"
)

const waitTimeout = 2 * time.Second

type loginEvent struct{ Name string }

type themeChanged struct{ Dark bool }

func (themeChanged) EventType() string { return "ui.theme" }

// newTestRuntime 创建使用测试预设的运行时，测试结束时停止
func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()

	rt, err := New(append([]Option{WithPreset(PresetTest)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

// ════════════════════════════════════════════════════════════════════════════
//                              构建
// ════════════════════════════════════════════════════════════════════════════

func TestNew_Defaults(t *testing.T) {
	rt := newTestRuntime(t)

	require.NotNil(t, rt.Bus())
	require.NotNil(t, rt.Lifecycle())
	assert.Equal(t, StateInitialized, rt.Lifecycle().CurrentState())
	assert.False(t, rt.IsStarted())
	assert.True(t, rt.Config().Bus.AllowImplicitTypes)
}

func TestNew_OptionError(t *testing.T) {
	_, err := New(WithPreset("mobile"))
	assert.Error(t, err)

	_, err = New(WithLogLevel("loud"))
	assert.Error(t, err)

	_, err = New(WithConfig(nil))
	assert.Error(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Bus.MaxPending = -1

	_, err := New(WithConfig(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_pending")
}

func TestResolveConfig(t *testing.T) {
	t.Run("config and file are exclusive", func(t *testing.T) {
		o := newOptions()
		require.NoError(t, WithConfig(config.NewConfig())(o))
		require.NoError(t, WithConfigFile("flowbus.yaml")(o))

		_, err := o.resolveConfig()
		assert.Error(t, err)
	})

	t.Run("config is copied", func(t *testing.T) {
		base := config.NewConfig()
		o := newOptions()
		require.NoError(t, WithConfig(base)(o))

		cfg, err := o.resolveConfig()
		require.NoError(t, err)
		cfg.Bus.MaxPending = 99
		assert.Equal(t, 0, base.Bus.MaxPending)
	})

	t.Run("preset then overrides", func(t *testing.T) {
		o := newOptions()
		require.NoError(t, WithPreset(PresetDevelopment)(o))
		require.NoError(t, WithLogLevel("error")(o))
		require.NoError(t, WithLogFile("logs/bus.log")(o))

		cfg, err := o.resolveConfig()
		require.NoError(t, err)
		assert.True(t, cfg.Bus.AllowImplicitTypes)
		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, "logs/bus.log", cfg.Log.File)
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flowbus.yaml")
		data := []byte("bus:\n  max_pending: 32\n  allow_implicit_types: true\n")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		o := newOptions()
		require.NoError(t, WithConfigFile(path)(o))

		cfg, err := o.resolveConfig()
		require.NoError(t, err)
		assert.Equal(t, 32, cfg.Bus.MaxPending)
		assert.True(t, cfg.Bus.AllowImplicitTypes)
	})
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

func TestRuntime_StartStop(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	require.NoError(t, rt.Start(ctx))
	assert.True(t, rt.IsStarted())
	assert.Equal(t, StateResumed, rt.Lifecycle().CurrentState())
	assert.ErrorIs(t, rt.Start(ctx), ErrAlreadyStarted)

	rec := testutil.NewRecorder[loginEvent]()
	sub, err := Subscribe(rt.Bus(), rec.Record,
		WithLifecycle(rt.Lifecycle()),
		ActiveState(StateStarted),
	)
	require.NoError(t, err)

	testutil.WaitEmission(t, rt.Bus().Post(loginEvent{Name: "alice"}), waitTimeout)
	assert.Equal(t, []loginEvent{{Name: "alice"}}, rec.WaitLen(t, 1, waitTimeout))

	require.NoError(t, rt.Stop(ctx))
	testutil.WaitDone(t, sub.Done(), waitTimeout, "订阅应随运行时停止结束")
	assert.Error(t, sub.Err())
	assert.Equal(t, StateDestroyed, rt.Lifecycle().CurrentState())
	assert.False(t, rt.IsStarted())

	assert.NoError(t, rt.Stop(ctx))
	assert.ErrorIs(t, rt.Start(ctx), ErrRuntimeClosed)
	assert.ErrorIs(t, rt.Bus().Post(loginEvent{}).Wait(ctx), ErrClosed)
}

func TestRuntime_StopWithoutStart(t *testing.T) {
	rt := newTestRuntime(t)

	sub, err := Subscribe(rt.Bus(), func(loginEvent) {})
	require.NoError(t, err)

	require.NoError(t, rt.Close())
	testutil.WaitDone(t, sub.Done(), waitTimeout, "未启动时停止也应关闭总线")
	assert.ErrorIs(t, sub.Err(), ErrClosed)
	assert.Equal(t, StateDestroyed, rt.Lifecycle().CurrentState())
}

func TestStart_Convenience(t *testing.T) {
	rt, err := Start(context.Background(), WithPreset(PresetTest))
	require.NoError(t, err)
	defer rt.Close()

	assert.True(t, rt.IsStarted())
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件
// ════════════════════════════════════════════════════════════════════════════

func TestRuntime_Metrics(t *testing.T) {
	rt := newTestRuntime(t)
	require.NoError(t, rt.Start(context.Background()))

	rec := testutil.NewRecorder[loginEvent]()
	_, err := Subscribe(rt.Bus(), rec.Record)
	require.NoError(t, err)

	testutil.WaitEmission(t, rt.Bus().Post(loginEvent{Name: "a"}), waitTimeout)
	testutil.WaitEmission(t, rt.Bus().Post(themeChanged{Dark: true}, PostSticky()), waitTimeout)
	rec.WaitLen(t, 1, waitTimeout)

	testutil.Eventually(t, waitTimeout, func() bool {
		return rt.Metrics().Delivered == 1
	}, "应统计一次投递")

	snap := rt.Metrics()
	assert.Equal(t, int64(1), snap.PostedTransient)
	assert.Equal(t, int64(1), snap.PostedSticky)
	assert.Equal(t, int64(1), snap.ActiveSubscriptions)
	assert.Equal(t, TypeID("ui.theme"), rt.Bus().Stats().StickyType)
}

func TestRuntime_MetricsRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt, err := New(WithMetricsRegisterer(reg), WithLogLevel("warn"))
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))

	count, err := promtestutil.GatherAndCount(reg, "flowbus_active_subscriptions")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, rt.Stop(context.Background()))

	count, err = promtestutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRuntime_MetricsDisabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt := newTestRuntime(t, WithMetricsRegisterer(reg))
	require.NoError(t, rt.Start(context.Background()))

	count, err := promtestutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRuntime_PanicHandler(t *testing.T) {
	var got atomic.Value
	rt := newTestRuntime(t,
		WithClock(clock.NewMock()),
		WithPanicHandler(func(info PanicInfo) { got.Store(info) }),
	)

	sub, err := Subscribe(rt.Bus(), func(loginEvent) { panic("boom") })
	require.NoError(t, err)

	rt.Bus().Post(loginEvent{})
	testutil.WaitDone(t, sub.Done(), waitTimeout, "panic 后订阅应结束")
	assert.ErrorIs(t, sub.Err(), ErrHandlerPanic)

	info, ok := got.Load().(PanicInfo)
	require.True(t, ok)
	assert.Equal(t, sub.ID(), info.SubscriptionID)
	assert.Equal(t, "boom", info.Value)
}

func TestRuntime_FxOptions(t *testing.T) {
	var injected EventBus
	rt := newTestRuntime(t, WithFxOptions(
		fx.Invoke(func(bus EventBus) { injected = bus }),
	))

	assert.Same(t, rt.Bus(), injected)
}

func TestRuntime_LogFile(t *testing.T) {
	t.Cleanup(func() { log.SetOutputWithLevel(os.Stderr, log.LevelWarn, "text") })

	path := filepath.Join(t.TempDir(), "flowbus.log")
	rt, err := New(
		WithPreset(PresetTest),
		WithLogFile(path),
		WithLogLevel("info"),
	)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	require.NoError(t, rt.Stop(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "运行时已启动")
}

// ════════════════════════════════════════════════════════════════════════════
//                              类型化 API
// ════════════════════════════════════════════════════════════════════════════

func TestTypedAPI(t *testing.T) {
	rt := newTestRuntime(t, WithPreset(PresetStrict))
	bus := rt.Bus()
	ctx := context.Background()

	_, err := Subscribe(bus, func(loginEvent) {})
	assert.ErrorIs(t, err, ErrUnregisteredType)

	require.NoError(t, Register[loginEvent](bus, "auth.login"))
	id, err := TypeIDOf[loginEvent](bus)
	require.NoError(t, err)
	assert.Equal(t, TypeID("auth.login"), id)

	id, err = TypeIDOf[themeChanged](bus)
	require.NoError(t, err)
	assert.Equal(t, TypeID("ui.theme"), id)

	testutil.WaitEmission(t, bus.Post(themeChanged{Dark: true}, PostSticky()), waitTimeout)

	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()
	theme, err := Next[themeChanged](waitCtx, bus, ObserveSticky())
	require.NoError(t, err)
	assert.True(t, theme.Dark)
}

func TestTypedAPI_ObserveUntilCancel(t *testing.T) {
	rt := newTestRuntime(t)
	bus := rt.Bus()

	ctx, cancel := context.WithCancel(context.Background())
	rec := testutil.NewRecorder[loginEvent]()
	done := make(chan error, 1)
	go func() {
		done <- Observe(ctx, bus, func(e loginEvent) {
			rec.Record(e)
			cancel()
		})
	}()

	testutil.Eventually(t, waitTimeout, func() bool {
		return bus.Stats().Subscriptions == 1
	}, "Observe 应已挂接")
	bus.Post(loginEvent{Name: "bob"})

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(waitTimeout):
		t.Fatal("Observe 未返回")
	}
	assert.Equal(t, []loginEvent{{Name: "bob"}}, rec.Values())
}

func TestStandaloneComponents(t *testing.T) {
	owner := NewLifecycle("screen")
	bus := NewBus(BusWithConfig(config.BusConfig{AllowImplicitTypes: true, DefaultActiveState: "initialized"}))
	defer bus.Close()

	rec := testutil.NewRecorder[loginEvent]()
	sub, err := Subscribe(bus, rec.Record,
		WithLifecycle(owner),
		ActiveState(StateResumed),
		DropWhenInactive(),
	)
	require.NoError(t, err)

	testutil.WaitEmission(t, bus.Post(loginEvent{Name: "dropped"}), waitTimeout)
	require.NoError(t, owner.MoveTo(StateResumed))
	testutil.WaitEmission(t, bus.Post(loginEvent{Name: "kept"}), waitTimeout)

	assert.Equal(t, []loginEvent{{Name: "kept"}}, rec.WaitLen(t, 1, waitTimeout))

	owner.Destroy()
	testutil.WaitDone(t, sub.Done(), waitTimeout, "生命周期终止后订阅应结束")
	assert.ErrorIs(t, sub.Err(), ErrLifecycleDestroyed)
}

func TestPresets(t *testing.T) {
	for _, p := range AvailablePresets() {
		assert.True(t, IsValidPreset(p.Name))
		cfg := GetConfigByPreset(p.Name)
		require.NotNil(t, cfg, p.Name)
		assert.NoError(t, cfg.Validate())
	}
	assert.False(t, IsValidPreset("server"))
	assert.Nil(t, GetConfigByPreset("server"))
	assert.Equal(t, GetDefaultConfig(), GetConfigByPreset(""))
}

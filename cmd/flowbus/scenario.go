package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dep2p/go-flowbus"
)

// ============================================================================
//                              演示事件
// ============================================================================

// tick 瞬时通道上的计数事件
type tick struct{ N int }

// session 粘性通道上的当前会话
type session struct{ User string }

func (session) EventType() string { return "demo.session" }

// scenarioTimeout 单个演示场景的最长执行时间
const scenarioTimeout = 5 * time.Second

// scenarioFunc 演示场景
type scenarioFunc func(ctx context.Context, rt *flowbus.Runtime, out io.Writer) error

// scenarios 可用的演示场景
var scenarios = map[string]scenarioFunc{
	"transient": runTransient,
	"sticky":    runSticky,
	"lifecycle": runLifecycle,
}

// scenarioNames 按名称排序的场景列表
func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runScenarios 执行 name 指定的场景，"all" 依次执行全部
func runScenarios(ctx context.Context, rt *flowbus.Runtime, name string, out io.Writer) error {
	if name == "all" {
		for _, n := range scenarioNames() {
			if err := runScenarios(ctx, rt, n, out); err != nil {
				return err
			}
		}
		return nil
	}

	fn, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q (available: all, %v)", name, scenarioNames())
	}

	sctx, cancel := context.WithTimeout(ctx, scenarioTimeout)
	defer cancel()

	fmt.Fprintf(out, "── %s ──\n", name)
	logger.Info("执行演示场景", "scenario", name)
	if err := fn(sctx, rt, out); err != nil {
		return fmt.Errorf("scenario %s: %w", name, err)
	}
	return nil
}

// ============================================================================
//                              场景实现
// ============================================================================

// runTransient 只有发射时已挂接的订阅者能收到瞬时事件
func runTransient(ctx context.Context, rt *flowbus.Runtime, out io.Writer) error {
	bus := rt.Bus()
	if err := flowbus.Register[tick](bus, "demo.tick"); err != nil {
		return err
	}

	early := newCollector[tick]()
	sub, err := flowbus.Subscribe(bus, early.add, flowbus.WithName("early"))
	if err != nil {
		return err
	}
	defer sub.Cancel()

	for i := 1; i <= 3; i++ {
		if err := bus.Post(tick{N: i}).Wait(ctx); err != nil {
			return err
		}
	}

	late := newCollector[tick]()
	lateSub, err := flowbus.Subscribe(bus, late.add, flowbus.WithName("late"))
	if err != nil {
		return err
	}
	defer lateSub.Cancel()

	got, err := early.waitN(ctx, 3)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "early subscriber received %v\n", got)
	fmt.Fprintf(out, "late subscriber received %v\n", late.values())
	return nil
}

// runSticky 粘性通道重放最近一个值，Clear 之后不再重放
func runSticky(ctx context.Context, rt *flowbus.Runtime, out io.Writer) error {
	bus := rt.Bus()

	for _, user := range []string{"alice", "bob"} {
		if err := bus.Post(session{User: user}, flowbus.PostSticky()).Wait(ctx); err != nil {
			return err
		}
	}

	current, err := flowbus.Next[session](ctx, bus, flowbus.ObserveSticky())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "late sticky subscriber replayed %q\n", current.User)

	if err := bus.Clear().Wait(ctx); err != nil {
		return err
	}

	after := newCollector[session]()
	sub, err := flowbus.Subscribe(bus, after.add, flowbus.ObserveSticky())
	if err != nil {
		return err
	}
	defer sub.Cancel()

	// 哨兵后的粘性缓冲为空，这次发射之前不会有重放
	if err := bus.Post(session{User: "carol"}, flowbus.PostSticky()).Wait(ctx); err != nil {
		return err
	}
	got, err := after.waitN(ctx, 1)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "after clear, subscriber received %v\n", got)
	return nil
}

// runLifecycle 暂停策略下非活跃期间的瞬时事件不会投递，终止后订阅结束
func runLifecycle(ctx context.Context, rt *flowbus.Runtime, out io.Writer) error {
	bus := rt.Bus()
	if err := flowbus.Register[tick](bus, "demo.tick"); err != nil {
		return err
	}

	owner := flowbus.NewLifecycle("demo-screen")
	if err := owner.MoveTo(flowbus.StateCreated); err != nil {
		return err
	}

	seen := newCollector[tick]()
	sub, err := flowbus.Subscribe(bus, seen.add,
		flowbus.WithLifecycle(owner),
		flowbus.ActiveState(flowbus.StateStarted),
		flowbus.WithName("screen"),
	)
	if err != nil {
		return err
	}

	if err := bus.Post(tick{N: 1}).Wait(ctx); err != nil {
		return err
	}
	if err := owner.MoveTo(flowbus.StateStarted); err != nil {
		return err
	}
	if err := bus.Post(tick{N: 2}).Wait(ctx); err != nil {
		return err
	}

	got, err := seen.waitN(ctx, 1)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "while created: missed, after start: received %v\n", got)

	owner.Destroy()
	select {
	case <-sub.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	fmt.Fprintf(out, "after destroy: subscription ended (%v)\n", sub.Err())
	return nil
}

// ============================================================================
//                              辅助类型
// ============================================================================

// collector 收集处理函数收到的值
type collector[T any] struct {
	mu     sync.Mutex
	vals   []T
	notify chan struct{}
}

func newCollector[T any]() *collector[T] {
	return &collector[T]{notify: make(chan struct{}, 1)}
}

func (c *collector[T]) add(v T) {
	c.mu.Lock()
	c.vals = append(c.vals, v)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *collector[T]) values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.vals...)
}

// waitN 等待至少收到 n 个值
func (c *collector[T]) waitN(ctx context.Context, n int) ([]T, error) {
	for {
		if vals := c.values(); len(vals) >= n {
			return vals, nil
		}
		select {
		case <-c.notify:
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %d values: %w", n, ctx.Err())
		}
	}
}

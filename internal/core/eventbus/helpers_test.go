package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

// 测试事件类型
type ping struct{ N int }

type pong struct{ Msg string }

type namedEvent struct{}

func (namedEvent) EventType() string { return "test.named" }

type namedPtrEvent struct{ V int }

func (e *namedPtrEvent) EventType() string { return "test.named_ptr" }

// newTestBus 创建注册好 ping/pong 的总线，测试结束时关闭
func newTestBus(t *testing.T, opts ...Option) *Bus {
	t.Helper()

	bus := NewBus(opts...)
	require.NoError(t, Register[ping](bus, "test.ping"))
	require.NoError(t, Register[pong](bus, "test.pong"))
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

// blockingHandler 第一次调用时通知 entered 并阻塞到 release 关闭
type blockingHandler struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingHandler() *blockingHandler {
	return &blockingHandler{
		entered: make(chan struct{}, 64),
		release: make(chan struct{}),
	}
}

func (h *blockingHandler) wrap(next func(ping)) func(ping) {
	return func(p ping) {
		h.entered <- struct{}{}
		<-h.release
		next(p)
	}
}

func (h *blockingHandler) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-h.entered:
	case <-time.After(waitTimeout):
		t.Fatal("处理函数未被调用")
	}
}

func numbers(ps []ping) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.N
	}
	return out
}

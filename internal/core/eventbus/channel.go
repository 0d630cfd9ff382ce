package eventbus

import (
	"sync"

	"github.com/dep2p/go-flowbus/pkg/types"
)

// channel 投递通道
//
// 粘性通道保留最近一个信封（深度 1），挂接时重放；瞬时通道无缓冲。
// 挂接与扇出都在 mu 下进行，挂接中的订阅者不会重复收到或漏掉同一信封。
type channel struct {
	kind types.Channel

	mu    sync.Mutex
	sinks []*Subscription
	last  *types.Envelope
}

func newChannel(kind types.Channel) *channel {
	return &channel{kind: kind}
}

// publish 扇出信封，返回当时挂接的订阅者数量
func (c *channel) publish(env types.Envelope) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kind == types.ChannelSticky {
		e := env
		c.last = &e
	}
	for _, sub := range c.sinks {
		sub.offer(env)
	}
	return len(c.sinks)
}

// attach 挂接订阅者，粘性通道重放缓冲中的信封
//
// 缓冲中为哨兵时视为空，不重放。
func (c *channel) attach(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sub.isClosed() {
		return
	}
	for _, s := range c.sinks {
		if s == sub {
			return
		}
	}
	c.sinks = append(c.sinks, sub)

	if c.last != nil && !c.last.IsSentinel() {
		sub.offer(*c.last)
	}
}

func (c *channel) detach(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.sinks {
		if s == sub {
			c.sinks[i] = c.sinks[len(c.sinks)-1]
			c.sinks[len(c.sinks)-1] = nil
			c.sinks = c.sinks[:len(c.sinks)-1]
			return
		}
	}
}

// latest 返回缓冲中的信封（哨兵或空时返回 false）
func (c *channel) latest() (types.Envelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil || c.last.IsSentinel() {
		return types.Envelope{}, false
	}
	return *c.last, true
}

func (c *channel) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sinks)
}

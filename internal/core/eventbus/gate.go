package eventbus

import (
	"sync"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// gate 生命周期门控
//
// 两种策略：
//   - 暂停（默认）：满足阈值时挂接，不满足时摘除并清空收件箱；重新挂接时粘性通道重放
//   - 丢弃：始终挂接，交付与调用前各检查一次状态，不满足则丢弃
//
// 两种策略在 next 取出信封时都会再检查一次状态：暂停策略下摘除尚未完成时
// 已入队的信封在此被丢弃，计入 DropInactive。
//
// 收到任何通知都重新读取 owner 的当前状态，通知只作为触发。
// 终止状态永久取消订阅，之后的过期通知被忽略。
type gate struct {
	sub       *Subscription
	owner     pkgif.LifecycleOwner
	threshold types.LifecycleState
	drop      bool

	// mu 串行化状态处理
	mu sync.Mutex

	regMu      sync.Mutex
	unregister func()
	stopped    bool
}

func newGate(sub *Subscription, owner pkgif.LifecycleOwner, threshold types.LifecycleState, drop bool) *gate {
	return &gate{
		sub:       sub,
		owner:     owner,
		threshold: threshold,
		drop:      drop,
	}
}

// start 注册状态回调并按当前状态完成首次挂接
func (g *gate) start() {
	unregister := g.owner.OnStateChange(g.onState)

	g.regMu.Lock()
	if g.stopped {
		g.regMu.Unlock()
		if unregister != nil {
			unregister()
		}
	} else {
		g.unregister = unregister
		g.regMu.Unlock()
	}

	g.onState(g.owner.CurrentState())
}

// stop 注销状态回调（可重复调用）
func (g *gate) stop() {
	g.regMu.Lock()
	if g.stopped {
		g.regMu.Unlock()
		return
	}
	g.stopped = true
	unregister := g.unregister
	g.unregister = nil
	g.regMu.Unlock()

	if unregister != nil {
		unregister()
	}
}

// eligible 不持有任何门控锁，可在通道锁和订阅锁内调用
func (g *gate) eligible() bool {
	return g.owner.CurrentState().IsEligible(g.threshold)
}

func (g *gate) onState(notified types.LifecycleState) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sub.isClosed() {
		return
	}

	current := g.owner.CurrentState()
	if notified.IsTerminal() || current.IsTerminal() {
		g.sub.cancelWith(ErrLifecycleDestroyed)
		return
	}

	if g.drop || current.IsEligible(g.threshold) {
		g.sub.attach()
		return
	}
	g.sub.detach()
}

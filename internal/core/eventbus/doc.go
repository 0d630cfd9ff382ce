// Package eventbus 实现进程内事件总线
//
// 提供类型过滤的发布/订阅机制，支持：
//   - 瞬时通道：只投递给发射时已挂接的订阅者
//   - 粘性通道：保留最近一个信封，新订阅者挂接时重放
//   - Clear：在两条通道上发射哨兵，清空粘性缓冲
//   - 生命周期门控：暂停（默认）或丢弃两种非活跃策略
//   - 处理函数 panic 隔离：只拆除出错的订阅
//
// # 快速开始
//
//	bus := eventbus.NewBus()
//	defer bus.Close()
//
//	// 注册类型标识（或让事件类型实现 EventType() string）
//	_ = eventbus.Register[UserLoggedIn](bus, "user.logged_in")
//
//	// 订阅
//	sub, _ := eventbus.Subscribe(bus, func(e UserLoggedIn) {
//	    // 处理事件
//	}, eventbus.ObserveSticky())
//	defer sub.Cancel()
//
//	// 发射（不阻塞）
//	bus.Post(UserLoggedIn{Name: "alice"}, eventbus.PostSticky())
//
// # Fx 模块
//
//	app := fx.New(
//	    eventbus.Module(),
//	    fx.Invoke(func(bus pkgif.EventBus) {
//	        // ...
//	    }),
//	)
//
// # 并发模型
//
// 所有发射进入无界队列，由单一分发协程按 Post 调用顺序扇出；
// 每个订阅有自己的收件箱和处理协程。
// 锁顺序：通道锁 → 订阅锁 → LifecycleOwner 内部锁。
//
// 同一发射方的事件按发射顺序到达每个订阅者；
// 不同发射方之间按到达分发队列的顺序。
package eventbus

// Package flowbus 提供进程内的类型化事件总线
//
// FlowBus 在两条投递通道上提供按类型过滤的发布订阅：
//   - 瞬时通道：只有发射时已挂接的订阅者能收到
//   - 粘性通道：缓冲最近一个信封，新订阅者挂接时立即重放
//
// 订阅可以绑定生命周期来源，只在其状态不低于阈值时接收事件；
// 生命周期到达 Destroyed 时订阅自动结束。
//
// # 快速开始
//
//	rt, err := flowbus.Start(ctx, flowbus.WithPreset(flowbus.PresetDevelopment))
//	if err != nil {
//	    return err
//	}
//	defer rt.Stop(context.Background())
//
//	sub, err := flowbus.Subscribe(rt.Bus(), func(e UserLoggedIn) {
//	    fmt.Println("login:", e.Name)
//	})
//	if err != nil {
//	    return err
//	}
//	defer sub.Cancel()
//
//	rt.Bus().Post(UserLoggedIn{Name: "alice"})
//
// # 类型标识
//
// 事件按类型标识匹配，解析顺序为：
//  1. 显式注册（Register / RegisterType）
//  2. 类型实现的 EventType() string
//  3. 包路径限定的 Go 类型名（需开启 AllowImplicitTypes）
//
// 无法解析时订阅和发射立即失败。
//
// # 生命周期
//
//	owner := flowbus.NewLifecycle("screen")
//	flowbus.Subscribe(bus, onEvent,
//	    flowbus.WithLifecycle(owner),
//	    flowbus.ActiveState(flowbus.StateStarted),
//	)
//
// 默认在非活跃期间暂停（脱离通道，期间的瞬时事件不再投递）；
// 使用 DropWhenInactive 则保持挂接并丢弃非活跃期间的事件。
package flowbus

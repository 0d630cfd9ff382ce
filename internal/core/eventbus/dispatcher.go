package eventbus

import (
	"runtime/debug"
	"sync"
)

// dispatcher 单一后台分发协程
//
// 队列无界，submit 永不阻塞；任务严格按提交顺序执行。
type dispatcher struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go d.loop()
	return d
}

// submit 提交任务，关闭后返回 false
func (d *dispatcher) submit(task func()) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.queue = append(d.queue, task)
	d.mu.Unlock()

	d.signal()
	return true
}

func (d *dispatcher) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// pending 返回排队中的任务数
func (d *dispatcher) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// close 拒绝新任务，等待已排队任务执行完毕
func (d *dispatcher) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.signal()
	<-d.done
}

func (d *dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) loop() {
	defer close(d.done)

	for {
		d.mu.Lock()
		tasks := d.queue
		d.queue = nil
		closed := d.closed
		d.mu.Unlock()

		if len(tasks) == 0 {
			if closed {
				return
			}
			<-d.wake
			continue
		}

		for i, task := range tasks {
			tasks[i] = nil
			d.run(task)
		}
	}
}

func (d *dispatcher) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("分发任务 panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}

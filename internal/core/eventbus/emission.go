package eventbus

import (
	"context"
	"sync"
)

// emission 一次发射的完成句柄
type emission struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newEmission() *emission {
	return &emission{done: make(chan struct{})}
}

func failedEmission(err error) *emission {
	e := newEmission()
	e.complete(err)
	return e
}

func (e *emission) complete(err error) {
	e.once.Do(func() {
		e.err = err
		close(e.done)
	})
}

// Done 实现 Emission.Done
func (e *emission) Done() <-chan struct{} {
	return e.done
}

// Wait 实现 Emission.Wait
func (e *emission) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return e.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err 实现 Emission.Err
func (e *emission) Err() error {
	select {
	case <-e.done:
		return e.err
	default:
		return nil
	}
}

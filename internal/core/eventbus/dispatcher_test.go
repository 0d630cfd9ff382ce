package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDispatcher_Order 测试任务按提交顺序执行
func TestDispatcher_Order(t *testing.T) {
	d := newDispatcher()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 500; i++ {
		i := i
		assert.True(t, d.submit(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}
	d.close()

	assert.Len(t, got, 500)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

// TestDispatcher_SubmitAfterClose 测试关闭后拒绝任务
func TestDispatcher_SubmitAfterClose(t *testing.T) {
	d := newDispatcher()
	d.close()

	assert.False(t, d.submit(func() {}))
	assert.Equal(t, 0, d.pending())
}

// TestDispatcher_RecoversPanic 测试任务 panic 不影响后续任务
func TestDispatcher_RecoversPanic(t *testing.T) {
	d := newDispatcher()

	ran := false
	d.submit(func() { panic("task failure") })
	d.submit(func() { ran = true })
	d.close()

	assert.True(t, ran)
}

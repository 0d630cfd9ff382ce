package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dep2p/go-flowbus/pkg/interfaces"
)

// WaitForCondition 等待条件满足或超时
//
// 参数：
//   - t: 测试对象
//   - timeout: 超时时间
//   - interval: 检查间隔
//   - condition: 条件函数，返回 true 表示条件满足
//
// 返回：条件是否满足（超时返回 false）
func WaitForCondition(t *testing.T, timeout time.Duration, interval time.Duration, condition func() bool) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 立即检查一次
	if condition() {
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if condition() {
				return true
			}
		}
	}
}

// WaitForConditionOrFail 等待条件满足，超时则 fail 测试
func WaitForConditionOrFail(t *testing.T, timeout time.Duration, interval time.Duration, condition func() bool, msg string) {
	t.Helper()

	if !WaitForCondition(t, timeout, interval, condition) {
		t.Fatalf("等待超时: %s", msg)
	}
}

// Eventually 在指定时间内重试条件检查
//
// 使用默认间隔 5ms。
//
// 示例:
//
//	testutil.Eventually(t, time.Second, func() bool {
//	    return rec.Len() == 3
//	}, "应该收到 3 个事件")
func Eventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	WaitForConditionOrFail(t, timeout, 5*time.Millisecond, condition, msg)
}

// WaitEmission 等待发射完成，超时或发射失败则 fail 测试
//
// 发射完成表示信封已交付给当时挂接的全部订阅者的收件箱，
// 处理函数可能尚未执行。
func WaitEmission(t *testing.T, em interfaces.Emission, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := em.Wait(ctx); err != nil {
		t.Fatalf("等待发射完成失败: %v", err)
	}
}

// WaitDone 等待 ch 关闭，超时则 fail 测试
func WaitDone(t *testing.T, ch <-chan struct{}, timeout time.Duration, msg string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("等待超时: %s", msg)
	}
}

// Never 在 d 时间内条件始终不满足，否则 fail 测试
func Never(t *testing.T, d time.Duration, condition func() bool, msg string) {
	t.Helper()

	if WaitForCondition(t, d, 5*time.Millisecond, condition) {
		t.Fatalf("条件不应满足: %s", msg)
	}
}

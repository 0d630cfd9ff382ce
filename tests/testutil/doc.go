// Package testutil 提供测试辅助函数
//
//   - 等待：WaitForCondition、Eventually、Never、WaitEmission、WaitDone
//   - 记录：Recorder 收集处理函数收到的值
package testutil

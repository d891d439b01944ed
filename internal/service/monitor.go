package service

import (
	"sync"
	"time"
)

// Monitor 进程内统计，后台 /api/monitor/stats 展示
type Monitor struct {
	mu sync.RWMutex

	// 订单状态流转
	Transitions        int64
	TransitionNoops    int64
	InsufficientStock  int64
	InvalidTransitions int64
	Checkouts          int64

	// 错误统计
	DBErrors      int64
	PublishErrors int64
	WorkerFailed  int64

	WorkerProcessed int64

	LastTransition time.Time
	LastDBError    time.Time
	LastPublishErr time.Time
	LastWorkerTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordTransition 记录一次生效的状态变更
func (m *Monitor) RecordTransition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transitions++
	m.LastTransition = time.Now()
}

// RecordNoop 记录幂等重复调用
func (m *Monitor) RecordNoop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TransitionNoops++
}

func (m *Monitor) RecordInsufficientStock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsufficientStock++
}

func (m *Monitor) RecordInvalidTransition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InvalidTransitions++
}

func (m *Monitor) RecordCheckout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Checkouts++
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordPublishError 记录消息发送失败
func (m *Monitor) RecordPublishError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishErrors++
	m.LastPublishErr = time.Now()
}

// RecordWorkerProcessed 记录Worker处理成功
func (m *Monitor) RecordWorkerProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerProcessed++
	m.LastWorkerTime = time.Now()
}

// RecordWorkerFailed 记录Worker处理失败
func (m *Monitor) RecordWorkerFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerFailed++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	workerSuccessRate := float64(0)
	totalWorker := m.WorkerProcessed + m.WorkerFailed
	if totalWorker > 0 {
		workerSuccessRate = float64(m.WorkerProcessed) / float64(totalWorker) * 100
	}

	return map[string]interface{}{
		"orders": map[string]interface{}{
			"checkouts":           m.Checkouts,
			"transitions":         m.Transitions,
			"noops":               m.TransitionNoops,
			"insufficient_stock":  m.InsufficientStock,
			"invalid_transitions": m.InvalidTransitions,
		},
		"errors": map[string]interface{}{
			"db":      m.DBErrors,
			"publish": m.PublishErrors,
			"worker":  m.WorkerFailed,
		},
		"worker": map[string]interface{}{
			"processed":    m.WorkerProcessed,
			"failed":       m.WorkerFailed,
			"success_rate": workerSuccessRate,
		},
		"last_events": map[string]interface{}{
			"transition":    m.LastTransition,
			"db_error":      m.LastDBError,
			"publish_error": m.LastPublishErr,
			"worker":        m.LastWorkerTime,
		},
	}
}

// Counters 扁平的计数快照，供 Prometheus 导出
func (m *Monitor) Counters() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]int64{
		"checkouts":           m.Checkouts,
		"transitions":         m.Transitions,
		"transition_noops":    m.TransitionNoops,
		"insufficient_stock":  m.InsufficientStock,
		"invalid_transitions": m.InvalidTransitions,
		"db_errors":           m.DBErrors,
		"publish_errors":      m.PublishErrors,
		"worker_processed":    m.WorkerProcessed,
		"worker_failed":       m.WorkerFailed,
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transitions = 0
	m.TransitionNoops = 0
	m.InsufficientStock = 0
	m.InvalidTransitions = 0
	m.Checkouts = 0
	m.DBErrors = 0
	m.PublishErrors = 0
	m.WorkerFailed = 0
	m.WorkerProcessed = 0
}

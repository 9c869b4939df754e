package service

import (
	"sync"
	"time"
)

// MetricsCollector tracks per-phase timings for enrollment, casting and
// counting.
type MetricsCollector struct {
	mu sync.RWMutex

	enrollmentCount     int
	enrollmentTotalTime time.Duration

	castCount     int
	castTotalTime time.Duration

	countingTime time.Duration
}

// OperationMetrics contains timing information for one phase.
type OperationMetrics struct {
	Count            int   `json:"count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// MetricsResponse provides the metrics for all phases.
type MetricsResponse struct {
	Enrollment OperationMetrics `json:"enrollment"`
	Casting    OperationMetrics `json:"casting"`
	Counting   OperationMetrics `json:"counting"`
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

func (mc *MetricsCollector) RecordEnrollment(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enrollmentCount++
	mc.enrollmentTotalTime += d
}

func (mc *MetricsCollector) RecordCast(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.castCount++
	mc.castTotalTime += d
}

func (mc *MetricsCollector) RecordCounting(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.countingTime = d
}

func (mc *MetricsCollector) Snapshot() MetricsResponse {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return MetricsResponse{
		Enrollment: OperationMetrics{
			Count:            mc.enrollmentCount,
			ProcessingTimeMs: mc.enrollmentTotalTime.Milliseconds(),
		},
		Casting: OperationMetrics{
			Count:            mc.castCount,
			ProcessingTimeMs: mc.castTotalTime.Milliseconds(),
		},
		Counting: OperationMetrics{
			Count:            1,
			ProcessingTimeMs: mc.countingTime.Milliseconds(),
		},
	}
}

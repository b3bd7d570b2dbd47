// Package monitor collects per-file metrics from indexing runs.
package monitor

import (
	"sync"
	"time"
)

type Collector interface {
	Record(metrics FileMetrics)
	Flush() RunMetrics
}

type InMemoryCollector struct {
	mu        sync.RWMutex
	runID     string
	metrics   map[string]FileMetrics
	startTime time.Time
}

func NewInMemoryCollector(runID string) *InMemoryCollector {
	return &InMemoryCollector{
		runID:     runID,
		metrics:   make(map[string]FileMetrics),
		startTime: time.Now(),
	}
}

func (c *InMemoryCollector) Record(metrics FileMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics[metrics.Source] = metrics
}

func (c *InMemoryCollector) Flush() RunMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalChunks int
	var totalDuration time.Duration

	fileMetrics := make(map[string]FileMetrics, len(c.metrics))
	for k, v := range c.metrics {
		fileMetrics[k] = v
		totalChunks += v.Chunks
		totalDuration += v.Duration
	}

	return RunMetrics{
		RunID:         c.runID,
		TotalFiles:    len(fileMetrics),
		TotalChunks:   totalChunks,
		TotalDuration: totalDuration,
		FileMetrics:   fileMetrics,
		StartTime:     c.startTime,
		EndTime:       time.Now(),
	}
}

func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]FileMetrics)
	c.startTime = time.Now()
}

type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (c *NoOpCollector) Record(metrics FileMetrics) {}

func (c *NoOpCollector) Flush() RunMetrics {
	return RunMetrics{}
}

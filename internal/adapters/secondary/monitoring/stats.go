package monitoring

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// reloadAlpha weights the newest sample of the reload time average
const reloadAlpha = 0.1

// Snapshot is a point in time copy of the preview counters
type Snapshot struct {
	StartedAt  time.Time
	LastReload time.Time

	Requests       int64
	ServerErrors   int64
	Connections    int64
	Reloads        int64
	ReloadFailures int64
	LastError      string

	// AverageReload is an exponential moving average of reload durations
	AverageReload time.Duration
}

// PreviewStats keeps preview server and live reload counters. It is safe
// for concurrent use by handlers and the reload loop.
type PreviewStats struct {
	mu    sync.RWMutex
	stats Snapshot
	now   func() time.Time
}

// NewPreviewStats creates stats whose uptime starts now
func NewPreviewStats() *PreviewStats {
	return &PreviewStats{
		stats: Snapshot{StartedAt: time.Now()},
		now:   time.Now,
	}
}

// RecordRequest counts one response; 5xx also count as server errors
func (s *PreviewStats) RecordRequest(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Requests++
	if status >= 500 {
		s.stats.ServerErrors++
	}
}

// RecordConnection counts one websocket client
func (s *PreviewStats) RecordConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Connections++
}

// RecordReload counts one re-parse. Failed reloads keep the last error but
// do not move the average.
func (s *PreviewStats) RecordReload(duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Reloads++
	s.stats.LastReload = s.now()

	if err != nil {
		s.stats.ReloadFailures++
		s.stats.LastError = err.Error()
		return
	}

	s.stats.LastError = ""
	if s.stats.AverageReload == 0 {
		s.stats.AverageReload = duration
		return
	}
	s.stats.AverageReload = time.Duration(
		float64(s.stats.AverageReload)*(1-reloadAlpha) + float64(duration)*reloadAlpha,
	)
}

// Snapshot returns a copy of the counters
func (s *PreviewStats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Uptime returns how long the stats have been collected
func (s *PreviewStats) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now().Sub(s.stats.StartedAt)
}

// Healthy reports whether the last reload succeeded
func (s *PreviewStats) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.LastError == ""
}

// HealthStatus returns the counters plus a runtime memory reading
func (s *PreviewStats) HealthStatus() map[string]interface{} {
	snap := s.Snapshot()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := map[string]interface{}{
		"healthy":    snap.LastError == "",
		"uptime":     s.Uptime().Round(time.Second).String(),
		"heap_mb":    safeUint64ToInt64(mem.HeapAlloc) / (1024 * 1024),
		"goroutines": runtime.NumGoroutine(),
		"requests": map[string]interface{}{
			"total":         snap.Requests,
			"server_errors": snap.ServerErrors,
			"websockets":    snap.Connections,
		},
		"reloads": map[string]interface{}{
			"total":           snap.Reloads,
			"failed":          snap.ReloadFailures,
			"avg_duration_ms": snap.AverageReload.Milliseconds(),
		},
	}
	if snap.LastError != "" {
		status["last_error"] = snap.LastError
	}
	return status
}

// safeUint64ToInt64 caps val at the largest int64
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}

var _ ports.PreviewMetrics = (*PreviewStats)(nil)

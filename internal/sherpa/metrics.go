package sherpa

import (
	"sync"
	"time"

	"github.com/tphakala/sherpa-go/internal/observability/metrics"
)

var (
	globalMetrics metrics.Recorder
	metricsMutex  sync.RWMutex
)

// SetMetrics installs the recorder used for handle and compute metrics.
// Passing nil disables recording.
func SetMetrics(m metrics.Recorder) {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	globalMetrics = m
}

func getMetrics() metrics.Recorder {
	metricsMutex.RLock()
	defer metricsMutex.RUnlock()
	return globalMetrics
}

// observe records the outcome of one operation: "create_offline_tts",
// "destroy_audio_tagging", "tts_generate" and so on.
func observe(operation string, start time.Time, err error) {
	m := getMetrics()
	if m == nil {
		return
	}
	if err != nil {
		m.RecordOperation(operation, "error")
		m.RecordError(operation, errorKind(err))
		return
	}
	m.RecordOperation(operation, "success")
	if !start.IsZero() {
		m.RecordDuration(operation, time.Since(start).Seconds())
	}
}

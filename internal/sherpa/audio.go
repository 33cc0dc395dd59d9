package sherpa

import (
	"time"
)

// AudioBuffer is synthesized audio copied out of the engine.
type AudioBuffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the length in whole seconds, floor(len(Samples)/SampleRate).
// It returns 0 when the sample rate is not positive.
func (a *AudioBuffer) Duration() int {
	if a.SampleRate <= 0 {
		return 0
	}
	return len(a.Samples) / a.SampleRate
}

// DurationExact returns the length with nanosecond precision.
func (a *AudioBuffer) DurationExact() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(a.Samples)) * time.Second / time.Duration(a.SampleRate)
}

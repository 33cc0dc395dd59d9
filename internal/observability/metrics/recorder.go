// Package metrics provides the Prometheus collectors for sherpa-go.
package metrics

// Recorder defines a minimal interface for recording metrics, so components
// depend on an abstraction rather than concrete collectors.
type Recorder interface {
	// RecordOperation records an operation ("create_offline_tts",
	// "transcribe", "publish") with its status ("success", "error").
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	RecordError(operation, errorType string)
}

package sherpa

import (
	"unsafe"

	"github.com/tphakala/sherpa-go/internal/native"
)

const kindOfflineRecognizer = "offline_recognizer"

// RecognizerResult is a transcription copied out of the engine.
type RecognizerResult struct {
	Text string
	// Timestamps holds per-token start times in seconds when the backend
	// reports them.
	Timestamps []float32
	Lang       string
	Emotion    string
	Event      string
}

// OfflineRecognizer owns one engine recognizer handle. Each Transcribe call
// uses its own stream, so calls may run concurrently.
type OfflineRecognizer struct {
	engine  Engine
	handle  *native.Handle
	backend string
}

// NewOfflineRecognizer creates a recognizer for the backend selected in opts.
func NewOfflineRecognizer(engine Engine, opts RecognizerOptions) (*OfflineRecognizer, error) {
	if opts.Model == nil {
		return nil, wrap(ErrNoModel, "create_"+kindOfflineRecognizer, "")
	}
	backend := opts.Model.recognizerBackend()

	h, err := openHandle(engine, kindOfflineRecognizer, backend, primaryModelPath(opts.Model),
		func(cs *native.CStrings) unsafe.Pointer {
			return engine.CreateOfflineRecognizer(BuildRecognizerConfig(cs, &opts))
		},
		engine.DestroyOfflineRecognizer)
	if err != nil {
		return nil, err
	}
	return &OfflineRecognizer{engine: engine, handle: h, backend: backend}, nil
}

// Backend names the selected recognition backend.
func (r *OfflineRecognizer) Backend() string {
	return r.backend
}

// Transcribe decodes samples (mono, [-1, 1]) recorded at sampleRate.
func (r *OfflineRecognizer) Transcribe(sampleRate int, samples []float32) (*RecognizerResult, error) {
	const operation = "transcribe"
	if err := validateSamples(sampleRate, samples); err != nil {
		err = wrap(err, operation, r.backend)
		observe(operation, zeroTime, err)
		return nil, err
	}

	var result *RecognizerResult
	err := compute(r.handle, operation, r.backend, func(p unsafe.Pointer) error {
		stream := r.engine.CreateOfflineStream(p)
		if stream == nil {
			return ErrNullStream
		}
		defer r.engine.DestroyOfflineStream(stream)

		r.engine.AcceptWaveformOffline(stream, int32(sampleRate), samples)
		r.engine.DecodeOfflineStream(p, stream)

		var err error
		result, err = extractRecognizerResult(r.engine, r.engine.GetOfflineStreamResult(stream))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close destroys the engine handle. Further calls return ErrClosed.
func (r *OfflineRecognizer) Close() error {
	return r.handle.Close()
}

// extractRecognizerResult copies a recognizer result and destroys it.
// Timestamps are optional: some backends report a token count without a
// timestamp array.
func extractRecognizerResult(engine Engine, result unsafe.Pointer) (*RecognizerResult, error) {
	if result == nil {
		return nil, ErrNullResult
	}
	defer engine.DestroyOfflineRecognizerResult(result)

	raw := engine.ReadOfflineRecognizerResult(result)
	if raw.Count < 0 {
		return nil, ErrNegativeCount
	}

	out := &RecognizerResult{
		Text:    native.GoString(raw.Text),
		Lang:    native.GoString(raw.Lang),
		Emotion: native.GoString(raw.Emotion),
		Event:   native.GoString(raw.Event),
	}
	if raw.Count > 0 && raw.Timestamps != nil {
		out.Timestamps = native.CopyFloat32s(raw.Timestamps, int(raw.Count))
	}
	return out, nil
}

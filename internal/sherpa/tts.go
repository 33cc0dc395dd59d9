package sherpa

import (
	"unsafe"

	"github.com/tphakala/sherpa-go/internal/native"
)

const kindOfflineTts = "offline_tts"

// OfflineTts owns one engine synthesis handle.
//
// Generate and GenerateWithZipvoice may be called from several goroutines;
// the engine keeps no per-call state on the handle. Close belongs to the
// owner and must not race with construction.
type OfflineTts struct {
	engine  Engine
	handle  *native.Handle
	backend string
}

// ZipvoiceRequest is one prompt-conditioned synthesis call.
type ZipvoiceRequest struct {
	Text             string
	PromptText       string
	PromptSamples    []float32
	PromptSampleRate int
	// Speed of 0 means 1.0.
	Speed float32
	// NumSteps of 0 means 4 flow matching steps.
	NumSteps int
}

// NewOfflineTts creates a synthesis handle for the backend selected in opts.
func NewOfflineTts(engine Engine, opts TtsOptions) (*OfflineTts, error) {
	if opts.Model == nil {
		return nil, wrap(ErrNoModel, "create_"+kindOfflineTts, "")
	}
	backend := opts.Model.ttsBackend()

	h, err := openHandle(engine, kindOfflineTts, backend, primaryModelPath(opts.Model),
		func(cs *native.CStrings) unsafe.Pointer {
			return engine.CreateOfflineTts(BuildTtsConfig(cs, &opts))
		},
		engine.DestroyOfflineTts)
	if err != nil {
		return nil, err
	}
	return &OfflineTts{engine: engine, handle: h, backend: backend}, nil
}

// Backend names the selected synthesis backend.
func (t *OfflineTts) Backend() string {
	return t.backend
}

// SampleRate reports the sample rate of generated audio.
func (t *OfflineTts) SampleRate() (int, error) {
	var rate int32
	err := t.handle.Use(func(p unsafe.Pointer) error {
		rate = t.engine.OfflineTtsSampleRate(p)
		return nil
	})
	return int(rate), err
}

// NumSpeakers reports how many speaker ids the model accepts.
func (t *OfflineTts) NumSpeakers() (int, error) {
	var n int32
	err := t.handle.Use(func(p unsafe.Pointer) error {
		n = t.engine.OfflineTtsNumSpeakers(p)
		return nil
	})
	return int(n), err
}

// Generate synthesizes text with speaker sid.
func (t *OfflineTts) Generate(text string, sid int, speed float32) (*AudioBuffer, error) {
	const operation = "tts_generate"
	if text == "" {
		err := wrap(ErrEmptyText, operation, t.backend)
		observe(operation, zeroTime, err)
		return nil, err
	}
	if speed == 0 {
		speed = 1
	}

	var audio *AudioBuffer
	err := compute(t.handle, operation, t.backend, func(p unsafe.Pointer) error {
		return native.WithCStrings(t.engine, func(cs *native.CStrings) error {
			raw := t.engine.OfflineTtsGenerate(p, cs.String(text), int32(sid), speed)
			var err error
			audio, err = extractGeneratedAudio(t.engine, raw)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return audio, nil
}

// GenerateWithZipvoice synthesizes req.Text in the voice of the prompt audio.
func (t *OfflineTts) GenerateWithZipvoice(req ZipvoiceRequest) (*AudioBuffer, error) {
	const operation = "tts_generate_zipvoice"
	var invalid error
	switch {
	case req.Text == "":
		invalid = ErrEmptyText
	default:
		invalid = validateSamples(req.PromptSampleRate, req.PromptSamples)
	}
	if invalid != nil {
		err := wrap(invalid, operation, t.backend)
		observe(operation, zeroTime, err)
		return nil, err
	}
	speed := orDefault(req.Speed, 1)
	numSteps := orDefault(req.NumSteps, 4)

	var audio *AudioBuffer
	err := compute(t.handle, operation, t.backend, func(p unsafe.Pointer) error {
		return native.WithCStrings(t.engine, func(cs *native.CStrings) error {
			raw := t.engine.OfflineTtsGenerateWithZipvoice(p,
				cs.String(req.Text), cs.String(req.PromptText),
				req.PromptSamples, int32(req.PromptSampleRate), speed, int32(numSteps))
			var err error
			audio, err = extractGeneratedAudio(t.engine, raw)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return audio, nil
}

// Close destroys the engine handle. Further calls return ErrClosed.
func (t *OfflineTts) Close() error {
	return t.handle.Close()
}

// extractGeneratedAudio validates and copies a generated audio result, then
// destroys it. A nil result is never read or destroyed.
func extractGeneratedAudio(engine Engine, result unsafe.Pointer) (*AudioBuffer, error) {
	if result == nil {
		return nil, ErrNullResult
	}
	defer engine.DestroyOfflineTtsGeneratedAudio(result)

	raw := engine.ReadGeneratedAudio(result)
	if raw.N < 0 {
		return nil, ErrNegativeCount
	}
	if raw.N > 0 && raw.Samples == nil {
		return nil, ErrNullBuffer
	}
	if raw.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	return &AudioBuffer{
		Samples:    native.CopyFloat32s(raw.Samples, int(raw.N)),
		SampleRate: int(raw.SampleRate),
	}, nil
}

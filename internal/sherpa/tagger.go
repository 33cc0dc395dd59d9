package sherpa

import (
	"unsafe"

	"github.com/tphakala/sherpa-go/internal/native"
)

const kindAudioTagging = "audio_tagging"

// AudioEvent is one tag copied out of the engine.
type AudioEvent struct {
	Name  string  `json:"name"`
	Index int     `json:"index"`
	Prob  float32 `json:"prob"`
}

// AudioTagger owns one engine audio tagging handle.
type AudioTagger struct {
	engine  Engine
	handle  *native.Handle
	backend string
	topK    int
}

// NewAudioTagger creates a tagger for the backend selected in opts.
func NewAudioTagger(engine Engine, opts TaggerOptions) (*AudioTagger, error) {
	if opts.Model == nil {
		return nil, wrap(ErrNoModel, "create_"+kindAudioTagging, "")
	}
	backend := opts.Model.taggerBackend()
	if opts.TopK > MaxTopK {
		return nil, wrap(ErrInvalidTopK, "create_"+kindAudioTagging, backend)
	}

	h, err := openHandle(engine, kindAudioTagging, backend, primaryModelPath(opts.Model),
		func(cs *native.CStrings) unsafe.Pointer {
			return engine.CreateAudioTagging(BuildTaggingConfig(cs, &opts))
		},
		engine.DestroyAudioTagging)
	if err != nil {
		return nil, err
	}
	return &AudioTagger{
		engine:  engine,
		handle:  h,
		backend: backend,
		topK:    orDefault(opts.TopK, DefaultTopK),
	}, nil
}

// Backend names the selected tagging backend.
func (a *AudioTagger) Backend() string {
	return a.backend
}

// TopK returns the number of events Compute asks for.
func (a *AudioTagger) TopK() int {
	return a.topK
}

// Compute tags samples and returns up to TopK events in engine order.
func (a *AudioTagger) Compute(sampleRate int, samples []float32) ([]AudioEvent, error) {
	return a.ComputeTopK(sampleRate, samples, a.topK)
}

// ComputeTopK is Compute with an explicit event count. A topK below 1 uses
// the handle's TopK; one above MaxTopK is ErrInvalidTopK.
func (a *AudioTagger) ComputeTopK(sampleRate int, samples []float32, topK int) ([]AudioEvent, error) {
	const operation = "audio_tagging_compute"
	invalid := validateSamples(sampleRate, samples)
	if invalid == nil && topK > MaxTopK {
		invalid = ErrInvalidTopK
	}
	if invalid != nil {
		err := wrap(invalid, operation, a.backend)
		observe(operation, zeroTime, err)
		return nil, err
	}
	if topK < 1 {
		topK = a.topK
	}

	var events []AudioEvent
	err := compute(a.handle, operation, a.backend, func(p unsafe.Pointer) error {
		stream := a.engine.AudioTaggingCreateOfflineStream(p)
		if stream == nil {
			return ErrNullStream
		}
		defer a.engine.DestroyOfflineStream(stream)

		a.engine.AcceptWaveformOffline(stream, int32(sampleRate), samples)

		var err error
		events, err = extractAudioEvents(a.engine, a.engine.AudioTaggingCompute(p, stream, int32(topK)), topK)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Close destroys the engine handle. Further calls return ErrClosed.
func (a *AudioTagger) Close() error {
	return a.handle.Close()
}

// Names returns the event names in order.
func Names(events []AudioEvent) []string {
	names := make([]string, len(events))
	for i := range events {
		names[i] = events[i].Name
	}
	return names
}

// extractAudioEvents copies at most topK events from a NULL-terminated event
// array and frees it. The scan stops at the terminator, so an engine that
// returns fewer than topK events yields a shorter slice instead of an
// over-read. Order is kept as returned.
func extractAudioEvents(engine Engine, results unsafe.Pointer, topK int) ([]AudioEvent, error) {
	if results == nil {
		return nil, ErrNullResult
	}
	defer engine.AudioTaggingFreeResults(results)

	events := make([]AudioEvent, 0, min(topK, DefaultTopK))
	for i := range topK {
		ev := native.PointerAt(results, i)
		if ev == nil {
			break
		}
		raw := engine.ReadAudioEvent(ev)
		events = append(events, AudioEvent{
			Name:  native.GoString(raw.Name),
			Index: int(raw.Index),
			Prob:  raw.Prob,
		})
	}
	return events, nil
}

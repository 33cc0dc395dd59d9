// Package enginetest provides an in-memory sherpa.Engine for tests. It counts
// every create and destroy, remembers the strings it was handed and can be
// told to return the malformed results a real engine might produce.
package enginetest

import (
	"math"
	"reflect"
	"sync"
	"unsafe"

	"github.com/tphakala/sherpa-go/internal/native"
	"github.com/tphakala/sherpa-go/internal/sherpa"
)

// Object kinds tracked by the fake.
const (
	KindOfflineTts        = "offline_tts"
	KindOfflineRecognizer = "offline_recognizer"
	KindAudioTagging      = "audio_tagging"
	KindOfflineStream     = "offline_stream"
	KindGeneratedAudio    = "generated_audio"
	KindRecognizerResult  = "recognizer_result"
	KindTaggingResults    = "tagging_results"
)

// Fault selects a malformed result for the next compute calls.
type Fault int

const (
	FaultNone          Fault = iota
	FaultNullHandle          // create returns NULL
	FaultNullStream          // stream creation returns NULL
	FaultNullResult          // compute returns NULL
	FaultNegativeCount       // result count is -1
	FaultNullBuffer          // result count is positive, buffer is NULL
)

// Event is one canned tagging result.
type Event struct {
	Name  string
	Index int32
	Prob  float32
}

// Call records one generate call as seen by the engine.
type Call struct {
	Text             string
	PromptText       string
	PromptSamples    int
	PromptSampleRate int32
	Speed            float32
	NumSteps         int32
	SID              int32
	// StringsLive is false if any string argument was already freed.
	StringsLive bool
}

type object struct {
	kind string
	// keep referenced Go memory reachable for as long as the object lives
	keep []any
}

// Engine is a fake sherpa.Engine. The zero value is not usable; call New.
type Engine struct {
	*native.TrackingAllocator

	mu sync.Mutex

	fault       Fault
	sampleRate  int32
	numSpeakers int32
	transcript  string
	timestamps  []float32
	events      []Event

	live     map[unsafe.Pointer]*object
	creates  map[string]int
	destroys map[string]int
	misuses  int
	reads    int

	configs         []map[string]any
	stringsAtCreate []bool
	calls           []Call
	accepted        []int
}

// New returns a healthy engine: 22050 Hz synthesis, a fixed transcript with
// timestamps and ten ranked tagging events.
func New() *Engine {
	e := &Engine{
		TrackingAllocator: native.NewTrackingAllocator(),
		sampleRate:        22050,
		numSpeakers:       1,
		transcript:        "the quick brown fox",
		timestamps:        []float32{0, 0.32, 0.64, 0.96},
		live:              make(map[unsafe.Pointer]*object),
		creates:           make(map[string]int),
		destroys:          make(map[string]int),
	}
	for i := range 10 {
		e.events = append(e.events, Event{
			Name:  "event-" + string(rune('a'+i)),
			Index: int32(i * 7),
			Prob:  1 - float32(i)*0.09,
		})
	}
	return e
}

// SetFault makes following calls misbehave as described by f.
func (e *Engine) SetFault(f Fault) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fault = f
}

// SetSampleRate sets the rate reported for generated audio.
func (e *Engine) SetSampleRate(rate int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sampleRate = rate
}

// SetTranscript sets the recognizer output. A nil timestamps slice makes the
// result report len(words) tokens with a NULL timestamp array.
func (e *Engine) SetTranscript(text string, timestamps []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transcript = text
	e.timestamps = timestamps
}

// SetEvents sets the ranked tagging events returned by compute.
func (e *Engine) SetEvents(events []Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = events
}

// Creates returns how many objects of kind were created.
func (e *Engine) Creates(kind string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.creates[kind]
}

// Destroys returns how many objects of kind were destroyed.
func (e *Engine) Destroys(kind string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.destroys[kind]
}

// Misuses counts destroys of unknown or already destroyed objects, destroys
// with the wrong function and reads of dead results.
func (e *Engine) Misuses() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.misuses
}

// Reads counts result struct reads.
func (e *Engine) Reads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reads
}

// LiveObjects returns the number of engine objects not yet destroyed.
func (e *Engine) LiveObjects() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.live)
}

// Configs returns snapshots of every config passed to a create call.
func (e *Engine) Configs() []map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]map[string]any(nil), e.configs...)
}

// StringsLiveAtCreate reports, per create call, whether every string in the
// config was still allocated when the engine read it.
func (e *Engine) StringsLiveAtCreate() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]bool(nil), e.stringsAtCreate...)
}

// Calls returns the generate calls seen so far.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Accepted returns the sample counts fed to streams.
func (e *Engine) Accepted() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.accepted...)
}

func (e *Engine) newObject(kind string, keep ...any) unsafe.Pointer {
	obj := &object{kind: kind, keep: keep}
	p := unsafe.Pointer(obj)
	e.live[p] = obj
	e.creates[kind]++
	return p
}

// newResult registers a result whose address is the first kept value.
func (e *Engine) newResult(kind string, p unsafe.Pointer, keep ...any) unsafe.Pointer {
	e.live[p] = &object{kind: kind, keep: keep}
	e.creates[kind]++
	return p
}

func (e *Engine) destroy(kind string, p unsafe.Pointer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	obj, ok := e.live[p]
	if !ok || obj.kind != kind {
		e.misuses++
		return
	}
	delete(e.live, p)
	e.destroys[kind]++
}

func (e *Engine) checkLive(kind string, p unsafe.Pointer) bool {
	obj, ok := e.live[p]
	if !ok || obj.kind != kind {
		e.misuses++
		return false
	}
	return true
}

func (e *Engine) create(kind string, cfg any) unsafe.Pointer {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.configs = append(e.configs, e.snapshot(cfg))
	e.stringsAtCreate = append(e.stringsAtCreate, e.allStringsLive(cfg))
	if e.fault == FaultNullHandle {
		return nil
	}
	return e.newObject(kind)
}

func (e *Engine) CreateOfflineTts(cfg *sherpa.OfflineTtsConfig) unsafe.Pointer {
	return e.create(KindOfflineTts, cfg)
}

func (e *Engine) DestroyOfflineTts(tts unsafe.Pointer) {
	e.destroy(KindOfflineTts, tts)
}

func (e *Engine) OfflineTtsSampleRate(tts unsafe.Pointer) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive(KindOfflineTts, tts)
	return e.sampleRate
}

func (e *Engine) OfflineTtsNumSpeakers(tts unsafe.Pointer) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive(KindOfflineTts, tts)
	return e.numSpeakers
}

func (e *Engine) OfflineTtsGenerate(tts, text unsafe.Pointer, sid int32, speed float32) unsafe.Pointer {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.checkLive(KindOfflineTts, tts)
	call := Call{
		Text:        native.GoString(text),
		SID:         sid,
		Speed:       speed,
		StringsLive: e.IsLive(text),
	}
	e.calls = append(e.calls, call)
	return e.generatedAudio(len(call.Text), speed)
}

func (e *Engine) OfflineTtsGenerateWithZipvoice(tts, text, promptText unsafe.Pointer, promptSamples []float32,
	promptSampleRate int32, speed float32, numSteps int32,
) unsafe.Pointer {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.checkLive(KindOfflineTts, tts)
	call := Call{
		Text:             native.GoString(text),
		PromptText:       native.GoString(promptText),
		PromptSamples:    len(promptSamples),
		PromptSampleRate: promptSampleRate,
		Speed:            speed,
		NumSteps:         numSteps,
		StringsLive:      e.IsLive(text) && e.IsLive(promptText),
	}
	e.calls = append(e.calls, call)
	return e.generatedAudio(len(call.Text), speed)
}

// generatedAudio synthesizes 0.1 s of a 440 Hz tone per input byte.
func (e *Engine) generatedAudio(textLen int, speed float32) unsafe.Pointer {
	if e.fault == FaultNullResult {
		return nil
	}
	if speed <= 0 {
		speed = 1
	}
	n := int(float32(textLen) * float32(e.sampleRate) / 10 / speed)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(e.sampleRate)))
	}

	raw := &sherpa.RawGeneratedAudio{N: int32(n), SampleRate: e.sampleRate}
	if n > 0 {
		raw.Samples = unsafe.Pointer(&samples[0])
	}
	switch e.fault {
	case FaultNegativeCount:
		raw.N = -1
	case FaultNullBuffer:
		raw.N = max(raw.N, 1)
		raw.Samples = nil
	}
	return e.newResult(KindGeneratedAudio, unsafe.Pointer(raw), raw, samples)
}

func (e *Engine) ReadGeneratedAudio(audio unsafe.Pointer) sherpa.RawGeneratedAudio {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reads++
	e.checkLive(KindGeneratedAudio, audio)
	return *(*sherpa.RawGeneratedAudio)(audio)
}

func (e *Engine) DestroyOfflineTtsGeneratedAudio(audio unsafe.Pointer) {
	e.destroy(KindGeneratedAudio, audio)
}

func (e *Engine) CreateOfflineRecognizer(cfg *sherpa.OfflineRecognizerConfig) unsafe.Pointer {
	return e.create(KindOfflineRecognizer, cfg)
}

func (e *Engine) DestroyOfflineRecognizer(recognizer unsafe.Pointer) {
	e.destroy(KindOfflineRecognizer, recognizer)
}

func (e *Engine) CreateOfflineStream(recognizer unsafe.Pointer) unsafe.Pointer {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive(KindOfflineRecognizer, recognizer)
	return e.newStream()
}

func (e *Engine) newStream() unsafe.Pointer {
	if e.fault == FaultNullStream {
		return nil
	}
	return e.newObject(KindOfflineStream)
}

func (e *Engine) DestroyOfflineStream(stream unsafe.Pointer) {
	e.destroy(KindOfflineStream, stream)
}

func (e *Engine) AcceptWaveformOffline(stream unsafe.Pointer, sampleRate int32, samples []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive(KindOfflineStream, stream)
	e.accepted = append(e.accepted, len(samples))
}

func (e *Engine) DecodeOfflineStream(recognizer, stream unsafe.Pointer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive(KindOfflineRecognizer, recognizer)
	e.checkLive(KindOfflineStream, stream)
}

func (e *Engine) GetOfflineStreamResult(stream unsafe.Pointer) unsafe.Pointer {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.checkLive(KindOfflineStream, stream)
	if e.fault == FaultNullResult {
		return nil
	}

	text := cBytes(e.transcript)
	lang := cBytes("<|en|>")
	raw := &sherpa.RawRecognizerResult{
		Text:  unsafe.Pointer(&text[0]),
		Lang:  unsafe.Pointer(&lang[0]),
		Count: int32(len(e.timestamps)),
	}
	timestamps := append([]float32(nil), e.timestamps...)
	if len(timestamps) > 0 {
		raw.Timestamps = unsafe.Pointer(&timestamps[0])
	}
	if e.timestamps == nil {
		raw.Count = int32(len(splitWords(e.transcript)))
	}
	if e.fault == FaultNegativeCount {
		raw.Count = -1
	}
	return e.newResult(KindRecognizerResult, unsafe.Pointer(raw), raw, text, lang, timestamps)
}

func (e *Engine) ReadOfflineRecognizerResult(result unsafe.Pointer) sherpa.RawRecognizerResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reads++
	e.checkLive(KindRecognizerResult, result)
	return *(*sherpa.RawRecognizerResult)(result)
}

func (e *Engine) DestroyOfflineRecognizerResult(result unsafe.Pointer) {
	e.destroy(KindRecognizerResult, result)
}

func (e *Engine) CreateAudioTagging(cfg *sherpa.AudioTaggingConfig) unsafe.Pointer {
	return e.create(KindAudioTagging, cfg)
}

func (e *Engine) DestroyAudioTagging(tagger unsafe.Pointer) {
	e.destroy(KindAudioTagging, tagger)
}

func (e *Engine) AudioTaggingCreateOfflineStream(tagger unsafe.Pointer) unsafe.Pointer {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkLive(KindAudioTagging, tagger)
	return e.newStream()
}

// AudioTaggingCompute returns min(topK, len(events)) events followed by a
// NULL terminator, in the configured order.
func (e *Engine) AudioTaggingCompute(tagger, stream unsafe.Pointer, topK int32) unsafe.Pointer {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.checkLive(KindAudioTagging, tagger)
	e.checkLive(KindOfflineStream, stream)
	if e.fault == FaultNullResult {
		return nil
	}

	n := min(int(topK), len(e.events))
	arr := make([]unsafe.Pointer, n+1)
	keep := []any{arr}
	for i := range n {
		name := cBytes(e.events[i].Name)
		ev := &sherpa.RawAudioEvent{
			Name:  unsafe.Pointer(&name[0]),
			Index: e.events[i].Index,
			Prob:  e.events[i].Prob,
		}
		arr[i] = unsafe.Pointer(ev)
		keep = append(keep, ev, name)
	}
	return e.newResult(KindTaggingResults, unsafe.Pointer(&arr[0]), keep...)
}

func (e *Engine) ReadAudioEvent(event unsafe.Pointer) sherpa.RawAudioEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reads++
	return *(*sherpa.RawAudioEvent)(event)
}

func (e *Engine) AudioTaggingFreeResults(events unsafe.Pointer) {
	e.destroy(KindTaggingResults, events)
}

func cBytes(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}

// snapshot flattens a config struct into "Path.To.Field" keys. Pointer fields
// become Go strings, nil pointers are recorded as nil.
func (e *Engine) snapshot(cfg any) map[string]any {
	out := make(map[string]any)
	walk(reflect.ValueOf(cfg).Elem(), "", func(path string, v reflect.Value) {
		if v.Kind() == reflect.UnsafePointer {
			p := v.UnsafePointer()
			if p == nil {
				out[path] = nil
				return
			}
			out[path] = native.GoString(p)
			return
		}
		out[path] = v.Interface()
	})
	return out
}

func (e *Engine) allStringsLive(cfg any) bool {
	ok := true
	walk(reflect.ValueOf(cfg).Elem(), "", func(_ string, v reflect.Value) {
		if v.Kind() == reflect.UnsafePointer && v.UnsafePointer() != nil && !e.IsLive(v.UnsafePointer()) {
			ok = false
		}
	})
	return ok
}

func walk(v reflect.Value, prefix string, fn func(path string, v reflect.Value)) {
	t := v.Type()
	for i := range t.NumField() {
		path := t.Field(i).Name
		if prefix != "" {
			path = prefix + "." + path
		}
		if f := v.Field(i); f.Kind() == reflect.Struct {
			walk(f, path, fn)
		} else {
			fn(path, f)
		}
	}
}

var _ sherpa.Engine = (*Engine)(nil)

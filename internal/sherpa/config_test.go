package sherpa_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sherpa-go/internal/native"
	"github.com/tphakala/sherpa-go/internal/sherpa"
	"github.com/tphakala/sherpa-go/internal/sherpa/enginetest"
)

// assertOnlyBlock checks that exactly the named backend block of v is set.
func assertOnlyBlock(t *testing.T, v reflect.Value, blocks []string, selected string) {
	t.Helper()
	for _, name := range blocks {
		f := v.FieldByName(name)
		require.True(t, f.IsValid(), "no field %s", name)
		if name == selected {
			assert.False(t, f.IsZero(), "%s should be filled", name)
		} else {
			assert.True(t, f.IsZero(), "%s should be zero when %s is selected", name, selected)
		}
	}
}

func TestBuildTtsConfigBackendExclusivity(t *testing.T) {
	t.Parallel()

	blocks := []string{"Vits", "Matcha", "Kokoro", "Kitten", "Zipvoice"}
	tests := []struct {
		block string
		model sherpa.TtsModel
	}{
		{"Vits", sherpa.VitsModel{Model: "vits.onnx", Tokens: "tokens.txt"}},
		{"Matcha", sherpa.MatchaModel{AcousticModel: "am.onnx", Vocoder: "vocos.onnx", Tokens: "tokens.txt"}},
		{"Kokoro", sherpa.KokoroModel{Model: "kokoro.onnx", Voices: "voices.bin", Tokens: "tokens.txt"}},
		{"Kitten", sherpa.KittenModel{Model: "kitten.onnx", Voices: "voices.bin", Tokens: "tokens.txt"}},
		{"Zipvoice", zipvoiceOptions().Model},
	}
	for _, tt := range tests {
		t.Run(tt.block, func(t *testing.T) {
			t.Parallel()
			alloc := native.NewTrackingAllocator()
			cs := native.NewCStrings(alloc)

			cfg := sherpa.BuildTtsConfig(cs, &sherpa.TtsOptions{Model: tt.model})
			assertOnlyBlock(t, reflect.ValueOf(cfg.Model), blocks, tt.block)
			assert.NotNil(t, cfg.Model.Provider)

			cs.Release()
			assert.Zero(t, alloc.Live())
		})
	}
}

func TestBuildRecognizerConfigBackendExclusivity(t *testing.T) {
	t.Parallel()

	blocks := []string{"Transducer", "Paraformer", "NemoCtc", "Whisper", "Tdnn", "TeleSpeechCtc", "SenseVoice"}
	tests := []struct {
		block string
		model sherpa.RecognizerModel
	}{
		{"Transducer", sherpa.TransducerModel{Encoder: "e.onnx", Decoder: "d.onnx", Joiner: "j.onnx"}},
		{"Paraformer", sherpa.ParaformerModel{Model: "paraformer.onnx"}},
		{"NemoCtc", sherpa.NemoCtcModel{Model: "nemo.onnx"}},
		{"Whisper", sherpa.WhisperModel{Encoder: "e.onnx", Decoder: "d.onnx"}},
		{"Tdnn", sherpa.TdnnModel{Model: "tdnn.onnx"}},
		{"TeleSpeechCtc", sherpa.TeleSpeechCtcModel{Model: "telespeech.onnx"}},
		{"SenseVoice", sherpa.SenseVoiceModel{Model: "sense-voice.onnx", UseItn: true}},
	}
	for _, tt := range tests {
		t.Run(tt.block, func(t *testing.T) {
			t.Parallel()
			alloc := native.NewTrackingAllocator()
			cs := native.NewCStrings(alloc)
			defer cs.Release()

			cfg := sherpa.BuildRecognizerConfig(cs, &sherpa.RecognizerOptions{Model: tt.model, Tokens: "tokens.txt"})
			assertOnlyBlock(t, reflect.ValueOf(cfg.ModelConfig), blocks, tt.block)
		})
	}
}

func TestBuildTaggingConfigBackendExclusivity(t *testing.T) {
	t.Parallel()

	blocks := []string{"Zipformer", "Ced"}
	tests := []struct {
		block string
		model sherpa.TaggerModel
	}{
		{"Zipformer", sherpa.ZipformerTaggerModel{Model: "zipformer.onnx"}},
		{"Ced", sherpa.CedTaggerModel{Model: "ced.onnx"}},
	}
	for _, tt := range tests {
		t.Run(tt.block, func(t *testing.T) {
			t.Parallel()
			alloc := native.NewTrackingAllocator()
			cs := native.NewCStrings(alloc)
			defer cs.Release()

			cfg := sherpa.BuildTaggingConfig(cs, &sherpa.TaggerOptions{Model: tt.model, Labels: "labels.csv"})
			assertOnlyBlock(t, reflect.ValueOf(cfg.Model), blocks, tt.block)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	tts, err := sherpa.NewOfflineTts(e, sherpa.TtsOptions{Model: sherpa.VitsModel{Model: "vits.onnx", Tokens: "tokens.txt"}})
	require.NoError(t, err)
	defer tts.Close()
	rec, err := sherpa.NewOfflineRecognizer(e, whisperOptions())
	require.NoError(t, err)
	defer rec.Close()
	tagger, err := sherpa.NewAudioTagger(e, taggerOptions(0))
	require.NoError(t, err)
	defer tagger.Close()

	cfgs := e.Configs()
	require.Len(t, cfgs, 3)
	ttsCfg, recCfg, tagCfg := cfgs[0], cfgs[1], cfgs[2]

	assert.Equal(t, int32(sherpa.DefaultTtsThreads), ttsCfg["Model.NumThreads"])
	assert.Equal(t, int32(sherpa.DefaultMaxNumSentences), ttsCfg["MaxNumSentences"])
	assert.InDelta(t, sherpa.DefaultSilenceScale, ttsCfg["SilenceScale"], 1e-6)
	assert.Nil(t, ttsCfg["RuleFsts"], "unset optional strings stay NULL")
	assert.Nil(t, ttsCfg["Model.Vits.Lexicon"])
	assert.Nil(t, ttsCfg["Model.Matcha.AcousticModel"])

	assert.Equal(t, int32(sherpa.DefaultRecognizerThreads), recCfg["ModelConfig.NumThreads"])
	assert.Equal(t, sherpa.DefaultWhisperLanguage, recCfg["ModelConfig.Whisper.Language"])
	assert.Equal(t, sherpa.DefaultWhisperTask, recCfg["ModelConfig.Whisper.Task"])
	assert.Equal(t, sherpa.DefaultDecodingMethod, recCfg["DecodingMethod"])
	assert.Equal(t, int32(sherpa.DefaultMaxActivePaths), recCfg["MaxActivePaths"])
	assert.Equal(t, int32(sherpa.DefaultFeatSampleRate), recCfg["FeatConfig.SampleRate"])
	assert.Equal(t, int32(sherpa.DefaultFeatureDim), recCfg["FeatConfig.FeatureDim"])
	assert.Equal(t, "whisper/tiny-tokens.txt", recCfg["ModelConfig.Tokens"])

	assert.Equal(t, int32(sherpa.DefaultTaggerThreads), tagCfg["Model.NumThreads"])
	assert.Equal(t, int32(sherpa.DefaultTopK), tagCfg["TopK"])
	assert.Equal(t, "tagging/class_labels_indices.csv", tagCfg["Labels"])

	for _, cfg := range cfgs {
		provider := cfg["Model.Provider"]
		if provider == nil {
			provider = cfg["ModelConfig.Provider"]
		}
		assert.Equal(t, "cpu", provider)
	}
}

// Not parallel: the default provider is process wide.
func TestDefaultProviderSubstitution(t *testing.T) {
	t.Cleanup(func() { sherpa.SetDefaultProvider("") })

	assert.Equal(t, "cpu", sherpa.DefaultProvider())
	sherpa.SetDefaultProvider("cuda")
	assert.Equal(t, "cuda", sherpa.DefaultProvider())

	e := enginetest.New()
	tagger, err := sherpa.NewAudioTagger(e, taggerOptions(5))
	require.NoError(t, err)
	defer tagger.Close()

	opts := taggerOptions(5)
	opts.Runtime.Provider = "coreml"
	explicit, err := sherpa.NewAudioTagger(e, opts)
	require.NoError(t, err)
	defer explicit.Close()

	cfgs := e.Configs()
	assert.Equal(t, "cuda", cfgs[0]["Model.Provider"])
	assert.Equal(t, "coreml", cfgs[1]["Model.Provider"])

	sherpa.SetDefaultProvider("")
	assert.Equal(t, "cpu", sherpa.DefaultProvider())
}

func TestRuntimeThreadSelection(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	opts := whisperOptions()
	opts.Runtime = sherpa.RuntimeOptions{NumThreads: 3, Debug: true}
	rec, err := sherpa.NewOfflineRecognizer(e, opts)
	require.NoError(t, err)
	defer rec.Close()

	opts.Runtime = sherpa.RuntimeOptions{NumThreads: -1}
	auto, err := sherpa.NewOfflineRecognizer(e, opts)
	require.NoError(t, err)
	defer auto.Close()

	cfgs := e.Configs()
	assert.Equal(t, int32(3), cfgs[0]["ModelConfig.NumThreads"])
	assert.Equal(t, int32(1), cfgs[0]["ModelConfig.Debug"])
	threads, ok := cfgs[1]["ModelConfig.NumThreads"].(int32)
	require.True(t, ok)
	assert.Positive(t, threads)
	assert.Equal(t, int32(0), cfgs[1]["ModelConfig.Debug"])
}

type recordedOp struct {
	operation, status string
}

type fakeRecorder struct {
	mu     sync.Mutex
	ops    []recordedOp
	errors map[string]string
}

func (f *fakeRecorder) RecordOperation(operation, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{operation, status})
}

func (f *fakeRecorder) RecordDuration(string, float64) {}

func (f *fakeRecorder) RecordError(operation, errorType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errors == nil {
		f.errors = make(map[string]string)
	}
	f.errors[operation] = errorType
}

// Not parallel: the metrics recorder is process wide.
func TestMetricsRecording(t *testing.T) {
	rec := &fakeRecorder{}
	sherpa.SetMetrics(rec)
	t.Cleanup(func() { sherpa.SetMetrics(nil) })

	e := enginetest.New()
	tts, err := sherpa.NewOfflineTts(e, zipvoiceOptions())
	require.NoError(t, err)
	_, err = tts.Generate("hello", 0, 1)
	require.NoError(t, err)
	e.SetFault(enginetest.FaultNegativeCount)
	_, err = tts.Generate("hello", 0, 1)
	require.Error(t, err)
	require.NoError(t, tts.Close())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []recordedOp{
		{"create_offline_tts", "success"},
		{"tts_generate", "success"},
		{"tts_generate", "error"},
		{"destroy_offline_tts", "success"},
	}, rec.ops)
	assert.Equal(t, map[string]string{"tts_generate": "negative_count"}, rec.errors)
}

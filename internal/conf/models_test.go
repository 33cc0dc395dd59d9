package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sherpa-go/internal/sherpa"
)

func TestTtsOptions(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Engine = EngineSettings{Provider: "cuda", Threads: 4, Debug: true}
	s.TTS.Tokens = "tokens.txt"
	s.TTS.TextModel = "text.onnx"
	s.TTS.FlowMatchingModel = "fm.onnx"
	s.TTS.Vocoder = "vocos.onnx"
	s.TTS.FeatScale, s.TTS.TShift, s.TTS.GuidanceScale = 1, 1, 1
	s.TTS.MaxNumSentences = 2

	opts, err := s.TtsOptions()
	require.NoError(t, err)

	assert.Equal(t, sherpa.ZipvoiceModel{
		Tokens:            "tokens.txt",
		TextModel:         "text.onnx",
		FlowMatchingModel: "fm.onnx",
		Vocoder:           "vocos.onnx",
		FeatScale:         1,
		TShift:            1,
		TargetRms:         0.5,
		GuidanceScale:     1,
	}, opts.Model)
	assert.Equal(t, sherpa.RuntimeOptions{Provider: "cuda", NumThreads: 4, Debug: true}, opts.Runtime)
	assert.Equal(t, 2, opts.MaxNumSentences)
}

func TestBackendSelection(t *testing.T) {
	t.Parallel()

	ttsCases := map[string]sherpa.TtsModel{
		"vits":   sherpa.VitsModel{},
		"matcha": sherpa.MatchaModel{},
		"kokoro": sherpa.KokoroModel{},
		"kitten": sherpa.KittenModel{},
	}
	for backend, want := range ttsCases {
		s := &Settings{TTS: TTSSettings{Backend: backend}}
		opts, err := s.TtsOptions()
		require.NoError(t, err, backend)
		assert.IsType(t, want, opts.Model, backend)
	}

	asrCases := map[string]sherpa.RecognizerModel{
		"whisper":        sherpa.WhisperModel{},
		"transducer":     sherpa.TransducerModel{},
		"paraformer":     sherpa.ParaformerModel{},
		"nemo_ctc":       sherpa.NemoCtcModel{},
		"tdnn":           sherpa.TdnnModel{},
		"sense_voice":    sherpa.SenseVoiceModel{},
		"telespeech_ctc": sherpa.TeleSpeechCtcModel{},
	}
	for backend, want := range asrCases {
		s := &Settings{ASR: ASRSettings{Backend: backend, Tokens: "tokens.txt"}}
		opts, err := s.RecognizerOptions()
		require.NoError(t, err, backend)
		assert.IsType(t, want, opts.Model, backend)
		assert.Equal(t, "tokens.txt", opts.Tokens)
	}

	for backend, want := range map[string]sherpa.TaggerModel{
		"zipformer": sherpa.ZipformerTaggerModel{},
		"ced":       sherpa.CedTaggerModel{},
	} {
		s := &Settings{Tagging: TaggingSettings{Backend: backend, TopK: 3, Labels: "labels.csv"}}
		opts, err := s.TaggerOptions()
		require.NoError(t, err, backend)
		assert.IsType(t, want, opts.Model, backend)
		assert.Equal(t, 3, opts.TopK)
	}
}

func TestUnknownBackend(t *testing.T) {
	t.Parallel()

	s := &Settings{
		TTS:     TTSSettings{Backend: "piper"},
		ASR:     ASRSettings{Backend: "vosk"},
		Tagging: TaggingSettings{Backend: "panns"},
	}
	_, err := s.TtsOptions()
	require.ErrorContains(t, err, "piper")
	_, err = s.RecognizerOptions()
	require.ErrorContains(t, err, "vosk")
	_, err = s.TaggerOptions()
	require.ErrorContains(t, err, "panns")
}

package conf

import (
	"fmt"

	"github.com/tphakala/sherpa-go/internal/sherpa"
)

// Runtime returns the engine settings as sherpa runtime options.
func (s *EngineSettings) Runtime() sherpa.RuntimeOptions {
	return sherpa.RuntimeOptions{
		Provider:   s.Provider,
		NumThreads: s.Threads,
		Debug:      s.Debug,
	}
}

// TtsOptions builds the synthesis options for the configured backend.
func (s *Settings) TtsOptions() (sherpa.TtsOptions, error) {
	t := &s.TTS
	var model sherpa.TtsModel
	switch t.Backend {
	case "vits":
		model = sherpa.VitsModel{
			Model: t.Model, Lexicon: t.Lexicon, Tokens: t.Tokens,
			DataDir: t.DataDir, DictDir: t.DictDir,
			NoiseScale: t.NoiseScale, NoiseScaleW: t.NoiseScaleW, LengthScale: t.LengthScale,
		}
	case "matcha":
		model = sherpa.MatchaModel{
			AcousticModel: t.AcousticModel, Vocoder: t.Vocoder, Lexicon: t.Lexicon,
			Tokens: t.Tokens, DataDir: t.DataDir, DictDir: t.DictDir,
			NoiseScale: t.NoiseScale, LengthScale: t.LengthScale,
		}
	case "kokoro":
		model = sherpa.KokoroModel{
			Model: t.Model, Voices: t.Voices, Tokens: t.Tokens, DataDir: t.DataDir,
			DictDir: t.DictDir, Lexicon: t.Lexicon, Lang: t.Lang, LengthScale: t.LengthScale,
		}
	case "kitten":
		model = sherpa.KittenModel{
			Model: t.Model, Voices: t.Voices, Tokens: t.Tokens, DataDir: t.DataDir,
			LengthScale: t.LengthScale,
		}
	case "zipvoice":
		model = sherpa.ZipvoiceModel{
			Tokens:            t.Tokens,
			TextModel:         t.TextModel,
			FlowMatchingModel: t.FlowMatchingModel,
			Vocoder:           t.Vocoder,
			DataDir:           t.DataDir,
			PinyinDict:        t.PinyinDict,
			FeatScale:         t.FeatScale,
			TShift:            t.TShift,
			TargetRms:         t.TargetRms,
			GuidanceScale:     t.GuidanceScale,
		}
	default:
		return sherpa.TtsOptions{}, fmt.Errorf("unknown tts backend %q", t.Backend)
	}

	return sherpa.TtsOptions{
		Model:           model,
		Runtime:         s.Engine.Runtime(),
		MaxNumSentences: t.MaxNumSentences,
		RuleFsts:        t.RuleFsts,
		RuleFars:        t.RuleFars,
		SilenceScale:    t.SilenceScale,
	}, nil
}

// RecognizerOptions builds the recognizer options for the configured backend.
func (s *Settings) RecognizerOptions() (sherpa.RecognizerOptions, error) {
	a := &s.ASR
	var model sherpa.RecognizerModel
	switch a.Backend {
	case "whisper":
		model = sherpa.WhisperModel{
			Encoder: a.Encoder, Decoder: a.Decoder,
			Language: a.Language, Task: a.Task, TailPaddings: a.TailPaddings,
		}
	case "transducer":
		model = sherpa.TransducerModel{Encoder: a.Encoder, Decoder: a.Decoder, Joiner: a.Joiner}
	case "paraformer":
		model = sherpa.ParaformerModel{Model: a.Model}
	case "nemo_ctc":
		model = sherpa.NemoCtcModel{Model: a.Model}
	case "tdnn":
		model = sherpa.TdnnModel{Model: a.Model}
	case "sense_voice":
		model = sherpa.SenseVoiceModel{Model: a.Model, Language: a.Language, UseItn: a.UseItn}
	case "telespeech_ctc":
		model = sherpa.TeleSpeechCtcModel{Model: a.Model}
	default:
		return sherpa.RecognizerOptions{}, fmt.Errorf("unknown asr backend %q", a.Backend)
	}

	return sherpa.RecognizerOptions{
		Model:          model,
		Tokens:         a.Tokens,
		Runtime:        s.Engine.Runtime(),
		BpeVocab:       a.BpeVocab,
		ModelType:      a.ModelType,
		ModelingUnit:   a.ModelingUnit,
		DecodingMethod: a.DecodingMethod,
		MaxActivePaths: a.MaxActivePaths,
		HotwordsFile:   a.HotwordsFile,
		HotwordsScore:  a.HotwordsScore,
		RuleFsts:       a.RuleFsts,
		RuleFars:       a.RuleFars,
		FeatSampleRate: a.FeatSampleRate,
		FeatureDim:     a.FeatureDim,
	}, nil
}

// TaggerOptions builds the audio tagging options for the configured backend.
func (s *Settings) TaggerOptions() (sherpa.TaggerOptions, error) {
	t := &s.Tagging
	var model sherpa.TaggerModel
	switch t.Backend {
	case "zipformer":
		model = sherpa.ZipformerTaggerModel{Model: t.Model}
	case "ced":
		model = sherpa.CedTaggerModel{Model: t.Model}
	default:
		return sherpa.TaggerOptions{}, fmt.Errorf("unknown tagging backend %q", t.Backend)
	}

	return sherpa.TaggerOptions{
		Model:   model,
		Labels:  t.Labels,
		Runtime: s.Engine.Runtime(),
		TopK:    t.TopK,
	}, nil
}

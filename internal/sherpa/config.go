package sherpa

import (
	"github.com/tphakala/sherpa-go/internal/native"
)

// BuildTtsConfig flattens opts into the fixed-shape engine config. Only the
// selected backend block is filled; the others keep their zero value, which
// the engine reads as disabled. Strings are allocated from cs and must
// outlive the create call.
func BuildTtsConfig(cs *native.CStrings, opts *TtsOptions) *OfflineTtsConfig {
	provider, threads, debug := opts.Runtime.resolve(DefaultTtsThreads)

	cfg := &OfflineTtsConfig{
		Model: OfflineTtsModelConfig{
			NumThreads: threads,
			Debug:      debug,
			Provider:   cs.String(provider),
		},
		RuleFsts:        cs.Optional(opts.RuleFsts),
		RuleFars:        cs.Optional(opts.RuleFars),
		MaxNumSentences: int32(orDefault(opts.MaxNumSentences, DefaultMaxNumSentences)),
		SilenceScale:    orDefault(opts.SilenceScale, DefaultSilenceScale),
	}

	switch m := opts.Model.(type) {
	case VitsModel:
		cfg.Model.Vits = OfflineTtsVitsModelConfig{
			Model:       cs.String(m.Model),
			Lexicon:     cs.Optional(m.Lexicon),
			Tokens:      cs.String(m.Tokens),
			DataDir:     cs.Optional(m.DataDir),
			NoiseScale:  m.NoiseScale,
			NoiseScaleW: m.NoiseScaleW,
			LengthScale: m.LengthScale,
			DictDir:     cs.Optional(m.DictDir),
		}
	case MatchaModel:
		cfg.Model.Matcha = OfflineTtsMatchaModelConfig{
			AcousticModel: cs.String(m.AcousticModel),
			Vocoder:       cs.String(m.Vocoder),
			Lexicon:       cs.Optional(m.Lexicon),
			Tokens:        cs.String(m.Tokens),
			DataDir:       cs.Optional(m.DataDir),
			NoiseScale:    m.NoiseScale,
			LengthScale:   m.LengthScale,
			DictDir:       cs.Optional(m.DictDir),
		}
	case KokoroModel:
		cfg.Model.Kokoro = OfflineTtsKokoroModelConfig{
			Model:       cs.String(m.Model),
			Voices:      cs.String(m.Voices),
			Tokens:      cs.String(m.Tokens),
			DataDir:     cs.Optional(m.DataDir),
			LengthScale: m.LengthScale,
			DictDir:     cs.Optional(m.DictDir),
			Lexicon:     cs.Optional(m.Lexicon),
			Lang:        cs.Optional(m.Lang),
		}
	case KittenModel:
		cfg.Model.Kitten = OfflineTtsKittenModelConfig{
			Model:       cs.String(m.Model),
			Voices:      cs.String(m.Voices),
			Tokens:      cs.String(m.Tokens),
			DataDir:     cs.Optional(m.DataDir),
			LengthScale: m.LengthScale,
		}
	case ZipvoiceModel:
		cfg.Model.Zipvoice = OfflineTtsZipvoiceModelConfig{
			Tokens:            cs.String(m.Tokens),
			TextModel:         cs.String(m.TextModel),
			FlowMatchingModel: cs.String(m.FlowMatchingModel),
			Vocoder:           cs.String(m.Vocoder),
			DataDir:           cs.Optional(m.DataDir),
			PinyinDict:        cs.Optional(m.PinyinDict),
			FeatScale:         m.FeatScale,
			TShift:            m.TShift,
			TargetRms:         m.TargetRms,
			GuidanceScale:     m.GuidanceScale,
		}
	}

	return cfg
}

// BuildRecognizerConfig flattens opts into the fixed-shape recognizer config,
// filling only the selected backend block.
func BuildRecognizerConfig(cs *native.CStrings, opts *RecognizerOptions) *OfflineRecognizerConfig {
	provider, threads, debug := opts.Runtime.resolve(DefaultRecognizerThreads)

	cfg := &OfflineRecognizerConfig{
		FeatConfig: FeatureConfig{
			SampleRate: int32(orDefault(opts.FeatSampleRate, DefaultFeatSampleRate)),
			FeatureDim: int32(orDefault(opts.FeatureDim, DefaultFeatureDim)),
		},
		ModelConfig: OfflineModelConfig{
			Tokens:       cs.String(opts.Tokens),
			NumThreads:   threads,
			Debug:        debug,
			Provider:     cs.String(provider),
			ModelType:    cs.Optional(opts.ModelType),
			ModelingUnit: cs.Optional(opts.ModelingUnit),
			BpeVocab:     cs.Optional(opts.BpeVocab),
		},
		LmConfig: OfflineLMConfig{
			Model: cs.Optional(opts.LmModel),
			Scale: opts.LmScale,
		},
		DecodingMethod: cs.String(orDefault(opts.DecodingMethod, DefaultDecodingMethod)),
		MaxActivePaths: int32(orDefault(opts.MaxActivePaths, DefaultMaxActivePaths)),
		HotwordsFile:   cs.Optional(opts.HotwordsFile),
		HotwordsScore:  opts.HotwordsScore,
		RuleFsts:       cs.Optional(opts.RuleFsts),
		RuleFars:       cs.Optional(opts.RuleFars),
		BlankPenalty:   opts.BlankPenalty,
	}

	mc := &cfg.ModelConfig
	switch m := opts.Model.(type) {
	case WhisperModel:
		mc.Whisper = OfflineWhisperModelConfig{
			Encoder:      cs.String(m.Encoder),
			Decoder:      cs.String(m.Decoder),
			Language:     cs.String(orDefault(m.Language, DefaultWhisperLanguage)),
			Task:         cs.String(orDefault(m.Task, DefaultWhisperTask)),
			TailPaddings: int32(m.TailPaddings),
		}
	case TransducerModel:
		mc.Transducer = OfflineTransducerModelConfig{
			Encoder: cs.String(m.Encoder),
			Decoder: cs.String(m.Decoder),
			Joiner:  cs.String(m.Joiner),
		}
	case ParaformerModel:
		mc.Paraformer.Model = cs.String(m.Model)
	case NemoCtcModel:
		mc.NemoCtc.Model = cs.String(m.Model)
	case TdnnModel:
		mc.Tdnn.Model = cs.String(m.Model)
	case SenseVoiceModel:
		mc.SenseVoice = OfflineSenseVoiceModelConfig{
			Model:    cs.String(m.Model),
			Language: cs.Optional(m.Language),
			UseItn:   boolToInt32(m.UseItn),
		}
	case TeleSpeechCtcModel:
		mc.TeleSpeechCtc = cs.String(m.Model)
	}

	return cfg
}

// BuildTaggingConfig flattens opts into the audio tagging config.
func BuildTaggingConfig(cs *native.CStrings, opts *TaggerOptions) *AudioTaggingConfig {
	provider, threads, debug := opts.Runtime.resolve(DefaultTaggerThreads)

	cfg := &AudioTaggingConfig{
		Model: AudioTaggingModelConfig{
			NumThreads: threads,
			Debug:      debug,
			Provider:   cs.String(provider),
		},
		Labels: cs.String(opts.Labels),
		TopK:   int32(orDefault(opts.TopK, DefaultTopK)),
	}

	switch m := opts.Model.(type) {
	case ZipformerTaggerModel:
		cfg.Model.Zipformer.Model = cs.String(m.Model)
	case CedTaggerModel:
		cfg.Model.Ced = cs.String(m.Model)
	}

	return cfg
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

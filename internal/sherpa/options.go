package sherpa

import (
	"sync/atomic"

	"github.com/tphakala/sherpa-go/internal/cpuspec"
)

// Defaults applied by the config builders when options leave a value unset.
const (
	DefaultTtsThreads        = 1
	DefaultRecognizerThreads = 2
	DefaultTaggerThreads     = 1

	DefaultMaxNumSentences = 1
	DefaultSilenceScale    = 0.2

	DefaultWhisperLanguage = "en"
	DefaultWhisperTask     = "transcribe"
	DefaultDecodingMethod  = "greedy_search"
	DefaultMaxActivePaths  = 4
	DefaultFeatSampleRate  = 16000
	DefaultFeatureDim      = 80

	DefaultTopK = 5
	// MaxTopK bounds the number of events a tagging call may request.
	MaxTopK = 1024
)

var defaultProvider atomic.Value

func init() {
	defaultProvider.Store("cpu")
}

// DefaultProvider returns the execution provider used when options leave it empty.
func DefaultProvider() string {
	return defaultProvider.Load().(string)
}

// SetDefaultProvider changes the process-wide default provider. An empty
// value resets it to "cpu".
func SetDefaultProvider(provider string) {
	if provider == "" {
		provider = "cpu"
	}
	defaultProvider.Store(provider)
}

// RuntimeOptions are the onnxruntime settings shared by every model family.
type RuntimeOptions struct {
	// Provider is the execution provider, e.g. "cpu", "cuda", "coreml".
	// Empty selects DefaultProvider().
	Provider string
	// NumThreads of 0 selects the family default, a negative value selects
	// the optimal count for this CPU.
	NumThreads int
	Debug      bool
}

func (o RuntimeOptions) resolve(defaultThreads int) (provider string, threads, debug int32) {
	provider = o.Provider
	if provider == "" {
		provider = DefaultProvider()
	}
	switch {
	case o.NumThreads > 0:
		threads = int32(o.NumThreads)
	case o.NumThreads < 0:
		threads = int32(cpuspec.OptimalThreadCount())
	default:
		threads = int32(defaultThreads)
	}
	if o.Debug {
		debug = 1
	}
	return provider, threads, debug
}

// TtsModel selects one synthesis backend. Implemented by VitsModel,
// MatchaModel, KokoroModel, KittenModel and ZipvoiceModel.
type TtsModel interface {
	ttsBackend() string
}

// VitsModel selects a VITS synthesis model.
type VitsModel struct {
	Model, Lexicon, Tokens, DataDir, DictDir string
	NoiseScale, NoiseScaleW, LengthScale     float32
}

// MatchaModel selects a Matcha acoustic model with a separate vocoder.
type MatchaModel struct {
	AcousticModel, Vocoder, Lexicon, Tokens, DataDir, DictDir string
	NoiseScale, LengthScale                                   float32
}

// KokoroModel selects a Kokoro multi-speaker model.
type KokoroModel struct {
	Model, Voices, Tokens, DataDir, DictDir, Lexicon, Lang string
	LengthScale                                            float32
}

// KittenModel selects a KittenTTS model.
type KittenModel struct {
	Model, Voices, Tokens, DataDir string
	LengthScale                    float32
}

// ZipvoiceModel is the prompt-conditioned flow matching backend.
type ZipvoiceModel struct {
	Tokens            string
	TextModel         string
	FlowMatchingModel string
	Vocoder           string
	DataDir           string
	PinyinDict        string
	FeatScale         float32
	TShift            float32
	TargetRms         float32
	GuidanceScale     float32
}

func (VitsModel) ttsBackend() string     { return "vits" }
func (MatchaModel) ttsBackend() string   { return "matcha" }
func (KokoroModel) ttsBackend() string   { return "kokoro" }
func (KittenModel) ttsBackend() string   { return "kitten" }
func (ZipvoiceModel) ttsBackend() string { return "zipvoice" }

// TtsOptions configures an OfflineTts.
type TtsOptions struct {
	Model   TtsModel
	Runtime RuntimeOptions

	// MaxNumSentences of 0 selects DefaultMaxNumSentences.
	MaxNumSentences int
	RuleFsts        string
	RuleFars        string
	// SilenceScale of 0 selects DefaultSilenceScale.
	SilenceScale float32
}

// RecognizerModel selects one recognition backend. Implemented by
// WhisperModel, TransducerModel, ParaformerModel, NemoCtcModel, TdnnModel,
// SenseVoiceModel and TeleSpeechCtcModel.
type RecognizerModel interface {
	recognizerBackend() string
}

// WhisperModel selects a Whisper encoder/decoder pair.
type WhisperModel struct {
	Encoder, Decoder string
	// Language defaults to DefaultWhisperLanguage, Task to DefaultWhisperTask.
	Language, Task string
	TailPaddings   int
}

// TransducerModel selects a transducer (zipformer, conformer) model.
type TransducerModel struct {
	Encoder, Decoder, Joiner string
}

// ParaformerModel selects a Paraformer model.
type ParaformerModel struct {
	Model string
}

// NemoCtcModel selects a NeMo CTC model.
type NemoCtcModel struct {
	Model string
}

// TdnnModel selects a TDNN model.
type TdnnModel struct {
	Model string
}

// SenseVoiceModel selects a SenseVoice model. UseItn enables inverse text normalization.
type SenseVoiceModel struct {
	Model, Language string
	UseItn          bool
}

// TeleSpeechCtcModel selects a TeleSpeech CTC model.
type TeleSpeechCtcModel struct {
	Model string
}

func (WhisperModel) recognizerBackend() string       { return "whisper" }
func (TransducerModel) recognizerBackend() string    { return "transducer" }
func (ParaformerModel) recognizerBackend() string    { return "paraformer" }
func (NemoCtcModel) recognizerBackend() string       { return "nemo_ctc" }
func (TdnnModel) recognizerBackend() string          { return "tdnn" }
func (SenseVoiceModel) recognizerBackend() string    { return "sense_voice" }
func (TeleSpeechCtcModel) recognizerBackend() string { return "telespeech_ctc" }

// RecognizerOptions configures an OfflineRecognizer.
type RecognizerOptions struct {
	Model   RecognizerModel
	Tokens  string
	Runtime RuntimeOptions

	BpeVocab       string
	ModelType      string
	ModelingUnit   string
	DecodingMethod string
	MaxActivePaths int
	HotwordsFile   string
	HotwordsScore  float32
	RuleFsts       string
	RuleFars       string
	BlankPenalty   float32

	LmModel string
	LmScale float32

	// FeatSampleRate and FeatureDim of 0 select the defaults.
	FeatSampleRate int
	FeatureDim     int
}

// TaggerModel selects one audio tagging backend. Implemented by
// ZipformerTaggerModel and CedTaggerModel.
type TaggerModel interface {
	taggerBackend() string
}

// ZipformerTaggerModel selects a zipformer audio tagging model.
type ZipformerTaggerModel struct {
	Model string
}

// CedTaggerModel selects a CED audio tagging model.
type CedTaggerModel struct {
	Model string
}

func (ZipformerTaggerModel) taggerBackend() string { return "zipformer" }
func (CedTaggerModel) taggerBackend() string       { return "ced" }

// TaggerOptions configures an AudioTagger.
type TaggerOptions struct {
	Model   TaggerModel
	Labels  string
	Runtime RuntimeOptions
	// TopK of 0 selects DefaultTopK.
	TopK int
}

// primaryModelPath returns the main model file of a backend selection, used
// only for error context.
func primaryModelPath(model any) string {
	switch m := model.(type) {
	case VitsModel:
		return m.Model
	case MatchaModel:
		return m.AcousticModel
	case KokoroModel:
		return m.Model
	case KittenModel:
		return m.Model
	case ZipvoiceModel:
		return m.FlowMatchingModel
	case WhisperModel:
		return m.Encoder
	case TransducerModel:
		return m.Encoder
	case ParaformerModel:
		return m.Model
	case NemoCtcModel:
		return m.Model
	case TdnnModel:
		return m.Model
	case SenseVoiceModel:
		return m.Model
	case TeleSpeechCtcModel:
		return m.Model
	case ZipformerTaggerModel:
		return m.Model
	case CedTaggerModel:
		return m.Model
	default:
		return ""
	}
}

package sherpa

import (
	"unsafe"

	"github.com/tphakala/sherpa-go/internal/native"
)

// Engine is the C surface of sherpa-onnx as seen from Go. Handles, streams
// and results are opaque pointers owned by the engine. Every Create has one
// matching Destroy and every result has one matching Destroy or Free.
//
// String fields in the config structs point at memory from the embedded
// Allocator and must stay alive until the call that reads them returns.
type Engine interface {
	native.Allocator

	CreateOfflineTts(cfg *OfflineTtsConfig) unsafe.Pointer
	DestroyOfflineTts(tts unsafe.Pointer)
	OfflineTtsSampleRate(tts unsafe.Pointer) int32
	OfflineTtsNumSpeakers(tts unsafe.Pointer) int32
	OfflineTtsGenerate(tts, text unsafe.Pointer, sid int32, speed float32) unsafe.Pointer
	OfflineTtsGenerateWithZipvoice(tts, text, promptText unsafe.Pointer, promptSamples []float32,
		promptSampleRate int32, speed float32, numSteps int32) unsafe.Pointer
	ReadGeneratedAudio(audio unsafe.Pointer) RawGeneratedAudio
	DestroyOfflineTtsGeneratedAudio(audio unsafe.Pointer)

	CreateOfflineRecognizer(cfg *OfflineRecognizerConfig) unsafe.Pointer
	DestroyOfflineRecognizer(recognizer unsafe.Pointer)
	CreateOfflineStream(recognizer unsafe.Pointer) unsafe.Pointer
	DestroyOfflineStream(stream unsafe.Pointer)
	AcceptWaveformOffline(stream unsafe.Pointer, sampleRate int32, samples []float32)
	DecodeOfflineStream(recognizer, stream unsafe.Pointer)
	GetOfflineStreamResult(stream unsafe.Pointer) unsafe.Pointer
	ReadOfflineRecognizerResult(result unsafe.Pointer) RawRecognizerResult
	DestroyOfflineRecognizerResult(result unsafe.Pointer)

	CreateAudioTagging(cfg *AudioTaggingConfig) unsafe.Pointer
	DestroyAudioTagging(tagger unsafe.Pointer)
	AudioTaggingCreateOfflineStream(tagger unsafe.Pointer) unsafe.Pointer
	// AudioTaggingCompute returns a NULL-terminated array of event pointers.
	AudioTaggingCompute(tagger, stream unsafe.Pointer, topK int32) unsafe.Pointer
	ReadAudioEvent(event unsafe.Pointer) RawAudioEvent
	AudioTaggingFreeResults(events unsafe.Pointer)
}

// RawGeneratedAudio mirrors SherpaOnnxGeneratedAudio.
type RawGeneratedAudio struct {
	Samples    unsafe.Pointer // const float*
	N          int32
	SampleRate int32
}

// RawRecognizerResult mirrors the fields of SherpaOnnxOfflineRecognizerResult
// this package reads.
type RawRecognizerResult struct {
	Text unsafe.Pointer
	Timestamps unsafe.Pointer // const float*, may be NULL
	Count   int32
	Lang    unsafe.Pointer
	Emotion unsafe.Pointer
	Event   unsafe.Pointer
}

// RawAudioEvent mirrors SherpaOnnxAudioEvent.
type RawAudioEvent struct {
	Name  unsafe.Pointer
	Index int32
	Prob  float32
}

// Fixed-shape configuration mirrors. Pointer fields are const char* and a nil
// value means unset. Only one backend block per family is ever filled.

// OfflineTtsVitsModelConfig mirrors SherpaOnnxOfflineTtsVitsModelConfig.
type OfflineTtsVitsModelConfig struct {
	Model, Lexicon, Tokens, DataDir      unsafe.Pointer
	NoiseScale, NoiseScaleW, LengthScale float32
	DictDir                              unsafe.Pointer
}

// OfflineTtsMatchaModelConfig mirrors SherpaOnnxOfflineTtsMatchaModelConfig.
type OfflineTtsMatchaModelConfig struct {
	AcousticModel, Vocoder, Lexicon, Tokens, DataDir unsafe.Pointer
	NoiseScale, LengthScale                          float32
	DictDir                                          unsafe.Pointer
}

// OfflineTtsKokoroModelConfig mirrors SherpaOnnxOfflineTtsKokoroModelConfig.
type OfflineTtsKokoroModelConfig struct {
	Model, Voices, Tokens, DataDir unsafe.Pointer
	LengthScale                    float32
	DictDir, Lexicon, Lang         unsafe.Pointer
}

// OfflineTtsKittenModelConfig mirrors SherpaOnnxOfflineTtsKittenModelConfig.
type OfflineTtsKittenModelConfig struct {
	Model, Voices, Tokens, DataDir unsafe.Pointer
	LengthScale                    float32
}

// OfflineTtsZipvoiceModelConfig mirrors SherpaOnnxOfflineTtsZipvoiceModelConfig.
type OfflineTtsZipvoiceModelConfig struct {
	Tokens, TextModel, FlowMatchingModel, Vocoder, DataDir, PinyinDict unsafe.Pointer
	FeatScale, TShift, TargetRms, GuidanceScale                        float32
}

// OfflineTtsModelConfig holds one slot per synthesis backend plus the runtime settings.
type OfflineTtsModelConfig struct {
	Vits       OfflineTtsVitsModelConfig
	NumThreads int32
	Debug      int32
	Provider   unsafe.Pointer
	Matcha     OfflineTtsMatchaModelConfig
	Kokoro     OfflineTtsKokoroModelConfig
	Kitten     OfflineTtsKittenModelConfig
	Zipvoice   OfflineTtsZipvoiceModelConfig
}

// OfflineTtsConfig is passed to CreateOfflineTts.
type OfflineTtsConfig struct {
	Model           OfflineTtsModelConfig
	RuleFsts        unsafe.Pointer
	MaxNumSentences int32
	RuleFars        unsafe.Pointer
	SilenceScale    float32
}

// FeatureConfig describes the recognizer front end.
type FeatureConfig struct {
	SampleRate int32
	FeatureDim int32
}

// OfflineTransducerModelConfig mirrors SherpaOnnxOfflineTransducerModelConfig.
type OfflineTransducerModelConfig struct {
	Encoder, Decoder, Joiner unsafe.Pointer
}

// OfflineParaformerModelConfig mirrors SherpaOnnxOfflineParaformerModelConfig.
type OfflineParaformerModelConfig struct {
	Model unsafe.Pointer
}

// OfflineNemoEncDecCtcModelConfig mirrors SherpaOnnxOfflineNemoEncDecCtcModelConfig.
type OfflineNemoEncDecCtcModelConfig struct {
	Model unsafe.Pointer
}

// OfflineWhisperModelConfig mirrors SherpaOnnxOfflineWhisperModelConfig.
type OfflineWhisperModelConfig struct {
	Encoder, Decoder, Language, Task unsafe.Pointer
	TailPaddings                     int32
}

// OfflineTdnnModelConfig mirrors SherpaOnnxOfflineTdnnModelConfig.
type OfflineTdnnModelConfig struct {
	Model unsafe.Pointer
}

// OfflineSenseVoiceModelConfig mirrors SherpaOnnxOfflineSenseVoiceModelConfig.
type OfflineSenseVoiceModelConfig struct {
	Model, Language unsafe.Pointer
	UseItn          int32
}

// OfflineModelConfig holds one slot per recognition backend plus the runtime settings.
type OfflineModelConfig struct {
	Transducer    OfflineTransducerModelConfig
	Paraformer    OfflineParaformerModelConfig
	NemoCtc       OfflineNemoEncDecCtcModelConfig
	Whisper       OfflineWhisperModelConfig
	Tdnn          OfflineTdnnModelConfig
	Tokens        unsafe.Pointer
	NumThreads    int32
	Debug         int32
	Provider      unsafe.Pointer
	ModelType     unsafe.Pointer
	ModelingUnit  unsafe.Pointer
	BpeVocab      unsafe.Pointer
	TeleSpeechCtc unsafe.Pointer
	SenseVoice    OfflineSenseVoiceModelConfig
}

// OfflineLMConfig is the optional language model for recognition.
type OfflineLMConfig struct {
	Model unsafe.Pointer
	Scale float32
}

// OfflineRecognizerConfig is passed to CreateOfflineRecognizer.
type OfflineRecognizerConfig struct {
	FeatConfig     FeatureConfig
	ModelConfig    OfflineModelConfig
	LmConfig       OfflineLMConfig
	DecodingMethod unsafe.Pointer
	MaxActivePaths int32
	HotwordsFile   unsafe.Pointer
	HotwordsScore  float32
	RuleFsts       unsafe.Pointer
	RuleFars       unsafe.Pointer
	BlankPenalty   float32
}

// OfflineZipformerAudioTaggingModelConfig mirrors SherpaOnnxOfflineZipformerAudioTaggingModelConfig.
type OfflineZipformerAudioTaggingModelConfig struct {
	Model unsafe.Pointer
}

// AudioTaggingModelConfig holds the tagging backend slots plus the runtime settings.
type AudioTaggingModelConfig struct {
	Zipformer  OfflineZipformerAudioTaggingModelConfig
	Ced        unsafe.Pointer
	NumThreads int32
	Debug      int32
	Provider   unsafe.Pointer
}

// AudioTaggingConfig is passed to CreateAudioTagging.
type AudioTaggingConfig struct {
	Model  AudioTaggingModelConfig
	Labels unsafe.Pointer
	TopK   int32
}

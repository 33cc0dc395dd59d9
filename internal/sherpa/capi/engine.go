// Package capi implements sherpa.Engine on top of the sherpa-onnx C API.
//
// The package is the only place that includes c-api.h. It converts the
// pointer-only config mirrors into their C structs and hands raw result
// pointers back to the sherpa package, which owns validation and lifetime.
package capi

/*
#cgo LDFLAGS: -lsherpa-onnx-c-api
#cgo darwin LDFLAGS: -L/opt/homebrew/lib

#include <stdlib.h>
#include "c-api.h"
*/
import "C"

import (
	"unsafe"

	"github.com/tphakala/sherpa-go/internal/sherpa"
)

// Engine calls straight into libsherpa-onnx-c-api. It has no state.
type Engine struct{}

// New returns the C API engine.
func New() *Engine {
	return &Engine{}
}

func cstr(p unsafe.Pointer) *C.char {
	return (*C.char)(p)
}

func floats(samples []float32) *C.float {
	if len(samples) == 0 {
		return nil
	}
	return (*C.float)(unsafe.Pointer(&samples[0]))
}

func (*Engine) CString(s string) unsafe.Pointer {
	return unsafe.Pointer(C.CString(s))
}

func (*Engine) Free(p unsafe.Pointer) {
	C.free(p)
}

func ttsConfig(cfg *sherpa.OfflineTtsConfig) C.SherpaOnnxOfflineTtsConfig {
	m := &cfg.Model
	var c C.SherpaOnnxOfflineTtsConfig

	c.model.vits.model = cstr(m.Vits.Model)
	c.model.vits.lexicon = cstr(m.Vits.Lexicon)
	c.model.vits.tokens = cstr(m.Vits.Tokens)
	c.model.vits.data_dir = cstr(m.Vits.DataDir)
	c.model.vits.noise_scale = C.float(m.Vits.NoiseScale)
	c.model.vits.noise_scale_w = C.float(m.Vits.NoiseScaleW)
	c.model.vits.length_scale = C.float(m.Vits.LengthScale)
	c.model.vits.dict_dir = cstr(m.Vits.DictDir)

	c.model.matcha.acoustic_model = cstr(m.Matcha.AcousticModel)
	c.model.matcha.vocoder = cstr(m.Matcha.Vocoder)
	c.model.matcha.lexicon = cstr(m.Matcha.Lexicon)
	c.model.matcha.tokens = cstr(m.Matcha.Tokens)
	c.model.matcha.data_dir = cstr(m.Matcha.DataDir)
	c.model.matcha.noise_scale = C.float(m.Matcha.NoiseScale)
	c.model.matcha.length_scale = C.float(m.Matcha.LengthScale)
	c.model.matcha.dict_dir = cstr(m.Matcha.DictDir)

	c.model.kokoro.model = cstr(m.Kokoro.Model)
	c.model.kokoro.voices = cstr(m.Kokoro.Voices)
	c.model.kokoro.tokens = cstr(m.Kokoro.Tokens)
	c.model.kokoro.data_dir = cstr(m.Kokoro.DataDir)
	c.model.kokoro.length_scale = C.float(m.Kokoro.LengthScale)
	c.model.kokoro.dict_dir = cstr(m.Kokoro.DictDir)
	c.model.kokoro.lexicon = cstr(m.Kokoro.Lexicon)
	c.model.kokoro.lang = cstr(m.Kokoro.Lang)

	c.model.kitten.model = cstr(m.Kitten.Model)
	c.model.kitten.voices = cstr(m.Kitten.Voices)
	c.model.kitten.tokens = cstr(m.Kitten.Tokens)
	c.model.kitten.data_dir = cstr(m.Kitten.DataDir)
	c.model.kitten.length_scale = C.float(m.Kitten.LengthScale)

	c.model.zipvoice.tokens = cstr(m.Zipvoice.Tokens)
	c.model.zipvoice.text_model = cstr(m.Zipvoice.TextModel)
	c.model.zipvoice.flow_matching_model = cstr(m.Zipvoice.FlowMatchingModel)
	c.model.zipvoice.vocoder = cstr(m.Zipvoice.Vocoder)
	c.model.zipvoice.data_dir = cstr(m.Zipvoice.DataDir)
	c.model.zipvoice.pinyin_dict = cstr(m.Zipvoice.PinyinDict)
	c.model.zipvoice.feat_scale = C.float(m.Zipvoice.FeatScale)
	c.model.zipvoice.t_shift = C.float(m.Zipvoice.TShift)
	c.model.zipvoice.target_rms = C.float(m.Zipvoice.TargetRms)
	c.model.zipvoice.guidance_scale = C.float(m.Zipvoice.GuidanceScale)

	c.model.num_threads = C.int32_t(m.NumThreads)
	c.model.debug = C.int32_t(m.Debug)
	c.model.provider = cstr(m.Provider)

	c.rule_fsts = cstr(cfg.RuleFsts)
	c.max_num_sentences = C.int32_t(cfg.MaxNumSentences)
	c.rule_fars = cstr(cfg.RuleFars)
	c.silence_scale = C.float(cfg.SilenceScale)
	return c
}

func (*Engine) CreateOfflineTts(cfg *sherpa.OfflineTtsConfig) unsafe.Pointer {
	c := ttsConfig(cfg)
	return unsafe.Pointer(C.SherpaOnnxCreateOfflineTts(&c))
}

func (*Engine) DestroyOfflineTts(tts unsafe.Pointer) {
	C.SherpaOnnxDestroyOfflineTts((*C.SherpaOnnxOfflineTts)(tts))
}

func (*Engine) OfflineTtsSampleRate(tts unsafe.Pointer) int32 {
	return int32(C.SherpaOnnxOfflineTtsSampleRate((*C.SherpaOnnxOfflineTts)(tts)))
}

func (*Engine) OfflineTtsNumSpeakers(tts unsafe.Pointer) int32 {
	return int32(C.SherpaOnnxOfflineTtsNumSpeakers((*C.SherpaOnnxOfflineTts)(tts)))
}

func (*Engine) OfflineTtsGenerate(tts, text unsafe.Pointer, sid int32, speed float32) unsafe.Pointer {
	return unsafe.Pointer(C.SherpaOnnxOfflineTtsGenerate(
		(*C.SherpaOnnxOfflineTts)(tts), cstr(text), C.int32_t(sid), C.float(speed)))
}

func (*Engine) OfflineTtsGenerateWithZipvoice(tts, text, promptText unsafe.Pointer, promptSamples []float32,
	promptSampleRate int32, speed float32, numSteps int32,
) unsafe.Pointer {
	return unsafe.Pointer(C.SherpaOnnxOfflineTtsGenerateWithZipvoice(
		(*C.SherpaOnnxOfflineTts)(tts),
		cstr(text), cstr(promptText),
		floats(promptSamples), C.int32_t(len(promptSamples)),
		C.int32_t(promptSampleRate), C.float(speed), C.int32_t(numSteps)))
}

func (*Engine) ReadGeneratedAudio(audio unsafe.Pointer) sherpa.RawGeneratedAudio {
	a := (*C.SherpaOnnxGeneratedAudio)(audio)
	return sherpa.RawGeneratedAudio{
		Samples:    unsafe.Pointer(a.samples),
		N:          int32(a.n),
		SampleRate: int32(a.sample_rate),
	}
}

func (*Engine) DestroyOfflineTtsGeneratedAudio(audio unsafe.Pointer) {
	C.SherpaOnnxDestroyOfflineTtsGeneratedAudio((*C.SherpaOnnxGeneratedAudio)(audio))
}

func recognizerConfig(cfg *sherpa.OfflineRecognizerConfig) C.SherpaOnnxOfflineRecognizerConfig {
	m := &cfg.ModelConfig
	var c C.SherpaOnnxOfflineRecognizerConfig

	c.feat_config.sample_rate = C.int32_t(cfg.FeatConfig.SampleRate)
	c.feat_config.feature_dim = C.int32_t(cfg.FeatConfig.FeatureDim)

	c.model_config.transducer.encoder = cstr(m.Transducer.Encoder)
	c.model_config.transducer.decoder = cstr(m.Transducer.Decoder)
	c.model_config.transducer.joiner = cstr(m.Transducer.Joiner)
	c.model_config.paraformer.model = cstr(m.Paraformer.Model)
	c.model_config.nemo_ctc.model = cstr(m.NemoCtc.Model)
	c.model_config.whisper.encoder = cstr(m.Whisper.Encoder)
	c.model_config.whisper.decoder = cstr(m.Whisper.Decoder)
	c.model_config.whisper.language = cstr(m.Whisper.Language)
	c.model_config.whisper.task = cstr(m.Whisper.Task)
	c.model_config.whisper.tail_paddings = C.int32_t(m.Whisper.TailPaddings)
	c.model_config.tdnn.model = cstr(m.Tdnn.Model)
	c.model_config.telespeech_ctc = cstr(m.TeleSpeechCtc)
	c.model_config.sense_voice.model = cstr(m.SenseVoice.Model)
	c.model_config.sense_voice.language = cstr(m.SenseVoice.Language)
	c.model_config.sense_voice.use_itn = C.int32_t(m.SenseVoice.UseItn)

	c.model_config.tokens = cstr(m.Tokens)
	c.model_config.num_threads = C.int32_t(m.NumThreads)
	c.model_config.debug = C.int32_t(m.Debug)
	c.model_config.provider = cstr(m.Provider)
	c.model_config.model_type = cstr(m.ModelType)
	c.model_config.modeling_unit = cstr(m.ModelingUnit)
	c.model_config.bpe_vocab = cstr(m.BpeVocab)

	c.lm_config.model = cstr(cfg.LmConfig.Model)
	c.lm_config.scale = C.float(cfg.LmConfig.Scale)

	c.decoding_method = cstr(cfg.DecodingMethod)
	c.max_active_paths = C.int32_t(cfg.MaxActivePaths)
	c.hotwords_file = cstr(cfg.HotwordsFile)
	c.hotwords_score = C.float(cfg.HotwordsScore)
	c.rule_fsts = cstr(cfg.RuleFsts)
	c.rule_fars = cstr(cfg.RuleFars)
	c.blank_penalty = C.float(cfg.BlankPenalty)
	return c
}

func (*Engine) CreateOfflineRecognizer(cfg *sherpa.OfflineRecognizerConfig) unsafe.Pointer {
	c := recognizerConfig(cfg)
	return unsafe.Pointer(C.SherpaOnnxCreateOfflineRecognizer(&c))
}

func (*Engine) DestroyOfflineRecognizer(recognizer unsafe.Pointer) {
	C.SherpaOnnxDestroyOfflineRecognizer((*C.SherpaOnnxOfflineRecognizer)(recognizer))
}

func (*Engine) CreateOfflineStream(recognizer unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.SherpaOnnxCreateOfflineStream((*C.SherpaOnnxOfflineRecognizer)(recognizer)))
}

func (*Engine) DestroyOfflineStream(stream unsafe.Pointer) {
	C.SherpaOnnxDestroyOfflineStream((*C.SherpaOnnxOfflineStream)(stream))
}

func (*Engine) AcceptWaveformOffline(stream unsafe.Pointer, sampleRate int32, samples []float32) {
	C.SherpaOnnxAcceptWaveformOffline((*C.SherpaOnnxOfflineStream)(stream),
		C.int32_t(sampleRate), floats(samples), C.int32_t(len(samples)))
}

func (*Engine) DecodeOfflineStream(recognizer, stream unsafe.Pointer) {
	C.SherpaOnnxDecodeOfflineStream((*C.SherpaOnnxOfflineRecognizer)(recognizer),
		(*C.SherpaOnnxOfflineStream)(stream))
}

func (*Engine) GetOfflineStreamResult(stream unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.SherpaOnnxGetOfflineStreamResult((*C.SherpaOnnxOfflineStream)(stream)))
}

func (*Engine) ReadOfflineRecognizerResult(result unsafe.Pointer) sherpa.RawRecognizerResult {
	r := (*C.SherpaOnnxOfflineRecognizerResult)(result)
	return sherpa.RawRecognizerResult{
		Text:       unsafe.Pointer(r.text),
		Timestamps: unsafe.Pointer(r.timestamps),
		Count:      int32(r.count),
		Lang:       unsafe.Pointer(r.lang),
		Emotion:    unsafe.Pointer(r.emotion),
		Event:      unsafe.Pointer(r.event),
	}
}

func (*Engine) DestroyOfflineRecognizerResult(result unsafe.Pointer) {
	C.SherpaOnnxDestroyOfflineRecognizerResult((*C.SherpaOnnxOfflineRecognizerResult)(result))
}

func taggingConfig(cfg *sherpa.AudioTaggingConfig) C.SherpaOnnxAudioTaggingConfig {
	var c C.SherpaOnnxAudioTaggingConfig
	c.model.zipformer.model = cstr(cfg.Model.Zipformer.Model)
	c.model.ced = cstr(cfg.Model.Ced)
	c.model.num_threads = C.int32_t(cfg.Model.NumThreads)
	c.model.debug = C.int32_t(cfg.Model.Debug)
	c.model.provider = cstr(cfg.Model.Provider)
	c.labels = cstr(cfg.Labels)
	c.top_k = C.int32_t(cfg.TopK)
	return c
}

func (*Engine) CreateAudioTagging(cfg *sherpa.AudioTaggingConfig) unsafe.Pointer {
	c := taggingConfig(cfg)
	return unsafe.Pointer(C.SherpaOnnxCreateAudioTagging(&c))
}

func (*Engine) DestroyAudioTagging(tagger unsafe.Pointer) {
	C.SherpaOnnxDestroyAudioTagging((*C.SherpaOnnxAudioTagging)(tagger))
}

func (*Engine) AudioTaggingCreateOfflineStream(tagger unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.SherpaOnnxAudioTaggingCreateOfflineStream((*C.SherpaOnnxAudioTagging)(tagger)))
}

func (*Engine) AudioTaggingCompute(tagger, stream unsafe.Pointer, topK int32) unsafe.Pointer {
	return unsafe.Pointer(C.SherpaOnnxAudioTaggingCompute((*C.SherpaOnnxAudioTagging)(tagger),
		(*C.SherpaOnnxOfflineStream)(stream), C.int32_t(topK)))
}

func (*Engine) ReadAudioEvent(event unsafe.Pointer) sherpa.RawAudioEvent {
	ev := (*C.SherpaOnnxAudioEvent)(event)
	return sherpa.RawAudioEvent{
		Name:  unsafe.Pointer(ev.name),
		Index: int32(ev.index),
		Prob:  float32(ev.prob),
	}
}

func (*Engine) AudioTaggingFreeResults(events unsafe.Pointer) {
	C.SherpaOnnxAudioTaggingFreeResults((**C.SherpaOnnxAudioEvent)(events))
}

var _ sherpa.Engine = (*Engine)(nil)

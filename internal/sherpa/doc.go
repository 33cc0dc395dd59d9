// Package sherpa wraps the sherpa-onnx offline engine: text to speech,
// speech recognition and audio tagging.
//
// Each model family has a caller-facing options type holding a backend sum
// type (TtsModel, RecognizerModel, TaggerModel). BuildTtsConfig and friends
// flatten it into the engine's fixed-shape config, filling exactly one
// backend block. Handles are destroyed exactly once by Close or, as a last
// resort, by a finalizer. Every result pointer is checked for nil, its counts
// and buffers validated, the data copied into Go memory and the result
// destroyed before the call returns.
//
// The Engine interface is the C boundary. The cgo implementation lives in
// internal/sherpa/capi and an in-memory fake in internal/sherpa/enginetest.
package sherpa

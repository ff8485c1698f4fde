// Package transcription defines the engine interface and common types
// for interacting with speech-to-text backends.
//
// It follows a provider pattern with a pluggable registry for
// runtime-selectable engines.
//
// # Engines
//
//   - transcription/whispercpp: local whisper.cpp CLI with a lazy
//     on-disk model cache
//   - transcription/sidecar: faster-whisper HTTP sidecar
//
// # Usage
//
//	engine, err := transcription.NewEngine("whispercpp", cfg)
//	segments, err := engine.Transcribe(ctx, req, onProgress)
package transcription

// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Frame, Chunk, Format and TimeBase plus sample conversions
// Package audio provides the fundamental types shared by the playback pipeline.
//
// Every stage moves stereo float frames:
//   - Frame: one left/right sample pair
//   - Chunk: a batch of frames produced by a decoder
//   - Format: codec, sample rate and channel count of a source
//   - TimeBase: the decoder's native seek unit
//
// Example:
//
//	tb := audio.SampleTimeBase(44100)
//	ticks := tb.Ticks(90 * time.Second) // 3969000
package audio

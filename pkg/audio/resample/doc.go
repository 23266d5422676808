// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts audio between different sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling of stereo float frames.
//
// Example:
//
//	r := resample.New(44100, 48000)
//	out := make([]audio.Frame, r.MaxOutputFrames(len(in)))
//	n := r.Resample(in, out)
package resample

// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides the seekable Decoder interface and MP3, FLAC, Opus, FFmpeg implementations
// Package decode provides seekable audio decoders.
//
// Supports: MP3 (go-mp3), FLAC (mewkiz/flac), Ogg/Opus (libopusfile), and
// anything else ffmpeg can read.
//
// All decoders implement the Decoder interface and deliver stereo float
// frames. Mono sources are duplicated to both channels and extra channels are
// dropped.
//
// Example:
//
//	dec, err := decode.Open(ctx, "/music/track.flac", decode.Options{})
//	err = dec.Seek(dec.TimeBase().Ticks(90 * time.Second))
//	chunk, err := dec.Next()
package decode

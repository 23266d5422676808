// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 to stereo float frames with sample-accurate seeking
package decode

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/seekplay/seekplay/pkg/audio"
)

// go-mp3 always produces 16-bit stereo
const mp3FrameBytes = 4

// MP3 decodes MP3 audio
type MP3 struct {
	src      io.ReadCloser
	decoder  *mp3.Decoder
	pcm      *PCMReader
	seekable bool
	rate     int
	pos      int64 // frames consumed from the decoder
}

// NewMP3 creates a new MP3 decoder reading from src. Seeking is sample
// accurate when src is an io.Seeker; otherwise only forward seeks work.
func NewMP3(src io.ReadCloser, packetFrames int) (Decoder, error) {
	decoder, err := mp3.NewDecoder(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := NewPCMReader(decoder, PCMInt16LE, audio.Channels, packetFrames)
	if err != nil {
		return nil, err
	}

	_, seekable := src.(io.Seeker)
	return &MP3{
		src:      src,
		decoder:  decoder,
		pcm:      pcm,
		seekable: seekable,
		rate:     decoder.SampleRate(),
	}, nil
}

func (d *MP3) Format() audio.Format {
	return audio.Format{Codec: "mp3", SampleRate: d.rate, Channels: audio.Channels}
}

func (d *MP3) TimeBase() audio.TimeBase {
	return audio.SampleTimeBase(d.rate)
}

// Seek moves to the given sample frame
func (d *MP3) Seek(ticks int64) error {
	if ticks < 0 {
		return fmt.Errorf("invalid seek position: %d", ticks)
	}

	if d.seekable {
		if length := d.decoder.Length(); length >= 0 && ticks*mp3FrameBytes > length {
			ticks = length / mp3FrameBytes
		}
		if _, err := d.decoder.Seek(ticks*mp3FrameBytes, io.SeekStart); err != nil {
			return fmt.Errorf("mp3 seek failed: %w", err)
		}
		d.pcm.Reset()
		d.pos = ticks
		return nil
	}

	if ticks < d.pos {
		return fmt.Errorf("cannot seek backwards on unseekable mp3 stream (at %d, want %d)", d.pos, ticks)
	}

	skipped, err := io.CopyN(io.Discard, d.decoder, (ticks-d.pos)*mp3FrameBytes)
	d.pos += skipped / mp3FrameBytes
	if err != nil && err != io.EOF {
		return fmt.Errorf("mp3 seek failed: %w", err)
	}
	d.pcm.Reset()
	return nil
}

// Next decodes the next packet
func (d *MP3) Next() (audio.Chunk, error) {
	chunk, err := d.pcm.Next()
	d.pos += int64(len(chunk))
	if len(chunk) > 0 {
		return chunk, nil
	}
	return nil, err
}

// Close releases decoder resources
func (d *MP3) Close() error {
	return d.src.Close()
}

// ABOUTME: Raw PCM packet reader
// ABOUTME: Converts interleaved 16-bit or float32 little-endian PCM into frames
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/seekplay/seekplay/pkg/audio"
)

// PCMEncoding is the sample layout of a raw PCM byte stream
type PCMEncoding int

const (
	// PCMInt16LE is signed 16-bit little-endian
	PCMInt16LE PCMEncoding = iota
	// PCMFloat32LE is IEEE float32 little-endian
	PCMFloat32LE
)

// BytesPerSample returns the size of one sample for the encoding
func (e PCMEncoding) BytesPerSample() int {
	if e == PCMFloat32LE {
		return 4
	}
	return 2
}

// PCMReader reads fixed-size packets of raw interleaved PCM
type PCMReader struct {
	r          io.Reader
	enc        PCMEncoding
	channels   int
	frameBytes int
	buf        []byte
	samples    []float32
	err        error
}

// NewPCMReader creates a reader returning up to packetFrames frames per Next
func NewPCMReader(r io.Reader, enc PCMEncoding, channels, packetFrames int) (*PCMReader, error) {
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if packetFrames < 1 {
		return nil, fmt.Errorf("invalid packet size: %d", packetFrames)
	}

	frameBytes := enc.BytesPerSample() * channels
	return &PCMReader{
		r:          r,
		enc:        enc,
		channels:   channels,
		frameBytes: frameBytes,
		buf:        make([]byte, frameBytes*packetFrames),
		samples:    make([]float32, channels*packetFrames),
	}, nil
}

// Next returns the next packet. A trailing partial frame is discarded.
func (p *PCMReader) Next() (audio.Chunk, error) {
	if p.err != nil {
		return nil, p.err
	}

	n, err := io.ReadFull(p.r, p.buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			p.err = io.EOF
		} else {
			p.err = fmt.Errorf("pcm read failed: %w", err)
		}
	}

	frames := n / p.frameBytes
	if frames == 0 {
		return nil, p.err
	}

	count := frames * p.channels
	bps := p.enc.BytesPerSample()
	for i := 0; i < count; i++ {
		off := i * bps
		if p.enc == PCMFloat32LE {
			p.samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(p.buf[off:]))
		} else {
			p.samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(p.buf[off:])))
		}
	}

	return audio.FramesFromInterleaved(nil, p.samples[:count], p.channels), nil
}

// Reset clears a sticky end-of-stream or read error after the underlying
// reader has been repositioned
func (p *PCMReader) Reset() {
	p.err = nil
}

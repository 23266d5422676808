// ABOUTME: Decoder wrapper that converts the sample rate
// ABOUTME: Used when a fixed output rate is forced on a native decoder
package decode

import (
	"github.com/seekplay/seekplay/pkg/audio"
	"github.com/seekplay/seekplay/pkg/audio/resample"
)

// Resampled delivers another decoder's audio at a fixed rate. Seek positions
// stay in the wrapped decoder's time base.
type Resampled struct {
	Decoder
	rate      int
	resampler *resample.Resampler
}

// NewResampled wraps dec so Next returns frames at rate
func NewResampled(dec Decoder, rate int) Decoder {
	return &Resampled{
		Decoder:   dec,
		rate:      rate,
		resampler: resample.New(dec.Format().SampleRate, rate),
	}
}

func (r *Resampled) Format() audio.Format {
	f := r.Decoder.Format()
	f.SampleRate = r.rate
	return f
}

// Seek seeks the wrapped decoder and drops interpolation state
func (r *Resampled) Seek(ticks int64) error {
	if err := r.Decoder.Seek(ticks); err != nil {
		return err
	}
	r.resampler.Reset()
	return nil
}

// Next returns the next resampled packet
func (r *Resampled) Next() (audio.Chunk, error) {
	for {
		in, err := r.Decoder.Next()
		if err != nil {
			return nil, err
		}

		out := make(audio.Chunk, r.resampler.MaxOutputFrames(len(in)))
		if n := r.resampler.Resample(in, out); n > 0 {
			return out[:n], nil
		}
	}
}

// ABOUTME: Test doubles for the seekplay package
// ABOUTME: A synthetic seekable decoder and a manually driven sink
package seekplay

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/seekplay/seekplay/pkg/audio"
	"github.com/seekplay/seekplay/pkg/audio/output"
)

// fakeDecoder produces frames whose left sample is position+1
type fakeDecoder struct {
	mu        sync.Mutex
	rate      int
	total     int64 // frames available, negative for endless
	packet    int
	pos       int64
	seeks     []int64
	failAfter int // fail on this Next call (1-based), 0 never
	calls     int
	closed    bool
	seekErr   error
}

func newFakeDecoder(rate int, total int64, packet int) *fakeDecoder {
	return &fakeDecoder{rate: rate, total: total, packet: packet}
}

func (d *fakeDecoder) Format() audio.Format {
	return audio.Format{Codec: "fake", SampleRate: d.rate, Channels: 2}
}

func (d *fakeDecoder) TimeBase() audio.TimeBase {
	return audio.SampleTimeBase(d.rate)
}

func (d *fakeDecoder) Seek(ticks int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seekErr != nil {
		return d.seekErr
	}
	d.seeks = append(d.seeks, ticks)
	d.pos = ticks
	return nil
}

func (d *fakeDecoder) Next() (audio.Chunk, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	if d.failAfter > 0 && d.calls >= d.failAfter {
		return nil, errors.New("corrupt packet")
	}

	n := int64(d.packet)
	if d.total >= 0 {
		if d.pos >= d.total {
			return nil, io.EOF
		}
		if d.pos+n > d.total {
			n = d.total - d.pos
		}
	}

	chunk := make(audio.Chunk, n)
	for i := range chunk {
		v := float32(d.pos + int64(i) + 1)
		chunk[i] = audio.Frame{v, -v}
	}
	d.pos += n
	return chunk, nil
}

func (d *fakeDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDecoder) nextCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func (d *fakeDecoder) seekLog() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int64(nil), d.seeks...)
}

// manualSink lets the test act as the device callback
type manualSink struct {
	mu       sync.Mutex
	fill     output.FillFunc
	openErr  error
	closeErr error
	opens    int
	closes   int
}

func (s *manualSink) Open(sampleRate, channels int, fill output.FillFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	if s.openErr != nil {
		return s.openErr
	}
	s.fill = fill
	return nil
}

func (s *manualSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	s.fill = nil
	return s.closeErr
}

func (s *manualSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens, s.closes
}

// pull drives the callback until want non-silent frames arrive
func (s *manualSink) pull(t *testing.T, want int) []audio.Frame {
	t.Helper()

	var got []audio.Frame
	buf := make([]audio.Frame, 64)
	deadline := time.Now().Add(2 * time.Second)

	for len(got) < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %d of %d frames", len(got), want)
		}

		s.mu.Lock()
		fill := s.fill
		s.mu.Unlock()
		if fill == nil {
			t.Fatal("sink is not open")
		}

		fill(buf)
		silent := false
		for _, f := range buf {
			if f == (audio.Frame{}) {
				silent = true
				continue
			}
			got = append(got, f)
		}
		if silent {
			time.Sleep(time.Millisecond)
		}
	}
	return got[:want]
}

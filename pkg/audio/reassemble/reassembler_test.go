// ABOUTME: Tests for the frame reassembler
// ABOUTME: Tests ordering, leftover carry-over, underrun silence and fetch policies
package reassemble

import (
	"context"
	"testing"

	"github.com/seekplay/seekplay/pkg/audio"
	"github.com/seekplay/seekplay/pkg/audio/queue"
)

// numbered returns a chunk of n frames whose values count up from start
func numbered(start, n int) audio.Chunk {
	c := make(audio.Chunk, n)
	for i := range c {
		v := float32(start + i + 1)
		c[i] = audio.Frame{v, -v}
	}
	return c
}

func fill(t *testing.T, r *Reassembler, n int) []audio.Frame {
	t.Helper()
	out := make([]audio.Frame, n)
	for i := range out {
		out[i] = audio.Frame{99, 99} // garbage that must be overwritten
	}
	r.Fill(out)
	return out
}

func TestScenarioCapacityTwo(t *testing.T) {
	q := queue.New(2)
	ctx := context.Background()
	a := numbered(0, 100)
	b := numbered(100, 100)
	_ = q.Put(ctx, a)
	_ = q.Put(ctx, b)

	r := New(q)

	first := fill(t, r, 150)
	for i := 0; i < 100; i++ {
		if first[i] != a[i] {
			t.Fatalf("first block frame %d: expected %v, got %v", i, a[i], first[i])
		}
	}
	for i := 0; i < 50; i++ {
		if first[100+i] != b[i] {
			t.Fatalf("first block frame %d: expected %v, got %v", 100+i, b[i], first[100+i])
		}
	}
	if r.Pending() != 50 {
		t.Fatalf("expected 50 leftover frames, got %d", r.Pending())
	}

	second := fill(t, r, 150)
	for i := 0; i < 50; i++ {
		if second[i] != b[50+i] {
			t.Fatalf("second block frame %d: expected %v, got %v", i, b[50+i], second[i])
		}
	}
	for i := 50; i < 150; i++ {
		if second[i] != (audio.Frame{}) {
			t.Fatalf("second block frame %d: expected silence, got %v", i, second[i])
		}
	}
	if r.Pending() != 0 {
		t.Errorf("expected leftover cleared after underrun, got %d", r.Pending())
	}
	if r.Underruns() != 1 {
		t.Errorf("expected 1 underrun, got %d", r.Underruns())
	}
	if r.SilentFrames() != 100 {
		t.Errorf("expected 100 silent frames, got %d", r.SilentFrames())
	}
	if r.FramesDelivered() != 200 {
		t.Errorf("expected 200 delivered frames, got %d", r.FramesDelivered())
	}
}

func TestNoDuplicationOrLoss(t *testing.T) {
	sizes := []int{7, 300, 1, 64, 129, 1000, 3, 250}
	blockSizes := []int{1, 64, 100, 128, 512}

	for _, block := range blockSizes {
		q := queue.New(len(sizes))
		total := 0
		for _, n := range sizes {
			_ = q.Put(context.Background(), numbered(total, n))
			total += n
		}

		r := New(q)
		var got []audio.Frame
		for len(got) < total {
			got = append(got, fill(t, r, block)...)
		}
		got = got[:total]

		for i, f := range got {
			want := float32(i + 1)
			if f != (audio.Frame{want, -want}) {
				t.Fatalf("block %d: frame %d expected %v, got %v", block, i, want, f)
			}
		}
		if r.Underruns() != 0 && total%block == 0 {
			t.Errorf("block %d: unexpected underruns %d", block, r.Underruns())
		}
	}
}

func TestUnderrunIsSilence(t *testing.T) {
	r := New(queue.New(1))

	out := fill(t, r, 256)
	for i, f := range out {
		if f != (audio.Frame{}) {
			t.Fatalf("frame %d: expected silence, got %v", i, f)
		}
	}
	if r.Underruns() != 1 {
		t.Errorf("expected 1 underrun, got %d", r.Underruns())
	}
	if r.FramesDelivered() != 0 {
		t.Errorf("expected no delivered frames, got %d", r.FramesDelivered())
	}
}

func TestLeftoverCarriesOver(t *testing.T) {
	q := queue.New(2)
	big := numbered(0, 250)
	_ = q.Put(context.Background(), big)

	r := New(q)
	first := fill(t, r, 100)
	if first[99] != big[99] {
		t.Fatalf("expected first block to end with frame 99, got %v", first[99])
	}

	next := numbered(250, 20)
	_ = q.Put(context.Background(), next)

	// 150 leftover frames cover the whole block, the queued chunk must wait
	second := fill(t, r, 100)
	for i := range second {
		if second[i] != big[100+i] {
			t.Fatalf("second block frame %d: expected %v, got %v", i, big[100+i], second[i])
		}
	}
	if q.Len() != 1 {
		t.Errorf("expected queued chunk untouched, queue length %d", q.Len())
	}

	third := fill(t, r, 100)
	for i := 0; i < 50; i++ {
		if third[i] != big[200+i] {
			t.Fatalf("third block frame %d: expected %v, got %v", i, big[200+i], third[i])
		}
	}
	for i := 0; i < 20; i++ {
		if third[50+i] != next[i] {
			t.Fatalf("third block frame %d: expected %v, got %v", 50+i, next[i], third[50+i])
		}
	}
	for i := 70; i < 100; i++ {
		if third[i] != (audio.Frame{}) {
			t.Fatalf("third block frame %d: expected silence, got %v", i, third[i])
		}
	}
}

func TestFetchOnce(t *testing.T) {
	q := queue.New(4)
	ctx := context.Background()
	_ = q.Put(ctx, numbered(0, 10))
	_ = q.Put(ctx, numbered(10, 10))

	r := New(q, WithFetchPolicy(FetchOnce))
	out := fill(t, r, 15)

	for i := 0; i < 10; i++ {
		want := float32(i + 1)
		if out[i] != (audio.Frame{want, -want}) {
			t.Fatalf("frame %d: expected %v, got %v", i, want, out[i])
		}
	}
	for i := 10; i < 15; i++ {
		if out[i] != (audio.Frame{}) {
			t.Fatalf("frame %d: expected silence with a single fetch, got %v", i, out[i])
		}
	}
	if q.Len() != 1 {
		t.Errorf("expected second chunk still queued, got length %d", q.Len())
	}
}

func TestDefaultFetchesUntilFilled(t *testing.T) {
	q := queue.New(4)
	ctx := context.Background()
	_ = q.Put(ctx, numbered(0, 10))
	_ = q.Put(ctx, numbered(10, 10))

	r := New(q)
	if r.policy != FetchUntilFilled {
		t.Fatalf("expected fill as the default policy, got %v", r.policy)
	}

	out := fill(t, r, 15)
	assertFrames(t, out, 1)
	if r.Pending() != 5 || r.Underruns() != 0 {
		t.Errorf("expected 5 pending frames and no underrun, got %d and %d", r.Pending(), r.Underruns())
	}
}

func TestFetchOnceResumesNextCall(t *testing.T) {
	q := queue.New(4)
	ctx := context.Background()
	_ = q.Put(ctx, numbered(0, 10))
	_ = q.Put(ctx, numbered(10, 10))

	r := New(q, WithFetchPolicy(FetchOnce))
	fill(t, r, 15)
	if r.Underruns() != 1 {
		t.Fatalf("expected one underrun, got %d", r.Underruns())
	}

	next := fill(t, r, 10)
	assertFrames(t, next, 11)
}

func assertFrames(t *testing.T, out []audio.Frame, first int) {
	t.Helper()
	for i, f := range out {
		want := float32(first + i)
		if f != (audio.Frame{want, -want}) {
			t.Fatalf("frame %d: expected %v, got %v", i, want, f)
		}
	}
}

func TestEmptyChunkIsSkipped(t *testing.T) {
	q := queue.New(3)
	ctx := context.Background()
	_ = q.Put(ctx, audio.Chunk{})
	_ = q.Put(ctx, numbered(0, 4))

	r := New(q)
	out := fill(t, r, 4)
	if out[3] != (audio.Frame{4, -4}) {
		t.Errorf("expected frames after empty chunk, got %v", out)
	}
	if r.Underruns() != 0 {
		t.Errorf("expected no underrun, got %d", r.Underruns())
	}
}

func TestReset(t *testing.T) {
	q := queue.New(1)
	_ = q.Put(context.Background(), numbered(0, 10))

	r := New(q)
	fill(t, r, 4)
	if r.Pending() != 6 {
		t.Fatalf("expected 6 pending frames, got %d", r.Pending())
	}

	r.Reset()
	if r.Pending() != 0 {
		t.Errorf("expected no pending frames after reset, got %d", r.Pending())
	}
}

func TestParseFetchPolicy(t *testing.T) {
	tests := []struct {
		input     string
		expected  FetchPolicy
		expectErr bool
	}{
		{"fill", FetchUntilFilled, false},
		{"", FetchUntilFilled, false},
		{"once", FetchOnce, false},
		{"greedy", 0, true},
	}

	for _, tt := range tests {
		p, err := ParseFetchPolicy(tt.input)
		if tt.expectErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
		}
		if p != tt.expected {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.expected, p)
		}
		if p.String() != tt.input && tt.input != "" {
			t.Errorf("expected String() %q, got %q", tt.input, p.String())
		}
	}
}

func TestFillDoesNotAllocate(t *testing.T) {
	q := queue.New(64)
	for i := 0; i < 64; i++ {
		_ = q.Put(context.Background(), numbered(i*100, 100))
	}
	r := New(q)
	out := make([]audio.Frame, 150)

	allocs := testing.AllocsPerRun(40, func() {
		r.Fill(out)
	})
	if allocs != 0 {
		t.Errorf("expected Fill to be allocation free, got %v allocs per call", allocs)
	}
}

// ABOUTME: FFmpeg subprocess decoder
// ABOUTME: Decodes any ffmpeg-readable input to float32 stereo PCM over a pipe
package decode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/seekplay/seekplay/pkg/audio"
)

// stderr kept for error reports
const ffmpegStderrLimit = 4096

// FFmpeg decodes by running ffmpeg and reading raw PCM from its stdout.
// Positions are in milliseconds; seeking restarts the process with -ss.
type FFmpeg struct {
	ctx          context.Context
	path         string
	locator      string
	rate         int
	packetFrames int

	start  int64 // ms
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer
	pcm    *PCMReader
	done   bool
}

// NewFFmpeg creates a decoder for locator. The process is started lazily on
// the first Next and is bound to ctx.
func NewFFmpeg(ctx context.Context, locator string, opts Options) (Decoder, error) {
	opts = opts.withDefaults()

	path, err := exec.LookPath(opts.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	rate := opts.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}

	return &FFmpeg{
		ctx:          ctx,
		path:         path,
		locator:      locator,
		rate:         rate,
		packetFrames: opts.PacketFrames,
	}, nil
}

func (d *FFmpeg) Format() audio.Format {
	return audio.Format{Codec: "ffmpeg", SampleRate: d.rate, Channels: audio.Channels}
}

func (d *FFmpeg) TimeBase() audio.TimeBase {
	return audio.TimeBase{Num: 1, Den: 1000}
}

// Seek stops any running process; the next Next starts at ticks
func (d *FFmpeg) Seek(ticks int64) error {
	if ticks < 0 {
		return fmt.Errorf("invalid seek position: %d", ticks)
	}
	d.stop()
	d.start = ticks
	d.done = false
	return nil
}

func (d *FFmpeg) args() []string {
	args := []string{"-nostdin", "-loglevel", "error"}
	if strings.HasPrefix(d.locator, "http://") || strings.HasPrefix(d.locator, "https://") {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	if d.start > 0 {
		args = append(args, "-ss", formatSeconds(d.start))
	}
	return append(args,
		"-i", d.locator,
		"-vn",
		"-f", "f32le",
		"-ac", strconv.Itoa(audio.Channels),
		"-ar", strconv.Itoa(d.rate),
		"-",
	)
}

func formatSeconds(ms int64) string {
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}

func (d *FFmpeg) launch() error {
	cmd := exec.CommandContext(d.ctx, d.path, d.args()...)
	stderr := &tailBuffer{limit: ffmpegStderrLimit}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe failed: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg failed to start: %w", err)
	}

	pcm, err := NewPCMReader(stdout, PCMFloat32LE, audio.Channels, d.packetFrames)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return err
	}

	d.cmd = cmd
	d.stdout = stdout
	d.stderr = stderr
	d.pcm = pcm
	return nil
}

// Next reads the next packet from the running process
func (d *FFmpeg) Next() (audio.Chunk, error) {
	if d.done {
		return nil, io.EOF
	}
	if d.cmd == nil {
		if err := d.launch(); err != nil {
			return nil, err
		}
	}

	chunk, err := d.pcm.Next()
	if len(chunk) > 0 {
		return chunk, nil
	}

	waitErr := d.cmd.Wait()
	msg := d.stderr.String()
	d.cmd = nil
	d.done = true

	if err != io.EOF {
		return nil, err
	}
	if waitErr != nil && d.ctx.Err() == nil {
		if msg != "" {
			return nil, fmt.Errorf("ffmpeg exited: %w: %s", waitErr, msg)
		}
		return nil, fmt.Errorf("ffmpeg exited: %w", waitErr)
	}
	return nil, io.EOF
}

func (d *FFmpeg) stop() {
	if d.cmd == nil {
		return
	}
	if d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.cmd.Wait()
	d.cmd = nil
}

// Close stops the process
func (d *FFmpeg) Close() error {
	d.stop()
	return nil
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Write(p)
	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.buf.String())
}

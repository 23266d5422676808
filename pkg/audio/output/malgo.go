// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo with a float32 data callback
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/seekplay/seekplay/pkg/audio"
)

// initial scratch size; grows if the device ever asks for more
const malgoScratchFrames = 4096

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	opts Options

	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	fill     FillFunc

	// only touched from the device callback
	scratch []audio.Frame
}

// NewMalgo creates a new Malgo output
func NewMalgo(opts Options) Sink {
	return &Malgo{opts: opts}
}

// Open initializes and starts the playback device
func (m *Malgo) Open(sampleRate, channels int, fill FillFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return fmt.Errorf("malgo device already open")
	}
	if channels != audio.Channels {
		return fmt.Errorf("unsupported channel count: %d (supported: %d)", channels, audio.Channels)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1
	if m.opts.FramesPerBuffer > 0 {
		deviceConfig.PeriodSizeInFrames = uint32(m.opts.FramesPerBuffer)
	}

	m.fill = fill
	m.scratch = make([]audio.Frame, malgoScratchFrames)

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		m.freeContext(ctx)
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		m.freeContext(ctx)
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device

	log.Printf("Audio output initialized: %dHz, %d channels (malgo/F32)", sampleRate, channels)
	return nil
}

// dataCallback is called by malgo to fill the device buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	n := int(frameCount)
	if n > len(m.scratch) {
		m.scratch = make([]audio.Frame, n)
	}
	frames := m.scratch[:n]
	m.fill(frames)
	encodeFloat32LE(pOutput, frames)
}

// Close stops the device and releases the malgo context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return nil
	}

	if err := m.device.Stop(); err != nil {
		log.Printf("Warning: device stop error: %v", err)
	}
	m.device.Uninit()
	m.device = nil

	m.freeContext(m.malgoCtx)
	m.malgoCtx = nil
	return nil
}

func (m *Malgo) freeContext(ctx *malgo.AllocatedContext) {
	if ctx == nil {
		return
	}
	if err := ctx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	ctx.Free()
}

// encodeFloat32LE writes frames as interleaved little-endian float32.
// dst must hold at least len(frames)*8 bytes.
func encodeFloat32LE(dst []byte, frames []audio.Frame) int {
	off := 0
	for _, f := range frames {
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(f[0]))
		binary.LittleEndian.PutUint32(dst[off+4:], math.Float32bits(f[1]))
		off += 8
	}
	return off
}

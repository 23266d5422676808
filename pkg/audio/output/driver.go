// ABOUTME: Output driver pairing one sink with one frame source per session
// ABOUTME: Enforces a single Start and a single Stop over the device lifetime
package output

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/seekplay/seekplay/pkg/audio"
)

var (
	// ErrDriverStarted is returned when Start is called more than once
	ErrDriverStarted = errors.New("output driver already started")
	// ErrDriverNotStarted is returned when Stop is called before Start
	ErrDriverNotStarted = errors.New("output driver not started")
	// ErrDriverStopped is returned when Stop is called more than once
	ErrDriverStopped = errors.New("output driver already stopped")
)

// DeviceError reports a failure to open or close an audio device
type DeviceError struct {
	Op  string // "open" or "close"
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s failed: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

type driverState int

const (
	driverIdle driverState = iota
	driverRunning
	driverStopped
)

// Driver owns a sink for exactly one start/stop cycle
type Driver struct {
	sink       Sink
	fill       FillFunc
	sampleRate int

	mu    sync.Mutex
	state driverState
}

// NewDriver creates a driver that will open sink at sampleRate and feed it
// from fill
func NewDriver(sink Sink, fill FillFunc, sampleRate int) *Driver {
	return &Driver{
		sink:       sink,
		fill:       fill,
		sampleRate: sampleRate,
	}
}

// Start opens the device. A driver can only be started once; a failed start
// also consumes the driver.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != driverIdle {
		return ErrDriverStarted
	}

	if err := d.sink.Open(d.sampleRate, audio.Channels, d.fill); err != nil {
		d.state = driverStopped
		return &DeviceError{Op: "open", Err: err}
	}

	d.state = driverRunning
	log.Printf("Output started: %dHz, %d channels", d.sampleRate, audio.Channels)
	return nil
}

// Stop closes the device. Once Stop returns the fill function is no longer
// called.
func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case driverIdle:
		return ErrDriverNotStarted
	case driverStopped:
		return ErrDriverStopped
	}

	d.state = driverStopped
	if err := d.sink.Close(); err != nil {
		return &DeviceError{Op: "close", Err: err}
	}

	log.Printf("Output stopped")
	return nil
}

// Running reports whether the device is open
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == driverRunning
}

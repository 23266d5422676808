// ABOUTME: Error types for the seekplay player
// ABOUTME: Resolution, decode and device failures plus state misuse sentinels
package seekplay

import (
	"errors"
	"fmt"

	"github.com/seekplay/seekplay/pkg/audio/output"
)

var (
	// ErrNegativeStart is returned by Play for a start position below zero
	ErrNegativeStart = errors.New("start position must not be negative")
	// ErrClosed is returned by Play after Close
	ErrClosed = errors.New("player closed")
)

// ResolutionError reports a locator that could not be resolved to a source
type ResolutionError struct {
	Locator string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %q: %v", e.Locator, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// DecodeError reports a decoder failure. Op is "open", "seek" or "decode".
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoder %s failed: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DeviceError reports an audio device that failed to open or close
type DeviceError = output.DeviceError

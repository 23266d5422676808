// ABOUTME: Audio output package for callback-driven playback
// ABOUTME: Provides Sink interface, backends and the session Driver
// Package output provides audio playback devices.
//
// Every backend is pull-based: the device asks for a number of frames on
// its own schedule and the FillFunc supplies exactly that many. Backends:
// malgo (default), oto, beep, portaudio (build with -tags portaudio) and a
// clock-driven null sink.
//
// Example:
//
//	sink, err := output.New("malgo", output.DefaultOptions())
//	drv := output.NewDriver(sink, reassembler.Fill, 44100)
//	err = drv.Start()
//	defer drv.Stop()
package output

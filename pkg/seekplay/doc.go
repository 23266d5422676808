// ABOUTME: Seekable audio playback library
// ABOUTME: Ties decoder, sample channel, reassembler and output device into a Player
// Package seekplay plays a single audio source with seek/play/stop control.
//
// A Player owns one decoder for its lifetime. Every Play starts a fresh
// session: a bounded chunk queue, a decode goroutine that seeks and fills
// it, and an output device whose callback drains it through a reassembler.
// Stop joins the decode goroutine and closes the device; queued audio from
// an old session is never played.
//
// Example:
//
//	player, err := seekplay.New(seekplay.Config{
//	    Locator:  "/music/track.flac",
//	    SinkName: "malgo",
//	})
//	err = player.Play(90 * time.Second)
//	err = player.Stop()
//	err = player.Close()
package seekplay

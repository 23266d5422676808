// ABOUTME: Decoder selection by locator
// ABOUTME: Opens files and URLs and picks a decoder from the extension
package decode

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	// DefaultSampleRate is the output rate of the ffmpeg decoder when none is forced
	DefaultSampleRate = 48000
	// DefaultPacketFrames is the packet size of byte-stream decoders
	DefaultPacketFrames = 1152
)

// Options configures decoder construction
type Options struct {
	// SampleRate forces the delivered rate (0 keeps the source rate)
	SampleRate int

	// PacketFrames is the frames per Next for MP3 and FFmpeg
	PacketFrames int

	// FFmpegPath is the ffmpeg binary to run for other formats
	FFmpegPath string

	// OpusChannels is the channel count assumed for Ogg/Opus input
	OpusChannels int

	// HTTPClient fetches remote MP3/FLAC/Opus inputs
	HTTPClient *http.Client
}

func (o Options) withDefaults() Options {
	if o.PacketFrames <= 0 {
		o.PacketFrames = DefaultPacketFrames
	}
	if o.FFmpegPath == "" {
		o.FFmpegPath = "ffmpeg"
	}
	if o.OpusChannels <= 0 {
		o.OpusChannels = 2
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	return o
}

// Extension returns the lowercased file extension of a path or URL
func Extension(locator string) string {
	if isRemote(locator) {
		if u, err := url.Parse(locator); err == nil {
			return strings.ToLower(path.Ext(u.Path))
		}
	}
	return strings.ToLower(filepath.Ext(locator))
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

// Open creates a decoder for a file path or URL. ctx bounds the lifetime of
// any network request or subprocess the decoder owns.
func Open(ctx context.Context, locator string, opts Options) (Decoder, error) {
	opts = opts.withDefaults()

	var (
		dec Decoder
		err error
	)

	switch ext := Extension(locator); ext {
	case ".mp3", ".flac", ".opus", ".ogg":
		src, openErr := openSource(ctx, locator, opts.HTTPClient)
		if openErr != nil {
			return nil, openErr
		}

		switch ext {
		case ".mp3":
			dec, err = NewMP3(src, opts.PacketFrames)
		case ".flac":
			dec, err = NewFLAC(src)
		default:
			dec, err = NewOpus(src, opts.OpusChannels)
		}
		if err != nil {
			src.Close()
			return nil, err
		}
	default:
		// ffmpeg resamples itself
		return NewFFmpeg(ctx, locator, opts)
	}

	log.Printf("Opened %s (%s)", locator, dec.Format())

	if opts.SampleRate > 0 && dec.Format().SampleRate != opts.SampleRate {
		dec = NewResampled(dec, opts.SampleRate)
	}
	return dec, nil
}

func openSource(ctx context.Context, locator string, client *http.Client) (io.ReadCloser, error) {
	if !isRemote(locator) {
		f, err := os.Open(locator)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", locator, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", locator, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTTP stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}
	return resp.Body, nil
}

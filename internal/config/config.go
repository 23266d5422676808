// ABOUTME: Command-line and environment configuration
// ABOUTME: Flags take their defaults from the environment and an optional .env file
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/seekplay/seekplay/pkg/audio/output"
	"github.com/seekplay/seekplay/pkg/audio/queue"
	"github.com/seekplay/seekplay/pkg/audio/reassemble"
	"github.com/seekplay/seekplay/pkg/seekplay"
)

// DefaultLocator is played when no locator is given
const DefaultLocator = "https://www.youtube.com/watch?v=W-P_ShiZqvg"

// DefaultListen is the remote control address used with -listen but no value
const DefaultListen = ":8928"

// Config holds player configuration
type Config struct {
	Locator string

	Sink            string
	FramesPerBuffer int
	QueueCapacity   int
	ChunkFrames     int
	FetchPolicy     reassemble.FetchPolicy
	SampleRate      int
	FFmpegPath      string
	Start           time.Duration

	Listen string
	MDNS   bool
	Name   string

	LogFile string
	NoTUI   bool

	CookiesFromBrowser string
	CookiesFile        string
}

// Load reads .env (if present) and parses args
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	return Parse(args, os.Getenv, os.Stderr)
}

// Parse parses args with defaults taken from getenv. Usage errors are
// written to stderr.
func Parse(args []string, getenv func(string) string, stderr io.Writer) (Config, error) {
	env := envReader{getenv: getenv}

	fs := flag.NewFlagSet("seekplay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: seekplay [flags] [file|url|youtube-id]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var (
		cfg   Config
		fetch string
		start float64
	)
	fs.StringVar(&cfg.Sink, "sink", env.str("SEEKPLAY_SINK", "malgo"), fmt.Sprintf("Audio output %v", output.Names))
	fs.IntVar(&cfg.FramesPerBuffer, "frames-per-buffer", env.int("SEEKPLAY_FRAMES_PER_BUFFER", 0), "Device period in frames (0 = backend default)")
	fs.IntVar(&cfg.QueueCapacity, "queue", env.int("SEEKPLAY_QUEUE", queue.DefaultCapacity), "Sample channel capacity in chunks")
	fs.IntVar(&cfg.ChunkFrames, "chunk-frames", env.int("SEEKPLAY_CHUNK_FRAMES", seekplay.DefaultChunkFrames), "Frames per queued chunk")
	fs.StringVar(&fetch, "fetch", env.str("SEEKPLAY_FETCH", reassemble.FetchUntilFilled.String()), "Reassembler fetch policy (fill, once)")
	fs.IntVar(&cfg.SampleRate, "rate", env.int("SEEKPLAY_RATE", 0), "Force output sample rate (0 = source rate)")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", env.str("SEEKPLAY_FFMPEG", "ffmpeg"), "ffmpeg binary")
	fs.Float64Var(&start, "start", 0, "Start position in seconds")
	fs.StringVar(&cfg.Listen, "listen", env.str("SEEKPLAY_LISTEN", ""), "Remote control address, e.g. "+DefaultListen+" (empty = disabled)")
	fs.BoolVar(&cfg.MDNS, "mdns", env.bool("SEEKPLAY_MDNS", false), "Advertise the remote control via mDNS")
	fs.StringVar(&cfg.Name, "name", env.str("SEEKPLAY_NAME", ""), "mDNS service name (default: hostname-seekplay)")
	fs.StringVar(&cfg.LogFile, "log-file", env.str("SEEKPLAY_LOG_FILE", "seekplay.log"), "Log file path")
	fs.BoolVar(&cfg.NoTUI, "no-tui", false, "Disable TUI, use a plain prompt and streaming logs")
	fs.StringVar(&cfg.CookiesFromBrowser, "cookies-from-browser", env.str("YT_COOKIES_BROWSER", ""), "Browser to read YouTube cookies from")
	fs.StringVar(&cfg.CookiesFile, "cookies", env.str("YT_COOKIES_FILE", ""), "YouTube cookies file")

	if env.err != nil {
		return Config{}, env.err
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	policy, err := reassemble.ParseFetchPolicy(fetch)
	if err != nil {
		return Config{}, err
	}
	cfg.FetchPolicy = policy

	if start < 0 {
		return Config{}, fmt.Errorf("start position must not be negative: %v", start)
	}
	cfg.Start = time.Duration(start * float64(time.Second))

	switch fs.NArg() {
	case 0:
		cfg.Locator = DefaultLocator
	case 1:
		cfg.Locator = fs.Arg(0)
	default:
		return Config{}, fmt.Errorf("expected one locator, got %d", fs.NArg())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if !validSink(c.Sink) {
		return fmt.Errorf("unknown sink: %q (supported: %v)", c.Sink, output.Names)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue capacity must be at least 1, got %d", c.QueueCapacity)
	}
	if c.ChunkFrames < 1 {
		return fmt.Errorf("chunk frames must be at least 1, got %d", c.ChunkFrames)
	}
	if c.SampleRate < 0 {
		return fmt.Errorf("sample rate must not be negative, got %d", c.SampleRate)
	}
	if c.FramesPerBuffer < 0 {
		return fmt.Errorf("frames per buffer must not be negative, got %d", c.FramesPerBuffer)
	}
	return nil
}

// ServiceName returns Name or a hostname-derived default
func (c Config) ServiceName() string {
	if c.Name != "" {
		return c.Name
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-seekplay", hostname)
}

func validSink(name string) bool {
	for _, n := range output.Names {
		if n == name {
			return true
		}
	}
	return false
}

// envReader records the first malformed variable
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) str(key, fallback string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return fallback
}

func (e *envReader) int(key string, fallback int) int {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("invalid %s: %w", key, err)
		}
		return fallback
	}
	return n
}

func (e *envReader) bool(key string, fallback bool) bool {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("invalid %s: %w", key, err)
		}
		return fallback
	}
	return b
}

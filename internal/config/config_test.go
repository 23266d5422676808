// ABOUTME: Tests for configuration loading
// ABOUTME: Tests defaults, environment overrides, flags and validation
package config

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/seekplay/seekplay/pkg/audio/reassemble"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil, envFrom(nil), io.Discard)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Locator != DefaultLocator {
		t.Errorf("expected default locator, got %s", cfg.Locator)
	}
	if cfg.Sink != "malgo" {
		t.Errorf("expected malgo sink, got %s", cfg.Sink)
	}
	if cfg.QueueCapacity != 200 {
		t.Errorf("expected queue 200, got %d", cfg.QueueCapacity)
	}
	if cfg.ChunkFrames != 4096 {
		t.Errorf("expected chunk frames 4096, got %d", cfg.ChunkFrames)
	}
	if cfg.FetchPolicy != reassemble.FetchUntilFilled {
		t.Errorf("expected fill policy, got %v", cfg.FetchPolicy)
	}
	if cfg.Listen != "" || cfg.MDNS || cfg.NoTUI {
		t.Errorf("unexpected optional features enabled: %+v", cfg)
	}
	if cfg.LogFile != "seekplay.log" {
		t.Errorf("unexpected log file: %s", cfg.LogFile)
	}
}

func TestParseEnvironment(t *testing.T) {
	cfg, err := Parse(nil, envFrom(map[string]string{
		"SEEKPLAY_SINK":         "null",
		"SEEKPLAY_QUEUE":        "16",
		"SEEKPLAY_CHUNK_FRAMES": "1",
		"SEEKPLAY_FETCH":        "once",
		"SEEKPLAY_RATE":         "48000",
		"SEEKPLAY_LISTEN":       ":9000",
		"SEEKPLAY_MDNS":         "true",
		"YT_COOKIES_BROWSER":    "firefox",
	}), io.Discard)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Sink != "null" || cfg.QueueCapacity != 16 || cfg.ChunkFrames != 1 {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.FetchPolicy != reassemble.FetchOnce {
		t.Errorf("expected once policy, got %v", cfg.FetchPolicy)
	}
	if cfg.SampleRate != 48000 || cfg.Listen != ":9000" || !cfg.MDNS {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.CookiesFromBrowser != "firefox" {
		t.Errorf("expected cookies browser, got %q", cfg.CookiesFromBrowser)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := Parse(
		[]string{"-sink", "oto", "-queue", "8", "-start", "90.5", "-no-tui", "/music/a.flac"},
		envFrom(map[string]string{"SEEKPLAY_SINK": "null", "SEEKPLAY_QUEUE": "16"}),
		io.Discard,
	)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Sink != "oto" || cfg.QueueCapacity != 8 {
		t.Errorf("flags should win: %+v", cfg)
	}
	if cfg.Start != 90500*time.Millisecond {
		t.Errorf("expected 90.5s start, got %v", cfg.Start)
	}
	if !cfg.NoTUI {
		t.Error("expected -no-tui")
	}
	if cfg.Locator != "/music/a.flac" {
		t.Errorf("unexpected locator: %s", cfg.Locator)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"bad env int", nil, map[string]string{"SEEKPLAY_QUEUE": "lots"}, "SEEKPLAY_QUEUE"},
		{"bad env bool", nil, map[string]string{"SEEKPLAY_MDNS": "maybe"}, "SEEKPLAY_MDNS"},
		{"unknown sink", []string{"-sink", "jack"}, nil, "unknown sink"},
		{"zero queue", []string{"-queue", "0"}, nil, "queue capacity"},
		{"zero chunk", []string{"-chunk-frames", "0"}, nil, "chunk frames"},
		{"bad fetch", []string{"-fetch", "greedy"}, nil, "greedy"},
		{"negative start", []string{"-start", "-1"}, nil, "negative"},
		{"two locators", []string{"a.mp3", "b.mp3"}, nil, "one locator"},
		{"unknown flag", []string{"-volume", "3"}, nil, "volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, envFrom(tt.env), io.Discard)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestServiceName(t *testing.T) {
	if got := (Config{Name: "kitchen"}).ServiceName(); got != "kitchen" {
		t.Errorf("expected explicit name, got %s", got)
	}
	if got := (Config{}).ServiceName(); !strings.HasSuffix(got, "-seekplay") {
		t.Errorf("expected hostname default, got %s", got)
	}
}

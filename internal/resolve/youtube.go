// ABOUTME: YouTube resolver backed by yt-dlp
// ABOUTME: Extracts a direct audio stream URL from a video page or id
package resolve

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// YouTubeConfig holds optional yt-dlp settings
type YouTubeConfig struct {
	// Binary is the yt-dlp executable (default "yt-dlp")
	Binary string

	// CookiesFromBrowser is passed as --cookies-from-browser
	CookiesFromBrowser string

	// CookiesFile is passed as --cookies
	CookiesFile string
}

// YouTube resolves YouTube URLs and video ids
type YouTube struct {
	config YouTubeConfig
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewYouTube creates a YouTube resolver
func NewYouTube(cfg YouTubeConfig) *YouTube {
	if cfg.Binary == "" {
		cfg.Binary = "yt-dlp"
	}
	return &YouTube{config: cfg, run: runCombined}
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (y *YouTube) Name() string {
	return "youtube"
}

// CanHandle returns true for youtube.com/youtu.be URLs and bare video ids
func (y *YouTube) CanHandle(locator string) bool {
	trimmed := strings.TrimSpace(locator)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "youtube.com") || strings.Contains(trimmed, "youtu.be") {
		return true
	}
	return isYouTubeID(trimmed)
}

// Resolve extracts the audio stream URL
func (y *YouTube) Resolve(ctx context.Context, locator string) (string, error) {
	videoURL := normalizeYouTubeURL(locator)
	args := []string{
		"--ignore-config",
		"--no-playlist",
		"--no-warnings",
		"--socket-timeout", "10",
	}
	args = append(args, y.cookieArgs()...)

	// bestaudio gives a single URL
	primary := append(append([]string{}, args...), "-f", "bestaudio", "--get-url", videoURL)
	url, err := y.getURL(ctx, primary)
	if err == nil {
		return url, nil
	}

	// no format selector may return one URL per stream
	fallback := append(append([]string{}, args...), "--get-url", videoURL)
	return y.getURL(ctx, fallback)
}

func (y *YouTube) cookieArgs() []string {
	if y.config.CookiesFromBrowser != "" {
		return []string{"--cookies-from-browser", y.config.CookiesFromBrowser}
	}
	if y.config.CookiesFile != "" {
		return []string{"--cookies", y.config.CookiesFile}
	}
	return nil
}

func (y *YouTube) getURL(ctx context.Context, args []string) (string, error) {
	out, err := y.run(ctx, y.config.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return pickURL(string(out))
}

// pickURL prefers an audio-only URL when several are printed
func pickURL(out string) (string, error) {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("yt-dlp returned empty URL")
	}

	for _, line := range lines {
		if strings.Contains(line, "mime=audio") || strings.Contains(line, "audio/") {
			return line, nil
		}
	}
	return lines[0], nil
}

func isYouTubeID(value string) bool {
	if len(value) != 11 {
		return false
	}
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}

func normalizeYouTubeURL(input string) string {
	trimmed := strings.TrimSpace(input)
	if isYouTubeID(trimmed) {
		return "https://www.youtube.com/watch?v=" + trimmed
	}
	return trimmed
}

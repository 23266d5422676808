// ABOUTME: Pass-through resolver for URLs and local files
// ABOUTME: Accepts http(s) URLs and paths that exist on disk
package resolve

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Direct passes locators through unchanged
type Direct struct{}

// NewDirect creates a direct resolver
func NewDirect() *Direct {
	return &Direct{}
}

func (d *Direct) Name() string {
	return "direct"
}

func (d *Direct) CanHandle(locator string) bool {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return true
	}
	info, err := os.Stat(locator)
	return err == nil && !info.IsDir()
}

func (d *Direct) Resolve(ctx context.Context, locator string) (string, error) {
	if !d.CanHandle(locator) {
		return "", fmt.Errorf("not a URL or file: %s", locator)
	}
	return locator, nil
}

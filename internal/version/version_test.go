// ABOUTME: Tests for version constants
// ABOUTME: Ensures version information is properly defined
package version

import (
	"strings"
	"testing"
)

func TestVersionDefined(t *testing.T) {
	for name, value := range map[string]string{
		"Version":      Version,
		"Product":      Product,
		"Manufacturer": Manufacturer,
	} {
		if value == "" {
			t.Errorf("%s should not be empty", name)
		}
		if len(value) > 100 {
			t.Errorf("%s is unreasonably long", name)
		}
	}
}

func TestVersionFormat(t *testing.T) {
	// semantic version: three dot-separated parts
	if parts := strings.Split(Version, "."); len(parts) != 3 {
		t.Errorf("expected semantic version, got %q", Version)
	}
}

func TestString(t *testing.T) {
	if String() != Product+" "+Version {
		t.Errorf("unexpected version string: %q", String())
	}
}

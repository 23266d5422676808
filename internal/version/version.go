// ABOUTME: Version information for seekplay
// ABOUTME: Reported in logs, the TUI and the remote control status
package version

const (
	// Version is the release version
	Version = "0.3.0"

	// Product is the product name
	Product = "seekplay"

	// Manufacturer is the publisher name
	Manufacturer = "seekplay"
)

// String returns "product version"
func String() string {
	return Product + " " + Version
}

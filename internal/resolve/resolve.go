// ABOUTME: Media locator resolution
// ABOUTME: Maps user-facing locators (pages, ids, files) to decoder inputs
package resolve

import (
	"context"
	"fmt"
	"log"
)

// Resolver turns a locator into something a decoder can open
type Resolver interface {
	// Name identifies the resolver in logs
	Name() string

	// CanHandle reports whether the resolver accepts locator
	CanHandle(locator string) bool

	// Resolve returns a playable URL or file path
	Resolve(ctx context.Context, locator string) (string, error)
}

// Registry tries resolvers in registration order
type Registry struct {
	resolvers []Resolver
}

// NewRegistry creates a registry over resolvers
func NewRegistry(resolvers ...Resolver) *Registry {
	return &Registry{resolvers: resolvers}
}

// Default returns the standard chain: YouTube first, then direct inputs
func Default(cfg YouTubeConfig) *Registry {
	return NewRegistry(NewYouTube(cfg), NewDirect())
}

// Register appends a resolver
func (r *Registry) Register(res Resolver) {
	r.resolvers = append(r.resolvers, res)
}

// Resolve uses the first resolver that accepts locator
func (r *Registry) Resolve(ctx context.Context, locator string) (string, error) {
	for _, res := range r.resolvers {
		if !res.CanHandle(locator) {
			continue
		}

		resolved, err := res.Resolve(ctx, locator)
		if err != nil {
			return "", fmt.Errorf("%s: %w", res.Name(), err)
		}
		log.Printf("Resolved %s via %s", locator, res.Name())
		return resolved, nil
	}
	return "", fmt.Errorf("no resolver accepts %q", locator)
}

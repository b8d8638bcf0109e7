// Package cache stores computed layouts and rendered artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache] for the CLI, under ~/.cache/cardmap/
//   - [RedisCache] for the HTTP service when several instances share a cache
//   - [NullCache] when caching is disabled
//
// Keys come from a [Keyer]. The default keyer hashes everything that affects
// the cached value, so changing a placement option or a container size never
// serves a stale layout.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/cardmap/pkg/placement"
)

// Default time-to-live values.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// =============================================================================
// Keys
// =============================================================================

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey keys a layout computed from the items identified by itemsHash.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendering of the layout identified by layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds everything besides the items that changes a layout.
type LayoutKeyOpts struct {
	ViewType    string           `json:"view_type"`
	Width       float64          `json:"width"`
	Height      float64          `json:"height"`
	CenterLabel string           `json:"center_label"`
	Placement   placement.Config `json:"placement"`
}

// ArtifactKeyOpts holds everything besides the layout that changes an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Style  string `json:"style,omitempty"`
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Package cache stores the expensive intermediate results of gdpmap:
// downloaded World Bank files, built font metrics, laid-out frames and
// rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default).
//   - [RedisCache]: a shared Redis instance (server deployments).
//   - [MongoCache]: a MongoDB collection with a TTL index.
//   - [NullCache]: stores nothing (--no-cache).
//
// Every backend honours the per-entry TTL passed to Set; an expired entry
// reads as a miss.
//
// # Keys
//
// A [Keyer] derives keys from the inputs of each stage, so two runs that
// would compute the same result share an entry. [ScopedKeyer] prefixes
// every key, which lets several datasets share one Redis or Mongo backend.
package cache

import (
	"context"
	"time"
)

// Entry lifetimes per stage.
const (
	// TTLHTTP keeps downloaded files for a day; the World Bank updates
	// its indicators a few times a year.
	TTLHTTP = 24 * time.Hour
	// TTLFontSettings is unlimited: settings depend only on their inputs.
	TTLFontSettings time.Duration = 0
	// TTLFrame keeps laid-out frames for a week.
	TTLFrame = 7 * 24 * time.Hour
	// TTLArtifact keeps rendered outputs for a week.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases connections and handles.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Key types reported to observability hooks.
const (
	KeyTypeHTTP     = "http"
	KeyTypeFonts    = "fonts"
	KeyTypeFrame    = "frame"
	KeyTypeArtifact = "artifact"
)

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// HTTPKey names a downloaded response.
	HTTPKey(namespace, key string) string
	// FontSettingsKey names built font metrics.
	FontSettingsKey(opts FontKeyOpts) string
	// FrameKey names a laid-out frame of the dataset with the given hash.
	FrameKey(dataHash string, opts FrameKeyOpts) string
	// ArtifactKey names a rendered output of the frame with the given hash.
	ArtifactKey(frameHash string, opts ArtifactKeyOpts) string
}

// FontKeyOpts are the inputs of a font metrics build.
type FontKeyOpts struct {
	FontHash     string  `json:"font_hash"`
	Family       string  `json:"family"`
	Weight       string  `json:"weight"`
	Ladder       []int   `json:"ladder"`
	Alphabet     string  `json:"alphabet"`
	Measurer     string  `json:"measurer"`
	PairFraction float64 `json:"pair_fraction"`
	MaxPairs     int     `json:"max_pairs"`
	PaddingStep  int     `json:"padding_step"`
}

// FrameKeyOpts are the inputs of a render pass besides the data.
type FrameKeyOpts struct {
	SettingsKey string  `json:"settings_key"`
	Zoom        string  `json:"zoom"`
	Width       float64 `json:"width"`
	Geometry    string  `json:"geometry"` // hash of the layout configuration
}

// ArtifactKeyOpts are the options of one rendered output.
type ArtifactKeyOpts struct {
	Format     string    `json:"format"`
	FontHash   string    `json:"font_hash"`
	Colors     [3]string `json:"colors"`
	Domain     []float64 `json:"domain"`
	Legend     int       `json:"legend"`
	Label      string    `json:"label"`
	Background string    `json:"background,omitempty"`
}

// DefaultKeyer hashes the stage inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return KeyTypeHTTP + ":" + namespace + ":" + key
}

// FontSettingsKey returns "fonts:<hash>".
func (DefaultKeyer) FontSettingsKey(opts FontKeyOpts) string {
	return hashKey(KeyTypeFonts, opts)
}

// FrameKey returns "frame:<hash>".
func (DefaultKeyer) FrameKey(dataHash string, opts FrameKeyOpts) string {
	return hashKey(KeyTypeFrame, dataHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, frameHash, opts)
}

package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdpmap/pkg/cache"
	"github.com/matzehuels/gdpmap/pkg/config"
	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
	"github.com/matzehuels/gdpmap/pkg/fonts"
	"github.com/matzehuels/gdpmap/pkg/observability"
)

// Runner executes pipeline stages with caching.
//
// Font metrics, the loaded font and datasets are kept in memory once
// computed, so a long-running server or TUI pays for them once. A Runner is
// safe for concurrent use.
type Runner struct {
	Config *config.Config
	Cache  cache.Cache
	Keyer  cache.Keyer
	Client *http.Client // nil: http.DefaultClient
	Logger *log.Logger

	mu       sync.Mutex
	font     *fonts.Font
	settings *fontmetrics.Settings
	canvas   *fontmetrics.CanvasMeasurer
	datasets map[string]*Dataset
}

// NewRunner creates a runner. A nil cfg uses [config.Default], a nil cache
// disables caching, a nil keyer uses [cache.DefaultKeyer] and a nil logger
// discards output.
func NewRunner(cfg *config.Config, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Config:   cfg,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		datasets: make(map[string]*Dataset),
	}
}

// Execute runs fonts → load → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(r.Config); err != nil {
		return nil, err
	}
	result := &Result{}

	// Stage 1: Fonts
	start := time.Now()
	settings, hit, err := r.FontSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("font metrics: %w", err)
	}
	result.Settings = settings
	result.Stats.FontsTime = time.Since(start)
	result.CacheInfo.FontsHit = hit

	// Stage 2: Load
	start = time.Now()
	ds, hit, err := r.LoadData(ctx, opts.Year, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	result.Tree = ds.Tree
	result.DataHash = ds.Hash
	result.Stats.Nodes = ds.Tree.Len()
	result.Stats.LoadTime = time.Since(start)
	result.CacheInfo.DataHit = hit

	// Stage 3: Layout
	start = time.Now()
	frame, hit, err := r.Layout(ctx, ds, settings, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Frame = frame
	result.Stats.Cells = len(frame.Cells)
	result.Stats.LayoutTime = time.Since(start)
	result.CacheInfo.LayoutHit = hit

	// Stage 4: Render
	start = time.Now()
	artifacts, hit, err := r.Render(ctx, frame, opts.Formats)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	return result, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cached reads key unless refresh is set. Read failures count as misses.
func (r *Runner) cached(ctx context.Context, keyType, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes key. Write failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

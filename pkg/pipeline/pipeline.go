// Package pipeline runs the gdpmap stages with caching:
//
//  1. Fonts: build (or load) the font metrics the label fitter measures with
//  2. Load: read the World Bank files and build the GDP tree
//  3. Layout: run one render pass for a zoom state and width
//  4. Render: write the frame as SVG, PDF or JSON
//
// The CLI, the TUI and the HTTP server all go through a [Runner], so every
// entry point caches and logs the same way.
//
//	runner := pipeline.NewRunner(cfg, c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Zoom: "ECS", Formats: []string{"svg"}})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/gdpmap/pkg/config"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
	"github.com/matzehuels/gdpmap/pkg/hierarchy"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Options selects one view of the treemap. Zero fields take the
// configuration defaults.
type Options struct {
	Year    string   `json:"year,omitempty"`
	Zoom    string   `json:"zoom,omitempty"` // empty or the world code: root view
	Width   float64  `json:"width,omitempty"`
	Formats []string `json:"formats,omitempty"`
	Refresh bool     `json:"refresh,omitempty"` // bypass cached downloads and frames
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Settings  *fontmetrics.Settings
	Tree      *hierarchy.Tree
	DataHash  string
	Frame     *treemap.Frame
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int
	Cells      int
	FontsTime  time.Duration
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	FontsHit  bool
	DataHit   bool // every source came from the cache or disk
	LayoutHit bool
	RenderHit bool // every artifact came from the cache
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults fills zero fields from cfg and validates the
// result.
func (o *Options) ValidateAndSetDefaults(cfg *config.Config) error {
	if o.Year == "" {
		o.Year = cfg.Data.Year
	}
	if o.Width == 0 {
		o.Width = cfg.Layout.Width
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Zoom = strings.ToUpper(strings.TrimSpace(o.Zoom))
	if err := errors.ValidateCode(o.Zoom); err != nil {
		return err
	}
	if err := errors.ValidateWidth(o.Width); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// ZoomState returns the zoom state o names in tree. The world code maps
// to the root view.
func (o Options) ZoomState(tree *hierarchy.Tree) treemap.Zoom {
	if o.Zoom == "" || o.Zoom == tree.Root().Code {
		return treemap.Root()
	}
	return treemap.Zoomed(o.Zoom)
}

// sortedFormats returns the formats deduplicated in a stable order.
func sortedFormats(formats []string) []string {
	out := slices.Clone(formats)
	slices.Sort(out)
	return slices.Compact(out)
}

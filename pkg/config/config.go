// Package config loads the gdpmap configuration file.
//
// The file is TOML with one table per concern. Every key is optional:
// [Default] supplies all values and the file only overrides what it names.
// Unknown keys are rejected so typos do not pass silently.
//
//	[data]
//	year = "2022"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gdpmap/pkg/colorscale"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
	"github.com/matzehuels/gdpmap/pkg/label"
	"github.com/matzehuels/gdpmap/pkg/render"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

// World Bank bulk downloads. Each is a ZIP archive holding the indicator
// CSV and the country metadata CSV.
const (
	GDPURL    = "https://api.worldbank.org/v2/en/indicator/NY.GDP.MKTP.CD?downloadformat=csv"
	GrowthURL = "https://api.worldbank.org/v2/en/indicator/NY.GDP.MKTP.KD.ZG?downloadformat=csv"
)

// DefaultYear is the data year shown when none is configured.
const DefaultYear = "2023"

// Measurer names.
const (
	MeasurerOpenType = "opentype"
	MeasurerCanvas   = "canvas"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheMongo = "mongo"
	CacheNone  = "none"
)

// Config is the complete configuration.
type Config struct {
	Fonts  Fonts  `toml:"fonts"`
	Data   Data   `toml:"data"`
	Layout Layout `toml:"layout"`
	Colors Colors `toml:"colors"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Fonts configures the font metrics build.
type Fonts struct {
	Path         string  `toml:"path"` // empty: embedded Go Bold
	Family       string  `toml:"family"`
	Weight       string  `toml:"weight"`
	Sizes        []int   `toml:"sizes"`
	Alphabet     string  `toml:"alphabet"`
	Measurer     string  `toml:"measurer"`
	PairFraction float64 `toml:"pair_fraction"`
	MaxPairs     int     `toml:"max_pairs"`
	PaddingStep  int     `toml:"padding_step"`
	Settings     string  `toml:"settings"` // prebuilt settings JSON; skips the build
}

// Data configures where the World Bank files come from. Each source is a
// URL or a local path, to a CSV file or to a ZIP archive containing one.
type Data struct {
	Year     string   `toml:"year"`
	GDP      string   `toml:"gdp"`
	Growth   string   `toml:"growth"`
	Metadata string   `toml:"metadata"`
	Timeout  Duration `toml:"timeout"`
	Attempts int      `toml:"attempts"`
}

// Layout configures the treemap geometry and label fitting.
type Layout struct {
	Width        float64 `toml:"width"`
	Aspect       float64 `toml:"aspect"`
	MinArea      float64 `toml:"min_area"`
	PaddingInner float64 `toml:"padding_inner"`
	PaddingOuter float64 `toml:"padding_outer"`
	PaddingTop   float64 `toml:"padding_top"`
	NarrowWidth  float64 `toml:"narrow_width"`
	HeaderGap    float64 `toml:"header_gap"`
	HeaderInset  float64 `toml:"header_inset"`
}

// Colors configures the color scale and document styling.
type Colors struct {
	Negative   string  `toml:"negative"`
	Neutral    string  `toml:"neutral"`
	Positive   string  `toml:"positive"`
	Extent     float64 `toml:"extent"`
	Legend     int     `toml:"legend"`
	Label      string  `toml:"label"`
	Background string  `toml:"background"`
}

// Cache configures the result cache.
type Cache struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"` // empty: the user cache directory
	Namespace       string `toml:"namespace"`
	RedisURL        string `toml:"redis_url"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures "gdpmap serve".
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxWidth     float64  `toml:"max_width"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct{ time.Duration }

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Fonts: Fonts{
			Family:       "Go",
			Weight:       fontmetrics.DefaultStyle.Weight,
			Sizes:        slices.Clone(fontmetrics.DefaultLadder),
			Alphabet:     fontmetrics.DefaultAlphabet.String(),
			Measurer:     MeasurerOpenType,
			PairFraction: fontmetrics.DefaultPairFraction,
			MaxPairs:     fontmetrics.DefaultMaxPairs,
			PaddingStep:  fontmetrics.DefaultPaddingStep,
		},
		Data: Data{
			Year:     DefaultYear,
			GDP:      GDPURL,
			Growth:   GrowthURL,
			Metadata: GDPURL,
			Timeout:  Duration{30 * time.Second},
			Attempts: 3,
		},
		Layout: Layout{
			Width:        960,
			Aspect:       treemap.DefaultAspect,
			MinArea:      treemap.DefaultMinArea,
			PaddingInner: treemap.DefaultPadding.Inner,
			PaddingOuter: treemap.DefaultPadding.Outer,
			PaddingTop:   treemap.DefaultPadding.Top,
			NarrowWidth:  label.DefaultNarrowWidth,
			HeaderGap:    label.DefaultHeader.Gap,
			HeaderInset:  label.DefaultHeader.Padding,
		},
		Colors: Colors{
			Negative: colorscale.DefaultNegative,
			Neutral:  colorscale.DefaultNeutral,
			Positive: colorscale.DefaultPositive,
			Extent:   colorscale.DefaultExtent,
			Legend:   render.DefaultLegendTicks,
			Label:    render.DefaultLabelColor,
		},
		Cache: Cache{
			Backend:   CacheFile,
			Namespace: "gdpmap:",
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
			MaxWidth:     4096,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "open config file %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML from r over the defaults and validates the result.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeConfiguration, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return nil
}

// Validate checks every section. It returns the first problem found as a
// CONFIGURATION error.
func (c *Config) Validate() error {
	if err := fontmetrics.Ladder(c.Fonts.Sizes).Validate(); err != nil {
		return err
	}
	if c.Fonts.Alphabet == "" {
		return errors.New(errors.ErrCodeConfiguration, "fonts.alphabet is empty")
	}
	switch c.Fonts.Measurer {
	case MeasurerOpenType, MeasurerCanvas:
	default:
		return errors.New(errors.ErrCodeConfiguration, "fonts.measurer must be %q or %q, got %q",
			MeasurerOpenType, MeasurerCanvas, c.Fonts.Measurer)
	}

	if c.Data.Year == "" {
		return errors.New(errors.ErrCodeConfiguration, "data.year is empty")
	}
	for name, src := range map[string]string{"gdp": c.Data.GDP, "growth": c.Data.Growth, "metadata": c.Data.Metadata} {
		if src == "" {
			return errors.New(errors.ErrCodeConfiguration, "data.%s is empty", name)
		}
	}

	l := c.Layout
	if l.Width <= 0 || l.Aspect <= 0 || l.MinArea < 0 {
		return errors.New(errors.ErrCodeConfiguration, "layout width %g and aspect %g must be positive", l.Width, l.Aspect)
	}
	if l.PaddingInner < 0 || l.PaddingOuter < 0 || l.PaddingTop < 0 {
		return errors.New(errors.ErrCodeConfiguration, "layout paddings must not be negative")
	}

	if _, err := c.ColorScale(); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "colors")
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeConfiguration, "cache.redis_url is required for the redis backend")
		}
	case CacheMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeConfiguration, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeConfiguration, "unknown cache backend %q", c.Cache.Backend)
	}

	if c.Server.MaxWidth <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "server.max_width must be positive")
	}
	return nil
}

// Ladder returns the configured font sizes.
func (c *Config) Ladder() fontmetrics.Ladder { return fontmetrics.Ladder(c.Fonts.Sizes) }

// Style returns the configured font style.
func (c *Config) Style() fontmetrics.Style {
	return fontmetrics.Style{Family: c.Fonts.Family, Weight: c.Fonts.Weight}
}

// BuildOptions returns the font metrics build options.
func (c *Config) BuildOptions() []fontmetrics.Option {
	return []fontmetrics.Option{
		fontmetrics.WithPairFraction(c.Fonts.PairFraction),
		fontmetrics.WithMaxPairs(c.Fonts.MaxPairs),
		fontmetrics.WithPaddingStep(c.Fonts.PaddingStep),
	}
}

// FitterOptions returns the label fitter options.
func (c *Config) FitterOptions() []label.Option {
	return []label.Option{
		label.WithNarrowWidth(c.Layout.NarrowWidth),
		label.WithHeader(label.Header{
			Height:  c.Layout.PaddingTop,
			Padding: c.Layout.HeaderInset,
			Gap:     c.Layout.HeaderGap,
		}),
	}
}

// PassOptions returns the render pass options.
func (c *Config) PassOptions() []treemap.PassOption {
	return []treemap.PassOption{
		treemap.WithAspect(c.Layout.Aspect),
		treemap.WithMinArea(c.Layout.MinArea),
		treemap.WithPadding(treemap.Padding{
			Inner: c.Layout.PaddingInner,
			Outer: c.Layout.PaddingOuter,
			Top:   c.Layout.PaddingTop,
		}),
	}
}

// ColorScale returns the configured color scale.
func (c *Config) ColorScale() (*colorscale.Scale, error) {
	e := c.Colors.Extent
	return colorscale.New(c.Colors.Negative, c.Colors.Neutral, c.Colors.Positive, colorscale.WithDomain(-e, 0, e))
}

// RenderOptions returns the output options for scale s.
func (c *Config) RenderOptions(s *colorscale.Scale) []render.Option {
	opts := []render.Option{
		render.WithScale(s),
		render.WithLegend(c.Colors.Legend),
		render.WithLabelColor(c.Colors.Label),
	}
	if c.Colors.Background != "" {
		opts = append(opts, render.WithBackground(c.Colors.Background))
	}
	return opts
}

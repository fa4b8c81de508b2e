package pipeline

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/matzehuels/gdpmap/pkg/cache"
	"github.com/matzehuels/gdpmap/pkg/config"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
	"github.com/matzehuels/gdpmap/pkg/fonts"
	"github.com/matzehuels/gdpmap/pkg/observability"
)

// Font returns the configured font, or Go Bold when no path is set.
func (r *Runner) Font() (*fonts.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadFont()
}

func (r *Runner) loadFont() (*fonts.Font, error) {
	if r.font != nil {
		return r.font, nil
	}
	fc := r.Config.Fonts
	if fc.Path == "" {
		r.font = fonts.Default()
		return r.font, nil
	}
	f, err := fonts.Load(fc.Path, fc.Family, fc.Weight)
	if err != nil {
		return nil, err
	}
	r.font = f
	return f, nil
}

// CanvasMeasurer returns a canvas measurer over the configured font. The
// PDF output draws with its faces.
func (r *Runner) CanvasMeasurer() (*fontmetrics.CanvasMeasurer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canvasMeasurer()
}

func (r *Runner) canvasMeasurer() (*fontmetrics.CanvasMeasurer, error) {
	if r.canvas != nil {
		return r.canvas, nil
	}
	f, err := r.loadFont()
	if err != nil {
		return nil, err
	}
	m, err := fontmetrics.NewCanvasMeasurer(f.Data, r.Config.Style())
	if err != nil {
		return nil, err
	}
	r.canvas = m
	return m, nil
}

// FontSettings returns the font metrics the label fitter measures with.
// A configured settings file wins; otherwise the settings are read from
// the cache or built and stored.
func (r *Runner) FontSettings(ctx context.Context) (*fontmetrics.Settings, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings != nil {
		return r.settings, true, nil
	}

	if path := r.Config.Fonts.Settings; path != "" {
		s, err := readSettings(path)
		if err != nil {
			return nil, false, err
		}
		r.settings = s
		return s, true, nil
	}

	f, err := r.loadFont()
	if err != nil {
		return nil, false, err
	}
	fc := r.Config.Fonts
	cacheKey := r.Keyer.FontSettingsKey(cache.FontKeyOpts{
		FontHash:     cache.Hash(f.Data),
		Family:       fc.Family,
		Weight:       fc.Weight,
		Ladder:       fc.Sizes,
		Alphabet:     fc.Alphabet,
		Measurer:     fc.Measurer,
		PairFraction: fc.PairFraction,
		MaxPairs:     fc.MaxPairs,
		PaddingStep:  fc.PaddingStep,
	})

	if data, hit := r.cached(ctx, cache.KeyTypeFonts, cacheKey, false); hit {
		if s, err := fontmetrics.Decode(bytes.NewReader(data)); err == nil {
			r.settings = s
			return s, true, nil
		}
		// Stale or foreign entry: rebuild.
	}

	s, err := r.buildSettings(ctx, f)
	if err != nil {
		return nil, false, err
	}
	var buf bytes.Buffer
	if err := fontmetrics.Encode(&buf, s); err == nil {
		r.store(ctx, cache.KeyTypeFonts, cacheKey, buf.Bytes(), cache.TTLFontSettings)
	}
	r.settings = s
	return s, false, nil
}

// BuildSettings measures the configured font without consulting the cache.
func (r *Runner) BuildSettings(ctx context.Context) (*fontmetrics.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.loadFont()
	if err != nil {
		return nil, err
	}
	return r.buildSettings(ctx, f)
}

func (r *Runner) buildSettings(ctx context.Context, f *fonts.Font) (s *fontmetrics.Settings, err error) {
	fc := r.Config.Fonts
	start := time.Now()
	observability.Pipeline().OnFontsStart(ctx, fc.Family, len(fc.Sizes))
	defer func() {
		observability.Pipeline().OnFontsComplete(ctx, fc.Family, time.Since(start), err)
	}()

	var m fontmetrics.Measurer
	switch fc.Measurer {
	case config.MeasurerCanvas:
		cm, err := r.canvasMeasurer()
		if err != nil {
			return nil, err
		}
		m = cm
	default:
		if !f.IsSFNT() {
			return nil, errors.New(errors.ErrCodeConfiguration,
				"the opentype measurer needs a TrueType or OpenType font, got %s; use measurer = %q", f.Format, config.MeasurerCanvas)
		}
		om, err := fontmetrics.NewOpenTypeMeasurerFromData(f.Data)
		if err != nil {
			return nil, err
		}
		defer om.Close()
		m = om
	}

	s, err = fontmetrics.Build(fontmetrics.Alphabet(fc.Alphabet), r.Config.Ladder(), r.Config.Style(), m, r.Config.BuildOptions()...)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("built font metrics",
		"family", fc.Family,
		"sizes", len(s.FontSizes),
		"measurer", fc.Measurer,
		"duration", time.Since(start))
	return s, nil
}

func readSettings(path string) (*fontmetrics.Settings, error) {
	if err := errors.ValidateSource(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "font settings %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "open font settings %s", path)
	}
	defer f.Close()
	return fontmetrics.Decode(f)
}

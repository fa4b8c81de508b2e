package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/gdpmap/pkg/cache"
	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
	"github.com/matzehuels/gdpmap/pkg/label"
	"github.com/matzehuels/gdpmap/pkg/observability"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

// Fitter returns a label fitter over s with the configured options.
func (r *Runner) Fitter(s *fontmetrics.Settings) *label.Fitter {
	return label.New(s, r.Config.FitterOptions()...)
}

// Layout runs the render pass for opts.Zoom and opts.Width over ds.
// Frames are cached by dataset, settings, zoom, width and geometry.
func (r *Runner) Layout(ctx context.Context, ds *Dataset, s *fontmetrics.Settings, opts Options) (frame *treemap.Frame, hit bool, err error) {
	if err := opts.ValidateAndSetDefaults(r.Config); err != nil {
		return nil, false, err
	}
	zoom := opts.ZoomState(ds.Tree)

	cacheKey := r.Keyer.FrameKey(ds.Hash, cache.FrameKeyOpts{
		SettingsKey: s.Key(),
		Zoom:        zoom.String(),
		Width:       opts.Width,
		Geometry:    r.geometryHash(),
	})
	if data, hit := r.cached(ctx, cache.KeyTypeFrame, cacheKey, opts.Refresh); hit {
		var cached treemap.Frame
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, true, nil
		}
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, zoom.String(), ds.Tree.Len())
	defer func() {
		cells := 0
		if frame != nil {
			cells = len(frame.Cells)
		}
		observability.Pipeline().OnLayoutComplete(ctx, zoom.String(), cells, time.Since(start), err)
	}()

	frame, err = treemap.Pass(ds.Tree, zoom, opts.Width, r.Fitter(s), r.Config.PassOptions()...)
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(frame); err == nil {
		r.store(ctx, cache.KeyTypeFrame, cacheKey, data, cache.TTLFrame)
	}

	r.Logger.Info("computed layout",
		"zoom", zoom.String(),
		"width", opts.Width,
		"cells", len(frame.Cells),
		"duration", time.Since(start))
	return frame, false, nil
}

// geometryHash identifies the layout and label configuration.
func (r *Runner) geometryHash() string {
	data, _ := json.Marshal(r.Config.Layout) // plain numbers; cannot fail
	return cache.Hash(data)
}

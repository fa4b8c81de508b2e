package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/gdpmap/pkg/cache"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/observability"
	"github.com/matzehuels/gdpmap/pkg/render"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

// Render writes frame in each format. Artifacts are cached per format;
// the hit flag is set only when every format came from the cache.
func (r *Runner) Render(ctx context.Context, frame *treemap.Frame, formats []string) (artifacts map[string][]byte, hit bool, err error) {
	if frame == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "no frame to render")
	}
	if len(formats) == 0 {
		formats = []string{FormatSVG}
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, false, err
	}
	formats = sortedFormats(formats)

	frameData, err := json.Marshal(frame)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize frame for cache key")
	}
	frameHash := cache.Hash(frameData)

	font, err := r.Font()
	if err != nil {
		return nil, false, err
	}
	scale, err := r.Config.ColorScale()
	if err != nil {
		return nil, false, err
	}
	opts := append(r.Config.RenderOptions(scale), render.WithFont(font))

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
	}()

	cc := r.Config.Colors
	domain := scale.Domain()
	artifacts = make(map[string][]byte, len(formats))
	hit = true
	for _, format := range formats {
		cacheKey := r.Keyer.ArtifactKey(frameHash, cache.ArtifactKeyOpts{
			Format:     format,
			FontHash:   cache.Hash(font.Data),
			Colors:     [3]string{cc.Negative, cc.Neutral, cc.Positive},
			Domain:     domain[:],
			Legend:     cc.Legend,
			Label:      cc.Label,
			Background: cc.Background,
		})
		if data, ok := r.cached(ctx, cache.KeyTypeArtifact, cacheKey, false); ok {
			artifacts[format] = data
			continue
		}
		hit = false

		data, err := r.renderFormat(format, frame, opts)
		if err != nil {
			return nil, false, err
		}
		r.store(ctx, cache.KeyTypeArtifact, cacheKey, data, cache.TTLArtifact)
		artifacts[format] = data
	}

	r.Logger.Info("rendered outputs",
		"formats", formats,
		"cached", hit,
		"duration", time.Since(start))
	return artifacts, hit, nil
}

func (r *Runner) renderFormat(format string, frame *treemap.Frame, opts []render.Option) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.SVG(frame, opts...), nil
	case FormatPDF:
		m, err := r.CanvasMeasurer()
		if err != nil {
			return nil, err
		}
		return render.PDF(frame, m, opts...)
	case FormatJSON:
		return render.JSON(frame, opts...)
	}
	return nil, ValidateFormat(format)
}

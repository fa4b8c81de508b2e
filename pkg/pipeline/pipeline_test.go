package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gdpmap/pkg/cache"
	"github.com/matzehuels/gdpmap/pkg/config"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/fontmetrics"
	"github.com/matzehuels/gdpmap/pkg/observability"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Data.GDP = filepath.Join("testdata", "gdp.csv")
	cfg.Data.Growth = filepath.Join("testdata", "growth.csv")
	cfg.Data.Metadata = filepath.Join("testdata", "meta.csv")
	return cfg
}

func fileCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	return c
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(testConfig(), nil, nil, nil)

	result, err := r.Execute(ctx, Options{Formats: []string{FormatSVG, FormatJSON, FormatPDF}})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Stats.Nodes)
	assert.Equal(t, "WLD", result.Frame.Focus)
	assert.Empty(t, result.Frame.Parent)
	assert.Equal(t, 960.0, result.Frame.Width)
	assert.Equal(t, 6, result.Stats.Cells, "two regions and four countries")
	assert.NotEmpty(t, result.DataHash)
	assert.Equal(t, config.Default().Fonts.Sizes, result.Settings.FontSizes)

	require.Len(t, result.Artifacts, 3)
	assert.True(t, bytes.HasPrefix(result.Artifacts[FormatSVG], []byte("<svg")))
	assert.True(t, bytes.HasPrefix(result.Artifacts[FormatPDF], []byte("%PDF-")))
	assert.Contains(t, string(result.Artifacts[FormatJSON]), `"focus": "WLD"`)
}

func TestExecuteZoom(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(testConfig(), nil, nil, nil)

	result, err := r.Execute(ctx, Options{Zoom: "ecs", Formats: []string{FormatJSON}})
	require.NoError(t, err)
	assert.Equal(t, "ECS", result.Frame.Focus)
	assert.Equal(t, "WLD", result.Frame.Parent)

	focus, ok := result.Frame.Cell("ECS")
	require.True(t, ok)
	assert.Equal(t, treemap.RoleZoomOut, focus.Role)

	result, err = r.Execute(ctx, Options{Zoom: "WLD", Formats: []string{FormatJSON}})
	require.NoError(t, err)
	assert.Equal(t, "WLD", result.Frame.Focus, "the world code is the root view")

	tests := []struct {
		zoom string
		code errors.Code
	}{
		{"USA", errors.ErrCodeInvalidInput},
		{"XYZ", errors.ErrCodeNotFound},
		{"not a code", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.zoom, func(t *testing.T) {
			_, err := r.Execute(ctx, Options{Zoom: tt.zoom})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestExecuteUsesCache(t *testing.T) {
	ctx := context.Background()
	c := fileCache(t)
	opts := Options{Zoom: "NAC", Width: 640, Formats: []string{FormatSVG}}

	first, err := NewRunner(testConfig(), c, nil, nil).Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.FontsHit)
	assert.False(t, first.CacheInfo.LayoutHit)
	assert.False(t, first.CacheInfo.RenderHit)

	second, err := NewRunner(testConfig(), c, nil, nil).Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.FontsHit)
	assert.True(t, second.CacheInfo.LayoutHit)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.Settings, second.Settings)
	assert.Equal(t, first.Frame, second.Frame)
	assert.Equal(t, first.Artifacts, second.Artifacts)

	opts.Refresh = true
	third, err := NewRunner(testConfig(), c, nil, nil).Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.LayoutHit)
}

func TestLayoutCacheKeyDependsOnGeometry(t *testing.T) {
	ctx := context.Background()
	c := fileCache(t)

	_, err := NewRunner(testConfig(), c, nil, nil).Execute(ctx, Options{Formats: []string{FormatJSON}})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Layout.PaddingTop = 20
	result, err := NewRunner(cfg, c, nil, nil).Execute(ctx, Options{Formats: []string{FormatJSON}})
	require.NoError(t, err)
	assert.True(t, result.CacheInfo.FontsHit)
	assert.False(t, result.CacheInfo.LayoutHit)
}

func TestFontSettingsFromFile(t *testing.T) {
	ctx := context.Background()
	built, err := NewRunner(testConfig(), nil, nil, nil).BuildSettings(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "font-settings.json")
	var buf bytes.Buffer
	require.NoError(t, fontmetrics.Encode(&buf, built))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	cfg := testConfig()
	cfg.Fonts.Settings = path
	s, hit, err := NewRunner(cfg, nil, nil, nil).FontSettings(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, built, s)

	cfg.Fonts.Settings = filepath.Join(t.TempDir(), "missing.json")
	_, _, err = NewRunner(cfg, nil, nil, nil).FontSettings(ctx)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestCanvasMeasurerSettings(t *testing.T) {
	cfg := testConfig()
	cfg.Fonts.Measurer = config.MeasurerCanvas
	s, hit, err := NewRunner(cfg, nil, nil, nil).FontSettings(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, s.Validate())
}

// zipOf builds an archive the way the World Bank download endpoint does.
func zipOf(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, path := range members {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoadDataFromArchives(t *testing.T) {
	gdp := zipOf(t, map[string]string{
		"API_NY.GDP.MKTP.CD_DS2_en_csv_v2_1.csv":            "testdata/gdp.csv",
		"Metadata_Country_API_NY.GDP.MKTP.CD_DS2_en_csv.csv": "testdata/meta.csv",
	})
	growth := zipOf(t, map[string]string{
		"API_NY.GDP.MKTP.KD.ZG_DS2_en_csv_v2_2.csv": "testdata/growth.csv",
	})

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/gdp":
			_, _ = w.Write(gdp)
		case "/growth":
			_, _ = w.Write(growth)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Data.GDP = srv.URL + "/gdp"
	cfg.Data.Growth = srv.URL + "/growth"
	cfg.Data.Metadata = srv.URL + "/gdp"
	c := fileCache(t)

	ctx := context.Background()
	ds, hit, err := NewRunner(cfg, c, nil, nil).LoadData(ctx, "2023", false)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, ds.Tree.Len())
	assert.EqualValues(t, 2, requests.Load(), "the shared archive is downloaded once")

	again, hit, err := NewRunner(cfg, c, nil, nil).LoadData(ctx, "2023", false)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, ds.Hash, again.Hash)
	assert.EqualValues(t, 2, requests.Load(), "downloads come from the cache")

	other, _, err := NewRunner(cfg, c, nil, nil).LoadData(ctx, "2022", false)
	require.NoError(t, err)
	assert.NotEqual(t, ds.Hash, other.Hash)

	cfg.Data.Growth = srv.URL + "/missing"
	cfg.Data.Attempts = 1
	_, _, err = NewRunner(cfg, nil, nil, nil).LoadData(ctx, "2023", false)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)
}

func TestLoadDataKeepsDatasets(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(testConfig(), nil, nil, nil)

	first, _, err := r.LoadData(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultYear, first.Year)

	second, hit, err := r.LoadData(ctx, "", false)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, first, second)

	third, _, err := r.LoadData(ctx, "", true)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestLoadDataMissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.Data.GDP = filepath.Join("testdata", "nope.csv")
	_, _, err := NewRunner(cfg, nil, nil, nil).LoadData(context.Background(), "2023", false)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestExtract(t *testing.T) {
	plain := []byte("\"Country Code\",\"Region\"\n")
	out, err := extract(plain, indicatorPrefix)
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	archive := zipOf(t, map[string]string{"nested/Metadata_Country_x.csv": "testdata/meta.csv"})
	out, err = extract(archive, metadataPrefix)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "Country Code"))

	_, err = extract(archive, indicatorPrefix)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, err = extract([]byte("PK\x03\x04garbage"), indicatorPrefix)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestExtractRejectsOversizedMember(t *testing.T) {
	archive := zipOf(t, map[string]string{"API_gdp.csv": "testdata/gdp.csv"})
	meta, err := os.Stat("testdata/gdp.csv")
	require.NoError(t, err)

	defer func(limit int64) { maxMember = limit }(maxMember)

	maxMember = meta.Size()
	out, err := extract(archive, indicatorPrefix)
	require.NoError(t, err, "a member of exactly the limit is accepted")
	assert.Len(t, out, int(meta.Size()))

	maxMember = meta.Size() - 1
	_, err = extract(archive, indicatorPrefix)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
	assert.Contains(t, err.Error(), "exceeds")
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	cfg := config.Default()

	var o Options
	require.NoError(t, o.ValidateAndSetDefaults(cfg))
	assert.Equal(t, cfg.Data.Year, o.Year)
	assert.Equal(t, cfg.Layout.Width, o.Width)
	assert.Equal(t, []string{FormatSVG}, o.Formats)

	o = Options{Zoom: " nac "}
	require.NoError(t, o.ValidateAndSetDefaults(cfg))
	assert.Equal(t, "NAC", o.Zoom)

	tests := []struct {
		name string
		opts Options
	}{
		{"negative width", Options{Width: -1}},
		{"huge width", Options{Width: 1e6}},
		{"unknown format", Options{Formats: []string{"png"}}},
		{"bad zoom", Options{Zoom: "north america"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults(cfg)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewRunner(testConfig(), nil, nil, nil)
	_, _, err := r.Render(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, _, err = r.Render(context.Background(), &treemap.Frame{Width: 10, Height: 10}, []string{"gif"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

type layoutRecorder struct {
	observability.NoopPipelineHooks
	zooms []string
}

func (h *layoutRecorder) OnLayoutComplete(_ context.Context, zoom string, _ int, _ time.Duration, err error) {
	if err == nil {
		h.zooms = append(h.zooms, zoom)
	}
}

func TestLayoutReportsHooks(t *testing.T) {
	rec := &layoutRecorder{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	_, err := NewRunner(testConfig(), nil, nil, nil).Execute(context.Background(), Options{Zoom: "ECS", Formats: []string{FormatJSON}})
	require.NoError(t, err)
	assert.Equal(t, []string{"zoomed(ECS)"}, rec.zooms)
}

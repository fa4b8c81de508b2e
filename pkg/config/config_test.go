package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{36, 30, 24, 20, 18, 14, 13, 12, 11, 10, 9, 8}, cfg.Fonts.Sizes)
	assert.Equal(t, DefaultYear, cfg.Data.Year)
	assert.Equal(t, 30*time.Second, cfg.Data.Timeout.Duration)
	assert.Equal(t, CacheFile, cfg.Cache.Backend)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
[data]
year = "2022"
gdp = "testdata/gdp.csv"
timeout = "5s"

[layout]
width = 1280

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"
`))
	require.NoError(t, err)

	assert.Equal(t, "2022", cfg.Data.Year)
	assert.Equal(t, "testdata/gdp.csv", cfg.Data.GDP)
	assert.Equal(t, GrowthURL, cfg.Data.Growth, "unset keys keep their default")
	assert.Equal(t, 5*time.Second, cfg.Data.Timeout.Duration)
	assert.Equal(t, 1280.0, cfg.Layout.Width)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"syntax", `[data`},
		{"unknown key", "[layout]\nwidht = 100"},
		{"bad duration", "[data]\ntimeout = \"soon\""},
		{"ascending sizes", "[fonts]\nsizes = [8, 10]"},
		{"unknown measurer", "[fonts]\nmeasurer = \"freetype\""},
		{"bad color", "[colors]\nnegative = \"red\""},
		{"zero extent", "[colors]\nextent = 0.0"},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"mongo without uri", "[cache]\nbackend = \"mongo\""},
		{"unknown backend", "[cache]\nbackend = \"memcached\""},
		{"negative padding", "[layout]\npadding_inner = -1.0"},
		{"empty year", "[data]\nyear = \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.toml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfiguration), "got %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdpmap.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Encode(&buf))
	assert.Contains(t, buf.String(), `timeout = "30s"`)

	cfg, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDerivedOptions(t *testing.T) {
	cfg := Default()
	s, err := cfg.ColorScale()
	require.NoError(t, err)
	assert.Equal(t, [3]float64{-0.06, 0, 0.06}, s.Domain())

	assert.Len(t, cfg.BuildOptions(), 3)
	assert.Len(t, cfg.FitterOptions(), 2)
	assert.Len(t, cfg.PassOptions(), 3)
	assert.Len(t, cfg.RenderOptions(s), 3)

	cfg.Colors.Background = "#000000"
	assert.Len(t, cfg.RenderOptions(s), 4)
	assert.Equal(t, "Go", cfg.Style().Family)
}

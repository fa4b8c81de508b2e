package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gdpmap/pkg/config"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/pipeline"
	"github.com/matzehuels/gdpmap/pkg/render"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Data.GDP = filepath.Join("testdata", "gdp.csv")
	cfg.Data.Growth = filepath.Join("testdata", "growth.csv")
	cfg.Data.Metadata = filepath.Join("testdata", "meta.csv")
	cfg.Server.MaxWidth = 2000

	srv := httptest.NewServer(New(pipeline.NewRunner(cfg, nil, nil, nil), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok\n", string(body))

	resp = get(t, srv, "/version")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[map[string]string](t, resp)
	assert.Contains(t, info, "version")
}

func TestFrame(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/api/v1/frame?zoom=ECS&width=800")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	doc := decode[render.Document](t, resp)
	assert.Equal(t, "ECS", doc.Focus)
	assert.Equal(t, "WLD", doc.Parent)
	assert.Equal(t, 800.0, doc.Width)
	assert.Len(t, doc.Cells, 3)
}

func TestSVGAndPDF(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/api/v1/treemap.svg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "<svg"))

	resp = get(t, srv, "/api/v1/treemap.pdf?zoom=NAC")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ = io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "%PDF-"))
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/healthz")
	_, err := uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path   string
		status int
		code   errors.Code
	}{
		{"/api/v1/frame?width=abc", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/api/v1/frame?width=5000", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/api/v1/frame?year=20", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/api/v1/frame?zoom=XYZ", http.StatusNotFound, errors.ErrCodeNotFound},
		{"/api/v1/frame?zoom=USA", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/api/v1/hit?x=1", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/api/v1/hit?x=-5&y=-5", http.StatusNotFound, errors.ErrCodeNotFound},
		{"/api/v1/nodes/XYZ", http.StatusNotFound, errors.ErrCodeNotFound},
		{"/api/v1/zoom/in", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/api/v1/zoom/in?code=USA", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/api/v1/zoom/in?zoom=ECS&code=NAC", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, srv, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[errorResponse](t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHit(t *testing.T) {
	srv := newTestServer(t)
	doc := decode[render.Document](t, get(t, srv, "/api/v1/frame"))

	var usa, nac treemap.Rect
	for _, c := range doc.Cells {
		switch c.Code {
		case "USA":
			usa = c.Rect
		case "NAC":
			nac = c.Rect
		}
	}

	x, y := (usa.X0+usa.X1)/2, (usa.Y0+usa.Y1)/2
	resp := get(t, srv, "/api/v1/hit?x="+ftoa(x)+"&y="+ftoa(y)+"&tw=120&th=40")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hit := decode[HitResponse](t, resp)
	assert.Equal(t, "USA", hit.Cell.Code)
	require.NotNil(t, hit.Tooltip)
	assert.Equal(t, "United States", hit.Tooltip.Title)
	require.NotNil(t, hit.Position)
	assert.Nil(t, hit.Zoom)

	// The header strip of a region belongs to the region itself.
	resp = get(t, srv, "/api/v1/hit?x="+ftoa(nac.X0+3)+"&y="+ftoa(nac.Y0+3))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hit = decode[HitResponse](t, resp)
	assert.Equal(t, "NAC", hit.Cell.Code)
	assert.Nil(t, hit.Tooltip)
	require.NotNil(t, hit.Zoom)
	assert.Equal(t, "NAC", *hit.Zoom)
}

func TestNode(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/api/v1/nodes/deu")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	n := decode[NodeResponse](t, resp)
	assert.Equal(t, "DEU", n.Code)
	assert.Equal(t, "Germany", n.Name)
	assert.Equal(t, "ECS", n.Parent)
	assert.Equal(t, "Germany", n.Tooltip.Title)
	assert.Len(t, n.Tooltip.Rows, 2)

	n = decode[NodeResponse](t, get(t, srv, "/api/v1/nodes/ECS"))
	assert.Equal(t, "WLD", n.Parent)
	assert.Nil(t, n.Change)
	assert.Greater(t, n.Value, 4e12)
}

func TestZoom(t *testing.T) {
	srv := newTestServer(t)

	z := decode[ZoomResponse](t, get(t, srv, "/api/v1/zoom/in?code=ECS"))
	assert.Equal(t, ZoomResponse{Zoom: "ECS", Focus: "Europe & Central Asia"}, z)

	z = decode[ZoomResponse](t, get(t, srv, "/api/v1/zoom/out?zoom=ECS"))
	assert.Equal(t, ZoomResponse{Zoom: "", Focus: "World"}, z)

	z = decode[ZoomResponse](t, get(t, srv, "/api/v1/zoom/out"))
	assert.Equal(t, ZoomResponse{Zoom: "", Focus: "World"}, z)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	s := New(pipeline.NewRunner(cfg, nil, nil, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gdpmap/pkg/buildinfo"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/hierarchy"
	"github.com/matzehuels/gdpmap/pkg/pipeline"
	"github.com/matzehuels/gdpmap/pkg/tooltip"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

// HitResponse describes the cell under a point.
type HitResponse struct {
	Cell     treemap.Cell     `json:"cell"`
	Tooltip  *tooltip.Content `json:"tooltip,omitempty"`
	Position *tooltip.Point   `json:"position,omitempty"` // tooltip corner, when tw and th are given
	Zoom     *string          `json:"zoom,omitempty"`     // zoom state after a click; absent for leaves
}

// NodeResponse describes one node of the tree.
type NodeResponse struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Level   int             `json:"level"`
	Value   float64         `json:"value"`
	Change  *float64        `json:"change,omitempty"`
	Parent  string          `json:"parent,omitempty"`
	Tooltip tooltip.Content `json:"tooltip"`
}

// ZoomResponse is a zoom state; an empty Zoom is the world view.
type ZoomResponse struct {
	Zoom  string `json:"zoom"`
	Focus string `json:"focus"` // name of the focused node
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.options(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}
		result, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(result.Artifacts[format])
	}
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	x, err := floatParam(q.Get("x"), "x", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	y, err := floatParam(q.Get("y"), "y", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tw, err := floatParam(q.Get("tw"), "tw", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	th, err := floatParam(q.Get("th"), "th", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ds, frame, err := s.frame(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cell, ok := frame.Hit(x, y)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no cell at (%g, %g)", x, y))
		return
	}

	resp := HitResponse{Cell: cell}
	switch cell.Role {
	case treemap.RoleLeaf:
		tip := tooltip.New(cell.Name, cell.Value, cell.Change)
		resp.Tooltip = &tip
		if tw > 0 && th > 0 {
			p := tooltip.DefaultPlacer.Place(
				tooltip.Point{X: x, Y: y},
				tooltip.Size{Width: tw, Height: th},
				tooltip.Size{Width: frame.Width, Height: frame.Height})
			resp.Position = &p
		}
	case treemap.RoleZoomIn:
		next := cell.Code
		resp.Zoom = &next
	case treemap.RoleZoomOut:
		next := opts.ZoomState(ds.Tree).Out(ds.Tree).Code()
		resp.Zoom = &next
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if err := errors.ValidateCode(code); err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, _, err := s.runner.LoadData(r.Context(), opts.Year, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, ok := ds.Tree.Find(code)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no node with code %q", code))
		return
	}
	resp := NodeResponse{
		Code:    n.Code,
		Name:    n.Name,
		Level:   n.Level,
		Value:   ds.Tree.Value(n),
		Change:  n.Change,
		Tooltip: tooltip.New(n.Name, ds.Tree.Value(n), n.Change),
	}
	if p := ds.Tree.Parent(n); p != nil {
		resp.Parent = p.Code
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleZoomIn(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	code := strings.ToUpper(r.URL.Query().Get("code"))
	if code == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "code is required"))
		return
	}
	if err := errors.ValidateCode(code); err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, _, err := s.runner.LoadData(r.Context(), opts.Year, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	next, err := opts.ZoomState(ds.Tree).In(ds.Tree, code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeZoom(w, r, ds.Tree, next)
}

func (s *Server) handleZoomOut(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, _, err := s.runner.LoadData(r.Context(), opts.Year, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	current := opts.ZoomState(ds.Tree)
	if _, err := current.Focus(ds.Tree); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeZoom(w, r, ds.Tree, current.Out(ds.Tree))
}

func (s *Server) writeZoom(w http.ResponseWriter, r *http.Request, tree *hierarchy.Tree, z treemap.Zoom) {
	focus, err := z.Focus(tree)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ZoomResponse{Zoom: z.Code(), Focus: focus.Name})
}

// options reads year, zoom and width from the query string.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Year: q.Get("year"),
		Zoom: q.Get("zoom"),
	}
	if opts.Year != "" {
		if _, err := strconv.Atoi(opts.Year); err != nil || len(opts.Year) != 4 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid year: %q", opts.Year)
		}
	}
	width, err := floatParam(q.Get("width"), "width", false)
	if err != nil {
		return opts, err
	}
	if width > s.cfg.MaxWidth {
		return opts, errors.New(errors.ErrCodeInvalidInput, "width too large (max %g)", s.cfg.MaxWidth)
	}
	opts.Width = width
	if err := opts.ValidateAndSetDefaults(s.runner.Config); err != nil {
		return opts, err
	}
	return opts, nil
}

// frame lays out the view opts names without rendering it.
func (s *Server) frame(ctx context.Context, opts pipeline.Options) (*pipeline.Dataset, *treemap.Frame, error) {
	settings, _, err := s.runner.FontSettings(ctx)
	if err != nil {
		return nil, nil, err
	}
	ds, _, err := s.runner.LoadData(ctx, opts.Year, false)
	if err != nil {
		return nil, nil, err
	}
	frame, _, err := s.runner.Layout(ctx, ds, settings, opts)
	if err != nil {
		return nil, nil, err
	}
	return ds, frame, nil
}

func floatParam(v, name string, required bool) (float64, error) {
	if v == "" {
		if required {
			return 0, errors.New(errors.ErrCodeInvalidInput, "%s is required", name)
		}
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
	}
	return f, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", RequestID(r.Context()))
	}
	s.writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

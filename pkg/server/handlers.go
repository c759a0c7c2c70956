package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/popdyn/pkg/errors"
	"github.com/matzehuels/popdyn/pkg/filter"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// CacheHeader reports whether a treemap response was served from cache.
const CacheHeader = "X-Cache"

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Treemap
// =============================================================================

func (s *Server) treemapJSON(w http.ResponseWriter, r *http.Request) {
	s.treemap(w, r, pipeline.FormatJSON, "application/json")
}

func (s *Server) treemapSVG(w http.ResponseWriter, r *http.Request) {
	s.treemap(w, r, pipeline.FormatSVG, "image/svg+xml")
}

func (s *Server) treemap(w http.ResponseWriter, r *http.Request, format, contentType string) {
	ctx := r.Context()
	opts, err := s.treemapOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	items, err := s.deps.Store.ListItems(ctx, filter.Criteria{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.deps.Runner.Execute(ctx, items, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cacheState := "miss"
	if res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit {
		cacheState = "hit"
	}
	w.Header().Set(CacheHeader, cacheState)
	w.Header().Set("ETag", strconv.Quote(res.LayoutHash))
	writeBytes(w, r, contentType, res.Artifacts[format])
}

// treemapOptions overlays the request's query parameters on the configured
// defaults.
func (s *Server) treemapOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	opts.Logger = loggerFromContext(r.Context())
	q := r.URL.Query()

	for _, dim := range []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
	} {
		if v := q.Get(dim.name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidDimensions, "%s must be a number, got %q", dim.name, v)
			}
			*dim.dst = f
		}
	}
	if v := q.Get("padding"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "padding must be a number, got %q", v)
		}
		opts = opts.WithPadding(p)
	}
	if v := q.Get("group_by"); v != "" {
		opts.GroupBy = v
	}
	if v := q.Get("q"); v != "" {
		opts.Query = v
	}
	if cats := q["category"]; len(cats) > 0 {
		opts.Categories = splitValues(cats)
	}
	if v := q.Get("popups"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "popups must be a boolean, got %q", v)
		}
		opts.Popups = b
	}
	opts.Refresh = q.Get("refresh") == "true"
	return opts, nil
}

// splitValues accepts both repeated parameters and comma separated lists.
func splitValues(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// =============================================================================
// Items
// =============================================================================

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := filter.Criteria{Query: q.Get("q"), Categories: splitValues(q["category"])}
	items, err := s.deps.Store.ListItems(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []treemap.Item{}
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.Store.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) putItems(w http.ResponseWriter, r *http.Request) {
	var items []treemap.Item
	if err := decodeJSON(r, &items); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Store.PutItems(r.Context(), items); err != nil {
		writeError(w, r, err)
		return
	}
	loggerFromContext(r.Context()).Info("items stored", "count", len(items))
	writeJSON(w, r, http.StatusOK, map[string]int{"stored": len(items)})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Store.ListItems(r.Context(), filter.Criteria{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, filter.Categories(items))
}

// =============================================================================
// Metrics and panels
// =============================================================================

func (s *Server) getMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.deps.Store.Metrics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, m)
}

func (s *Server) putMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var m panels.Metrics
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Store.PutMetrics(ctx, m); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Panels.Update(ctx, m); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.deps.Panels.Current())
}

func (s *Server) getPanels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctl := s.deps.Panels
	viewport, variant := ctl.Viewport(), ctl.Variant()
	if v := q.Get("viewport"); v != "" {
		px, err := strconv.Atoi(v)
		if err != nil || px < 0 {
			writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "viewport must be a non-negative integer, got %q", v))
			return
		}
		viewport = px
	}
	if v := q.Get("variant"); v != "" {
		parsed, err := panels.ParseVariant(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		variant = parsed
	}
	writeJSON(w, r, http.StatusOK, ctl.View(viewport, variant))
}

// panelRequest is the body of the panel control endpoints.
type panelRequest struct {
	Panel string `json:"panel"`
}

func (s *Server) panelFromBody(r *http.Request) (panels.PanelID, error) {
	var req panelRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", err
	}
	return panels.ParsePanelID(req.Panel)
}

func (s *Server) setOverride(w http.ResponseWriter, r *http.Request) {
	s.panelControl(w, r, func(id panels.PanelID) error { return s.deps.Panels.Override(r.Context(), id) })
}

func (s *Server) pin(w http.ResponseWriter, r *http.Request) {
	s.panelControl(w, r, s.deps.Panels.Pin)
}

func (s *Server) hover(w http.ResponseWriter, r *http.Request) {
	s.panelControl(w, r, s.deps.Panels.Hover)
}

func (s *Server) panelControl(w http.ResponseWriter, r *http.Request, apply func(panels.PanelID) error) {
	id, err := s.panelFromBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := apply(id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.deps.Panels.Current())
}

func (s *Server) resetOverride(w http.ResponseWriter, r *http.Request) {
	s.deps.Panels.ResetOverride(r.Context())
	writeJSON(w, r, http.StatusOK, s.deps.Panels.Current())
}

func (s *Server) unpin(w http.ResponseWriter, r *http.Request) {
	s.deps.Panels.Unpin()
	writeJSON(w, r, http.StatusOK, s.deps.Panels.Current())
}

func (s *Server) unhover(w http.ResponseWriter, r *http.Request) {
	s.deps.Panels.Unhover()
	writeJSON(w, r, http.StatusOK, s.deps.Panels.Current())
}

package server

import (
	"context"
	"encoding/json"
	"io/fs"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/genetrack/pkg/buildinfo"
	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
	pkgio "github.com/matzehuels/genetrack/pkg/io"
	"github.com/matzehuels/genetrack/pkg/pipeline"
	"github.com/matzehuels/genetrack/pkg/track/sink"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
	Files  bool           `json:"files"`
	Mongo  bool           `json:"mongo"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Build:  buildinfo.Get(),
		Files:  s.data != nil,
		Mongo:  s.store != nil,
	})
}

type tracksResponse struct {
	Files []string `json:"files"`
	Mongo []string `json:"mongo"`
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	resp := tracksResponse{Files: []string{}, Mongo: []string{}}
	if s.data != nil {
		err := fs.WalkDir(s.data, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if _, ferr := pkgio.DetectFormat(path); ferr == nil {
				resp.Files = append(resp.Files, path)
			}
			return nil
		})
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "list data directory"))
			return
		}
	}
	if s.store != nil {
		tracks, err := s.store.Tracks(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		slices.Sort(tracks)
		resp.Mongo = tracks
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.serveTrack(w, r, pipeline.FormatJSON)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveTrack(w, r, format)
}

func (s *Server) serveTrack(w http.ResponseWriter, r *http.Request, format string) {
	opts, err := s.parseOptions(r)
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

	data := result.Artifacts[format]
	if format == pipeline.FormatJSON {
		// Cached JSON carries no per-request ID; re-render to include it.
		data, err = sink.RenderJSON(result.Layout,
			sink.WithJSONID(result.LayoutID),
			sink.WithJSONStyle(opts.Style),
			sink.WithJSONRows(opts.RowHeight, *opts.RowPadding),
		)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
			return
		}
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Layout-ID", result.LayoutID)
	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo))
	w.Header().Set("X-Features-Hidden", strconv.Itoa(result.Layout.Hidden))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// parseOptions builds pipeline options from the query string on top of the
// server defaults.
func (s *Server) parseOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	d := s.defaults
	opts := pipeline.Options{
		Width:          d.Width,
		MaxRows:        d.MaxRows,
		LabelCharWidth: d.LabelCharWidth,
		Style:          d.Style,
		RowHeight:      d.RowHeight,
		RowPadding:     d.RowPadding,
		HiddenPixels:   d.HiddenPixels,
		Titles:         d.Titles,
		SegmentColors:  d.SegmentColors,
		Scale:          d.Scale,
		Logger:         s.logger,
	}

	track := q.Get("track")
	if track == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "track is required")
	}
	src, refresh, err := s.source(track)
	if err != nil {
		return opts, err
	}
	opts.Source = src
	opts.Refresh = refresh

	region, err := genome.ParseRegion(q.Get("region"))
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidRegion, err, "region")
	}
	opts.Region = region

	p := queryParser{q: q}
	if v, ok := p.float("width"); ok {
		opts.Width = v
	}
	if v, ok := p.int("max_rows"); ok {
		opts.MaxRows = pipeline.Int(v)
	}
	if v, ok := p.float("label_char_width"); ok {
		opts.LabelCharWidth = pipeline.Float(v)
	}
	if v, ok := p.float("row_height"); ok {
		opts.RowHeight = v
	}
	if v, ok := p.float("row_padding"); ok {
		opts.RowPadding = pipeline.Float(v)
	}
	if v, ok := p.float("hidden_pixels"); ok {
		opts.HiddenPixels = v
	}
	if v, ok := p.float("scale"); ok {
		opts.Scale = v
	}
	if v, ok := p.bool("titles"); ok {
		opts.Titles = v
	}
	if p.err != nil {
		return opts, p.err
	}
	return opts, nil
}

// source resolves a track name. Database tracks are loaded with refresh
// because the store cannot tell when its contents change.
func (s *Server) source(track string) (pipeline.Source, bool, error) {
	if _, err := pkgio.DetectFormat(track); err == nil {
		if s.data == nil {
			return nil, false, errors.New(errors.ErrCodeNotFound, "file tracks are not enabled")
		}
		if err := errors.ValidatePath(track); err != nil {
			return nil, false, err
		}
		return fileSource{fsys: s.data, name: track}, false, nil
	}
	if s.store == nil {
		return nil, false, errors.New(errors.ErrCodeNotFound, "track %q not found", track)
	}
	return s.store.WithTrack(track), true, nil
}

type queryParser struct {
	q   map[string][]string
	err error
}

func (p *queryParser) raw(name string) (string, bool) {
	vals := p.q[name]
	if len(vals) == 0 || vals[0] == "" || p.err != nil {
		return "", false
	}
	return vals[0], true
}

func (p *queryParser) float(name string) (float64, bool) {
	s, ok := p.raw(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.err = errors.New(errors.ErrCodeInvalidInput, "%s: not a finite number: %q", name, s)
		return 0, false
	}
	return v, true
}

func (p *queryParser) int(name string) (int, bool) {
	s, ok := p.raw(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.err = errors.New(errors.ErrCodeInvalidInput, "%s: not an integer: %q", name, s)
		return 0, false
	}
	return v, true
}

func (p *queryParser) bool(name string) (bool, bool) {
	s, ok := p.raw(name)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.err = errors.New(errors.ErrCodeInvalidInput, "%s: not a boolean: %q", name, s)
		return false, false
	}
	return v, true
}

// fileSource reads a track from the data directory.
type fileSource struct {
	fsys fs.FS
	name string
}

func (f fileSource) Name() string {
	info, err := fs.Stat(f.fsys, f.name)
	if err != nil {
		return "data:" + f.name
	}
	return "data:" + f.name + "@" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
}

func (f fileSource) Features(ctx context.Context, _ genome.Region) ([]genome.Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pkgio.ImportFS(f.fsys, f.name)
}

func cacheHeader(ci pipeline.CacheInfo) string {
	var parts []string
	if ci.LoadHit {
		parts = append(parts, "load")
	}
	if ci.LayoutHit {
		parts = append(parts, "layout")
	}
	if ci.RenderHit {
		parts = append(parts, "render")
	}
	if len(parts) == 0 {
		return "miss"
	}
	return "hit=" + strings.Join(parts, ",")
}

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "error", err)
	}
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: code, Message: msg},
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

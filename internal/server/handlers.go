package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/matzehuels/geoprofile/pkg/errors"
	gpio "github.com/matzehuels/geoprofile/pkg/io"
	"github.com/matzehuels/geoprofile/pkg/pipeline"
)

// sectionRequest is the body of every /v1/sections call.
type sectionRequest struct {
	Input   json.RawMessage `json:"input"`
	Options json.RawMessage `json:"options,omitempty"`
}

// errorResponse is the body of every failed call.
type errorResponse struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// mapFormats are the formats served by /v1/sections/map.
var mapFormats = map[string]bool{
	pipeline.FormatSVG:     true,
	pipeline.FormatPNG:     true,
	pipeline.FormatDOT:     true,
	pipeline.FormatGeoJSON: true,
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	s.serveFormat(w, r, pipeline.FormatJSON)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if !mapFormats[format] {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported map format %q (must be one of: svg, png, dot, geojson)", format))
		return
	}
	s.serveFormat(w, r, format)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.serveFormat(w, r, pipeline.FormatProfile)
}

// serveFormat runs the pipeline for one format and writes the artifact.
func (s *Server) serveFormat(w http.ResponseWriter, r *http.Request, format string) {
	in, opts, err := s.decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	res, err := s.runner.Execute(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", pipeline.ContentType(format))
	h.Set("X-Run-ID", res.RunID)
	h.Set("X-Section-Length", strconv.FormatFloat(res.Section.Length, 'f', -1, 64))
	if res.CacheInfo.SectionHit {
		h.Set("X-Cache", "hit")
	} else {
		h.Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// decodeRequest reads the input document and merges request options over
// the server defaults.
func (s *Server) decodeRequest(r *http.Request) (*gpio.Input, pipeline.Options, error) {
	var req sectionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	if len(req.Input) == 0 {
		return nil, pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "request has no input document")
	}

	in, err := gpio.ReadInput(bytes.NewReader(req.Input))
	if err != nil {
		return nil, pipeline.Options{}, err
	}

	opts := s.cfg.Defaults.Clone()
	if len(req.Options) > 0 {
		od := json.NewDecoder(bytes.NewReader(req.Options))
		od.DisallowUnknownFields()
		if err := od.Decode(&opts); err != nil {
			return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode options")
		}
	}
	return in, opts, nil
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidColumn,
		errors.ErrCodeInvalidPolicy, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeDegenerateLine, errors.ErrCodeEmptyColumnSet:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if status == http.StatusRequestEntityTooLarge {
		code = errors.ErrCodeInvalidInput
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	body := errorResponse{
		Error:     errorBody{Code: code, Message: errors.UserMessage(err)},
		RequestID: RequestID(r.Context()),
	}
	if status == http.StatusRequestEntityTooLarge {
		body.Error.Message = "request body too large"
	}
	if status >= 500 {
		s.logger.Error("request failed", "error", err, "request_id", body.RequestID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

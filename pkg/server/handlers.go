package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cardmap/pkg/buildinfo"
	cmerrors "github.com/matzehuels/cardmap/pkg/errors"
	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/observability"
	"github.com/matzehuels/cardmap/pkg/panel"
	"github.com/matzehuels/cardmap/pkg/pipeline"
	"github.com/matzehuels/cardmap/pkg/placement"
	"github.com/matzehuels/cardmap/pkg/render"
	"github.com/matzehuels/cardmap/pkg/session"
	"github.com/matzehuels/cardmap/pkg/vault"
)

// LayoutRequest is the body of POST /api/v1/layout and POST /api/v1/sessions.
// Zero fields fall back to the server defaults.
type LayoutRequest struct {
	ViewType    string           `json:"view_type,omitempty"`
	Width       float64          `json:"width,omitempty"`
	Height      float64          `json:"height,omitempty"`
	MaxItems    int              `json:"max_items,omitempty"`
	CenterLabel string           `json:"center_label,omitempty"`
	Items       []panel.Item     `json:"items,omitempty"`
	Config      placement.Config `json:"config"`
}

// SessionResponse describes an open panel.
type SessionResponse struct {
	ID        string        `json:"id"`
	ViewType  string        `json:"view_type"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Layout    layout.Layout `json:"layout"`
}

type errorResponse struct {
	Code    cmerrors.Code `json:"code"`
	Message string        `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	l, err := s.runner.ComputeLayout(r.Context(), vault.Static(req.Items), s.options(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	if s.vault == nil {
		s.writeError(w, r, cmerrors.New(cmerrors.ErrCodeVaultNotFound, "no vault configured"))
		return
	}
	format := chi.URLParam(r, "format")

	var req LayoutRequest
	var err error
	if req.Width, err = queryFloat(r, "width"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Height, err = queryFloat(r, "height"); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.options(req)
	opts.Formats = []string{format}
	res, err := s.runner.Execute(r.Context(), s.vault, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var src panel.ItemSource = vault.Static(req.Items)
	if len(req.Items) == 0 && s.vault != nil {
		src = s.vault
	}

	// The view outlives the request; only listing is bound to it.
	v, l, err := s.runner.OpenPanel(r.Context(), src, s.options(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(v, l, s.ttl)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		_ = s.runner.Release(r.Context(), v)
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("opened panel", "session", sess.ID, "cards", len(l.Cards))

	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("closed panel", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func sessionResponse(sess *session.Session) SessionResponse {
	resp := SessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
		Layout:    sess.Layout,
	}
	if sess.View != nil {
		resp.ViewType = sess.View.Type()
	}
	return resp
}

// options merges req over the server defaults.
func (s *Server) options(req LayoutRequest) pipeline.Options {
	opts := s.defaults
	opts.Logger = s.logger
	if req.ViewType != "" {
		opts.ViewType = req.ViewType
	}
	if req.Width != 0 {
		opts.Width = req.Width
	}
	if req.Height != 0 {
		opts.Height = req.Height
	}
	if req.MaxItems != 0 {
		opts.MaxItems = req.MaxItems
	}
	if req.CenterLabel != "" {
		opts.CenterLabel = req.CenterLabel
	}
	opts.Placement = mergeConfig(opts.Placement, req.Config)
	return opts
}

func mergeConfig(base, over placement.Config) placement.Config {
	pick := func(b, o float64) float64 {
		if o != 0 {
			return o
		}
		return b
	}
	base.CardWidth = pick(base.CardWidth, over.CardWidth)
	base.CardHeight = pick(base.CardHeight, over.CardHeight)
	base.MinGap = pick(base.MinGap, over.MinGap)
	base.BoundaryPadding = pick(base.BoundaryPadding, over.BoundaryPadding)
	base.InitialRadius = pick(base.InitialRadius, over.InitialRadius)
	base.RadiusStep = pick(base.RadiusStep, over.RadiusStep)
	base.AngleStep = pick(base.AngleStep, over.AngleStep)
	if over.MaxAttempts != 0 {
		base.MaxAttempts = over.MaxAttempts
	}
	return base
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, cmerrors.New(cmerrors.ErrCodeInvalidInput, "%s must be a number, got %q", name, raw)
	}
	return v, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return cmerrors.Wrap(cmerrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch {
	case cmerrors.IsInvalid(err):
		return http.StatusBadRequest
	case cmerrors.IsNotFound(err):
		return http.StatusNotFound
	case cmerrors.Is(err, cmerrors.ErrCodeSessionExpired):
		return http.StatusGone
	case cmerrors.Is(err, cmerrors.ErrCodeAlreadyRegistered):
		return http.StatusConflict
	case cmerrors.Is(err, cmerrors.ErrCodeTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := cmerrors.GetCode(err)
	if code == "" {
		code = cmerrors.ErrCodeInternal
	}
	msg := cmerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.Host, r.URL.Path, err)
		s.logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", RequestIDFromContext(r.Context()))
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

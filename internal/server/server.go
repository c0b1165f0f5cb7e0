// Package server exposes a shelf session over HTTP for browser hosts.
//
// The browser owns rendering and pointer capture; it converts pointer
// positions into container pixels and posts them here. Every response
// carries the frame to draw.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/shelfspace/pkg/buildinfo"
	"github.com/matzehuels/shelfspace/pkg/errors"
	"github.com/matzehuels/shelfspace/pkg/session"
	"github.com/matzehuels/shelfspace/pkg/shelf"
	"github.com/matzehuels/shelfspace/pkg/store"
)

// Server routes HTTP requests to one session.
type Server struct {
	sess   *session.Session
	logger *log.Logger
	router chi.Router
}

// New creates a server for sess. If logger is nil, log.Default() is used.
func New(sess *session.Session, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{sess: sess, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)

		r.Route("/pointer", func(r chi.Router) {
			r.Post("/down", s.handlePointerDown)
			r.Post("/move", s.handlePointerMove)
			r.Post("/up", s.handlePointerUp)
		})

		r.Get("/items", s.handleListItems)
		r.Post("/items", s.handleAddItems)
		r.Post("/ornaments", s.handleAddOrnament)

		r.Get("/archive", s.handleListArchive)
		r.Post("/archive/{kind}/{id}/restore", s.handleRestore)
		r.Delete("/archive/{kind}/{id}", s.handleDeleteForever)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Responses
// =============================================================================

// frameResponse is what a browser host draws.
type frameResponse struct {
	Shelves     int          `json:"shelves"`
	Ghost       bool         `json:"ghost"`
	Height      float64      `json:"height"`
	Dragging    string       `json:"dragging,omitempty"`
	TargetShelf int          `json:"targetShelf"`
	Magnetic    bool         `json:"magnetic"`
	Entries     shelf.Layout `json:"entries"`
	Playing     bool         `json:"playing"`
}

type effectResponse struct {
	Type       string            `json:"type"`
	Kind       shelf.Kind        `json:"kind,omitempty"`
	ID         string            `json:"id,omitempty"`
	Placements []shelf.Placement `json:"placements,omitempty"`
}

type pointerResponse struct {
	Frame   frameResponse    `json:"frame"`
	Effects []effectResponse `json:"effects"`
	Saved   bool             `json:"saved"`
	Opened  *store.Book      `json:"opened,omitempty"`
	Toggled bool             `json:"toggled,omitempty"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) frame() frameResponse {
	st, f := s.sess.Snapshot()
	visible := shelf.VisibleShelves(st)
	resp := frameResponse{
		Shelves:     st.ShelfCount,
		Ghost:       st.Ghost,
		Height:      s.sess.Geometry().Height(visible),
		TargetShelf: f.TargetShelf,
		Magnetic:    f.Magnetic,
		Entries:     f.Layout,
		Playing:     s.sess.Playing(),
	}
	if st.Drag != nil {
		resp.Dragging = st.Drag.ItemID
	}
	if resp.Entries == nil {
		resp.Entries = shelf.Layout{}
	}
	return resp
}

func toEffects(effects []shelf.Effect) []effectResponse {
	out := make([]effectResponse, 0, len(effects))
	for _, eff := range effects {
		switch eff := eff.(type) {
		case shelf.Reorder:
			out = append(out, effectResponse{Type: "reorder", Kind: eff.Kind, Placements: eff.Placements})
		case shelf.Archive:
			out = append(out, effectResponse{Type: "archive", Kind: eff.Kind, ID: eff.ID})
		case shelf.Activate:
			out = append(out, effectResponse{Type: "activate", Kind: eff.Entry.Kind, ID: eff.Entry.ID})
		}
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func parseKind(raw string) (shelf.Kind, error) {
	k := shelf.Kind(raw)
	if !k.Valid() {
		return "", errors.New(errors.ErrCodeInvalidKind, "unknown item kind %q", raw)
	}
	return k, nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.frame())
}

type pointerRequest struct {
	ItemID string  `json:"itemId,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (s *Server) handlePointerDown(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var (
		res session.Result
		err error
	)
	if req.ItemID == "" {
		var hit bool
		res, hit, err = s.sess.Grab(r.Context(), req.X, req.Y)
		if err == nil && !hit {
			err = errors.New(errors.ErrCodeItemNotFound, "no item at (%v, %v)", req.X, req.Y)
		}
	} else if err = errors.ValidateItemID(req.ItemID); err == nil {
		res, err = s.sess.PointerDown(r.Context(), req.ItemID, req.X, req.Y)
	}
	s.writePointer(w, res, err)
}

func (s *Server) handlePointerMove(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.sess.PointerMove(r.Context(), req.X, req.Y)
	s.writePointer(w, res, err)
}

func (s *Server) handlePointerUp(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.sess.PointerUp(r.Context(), req.X, req.Y)
	s.writePointer(w, res, err)
}

func (s *Server) writePointer(w http.ResponseWriter, res session.Result, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pointerResponse{
		Frame:   s.frame(),
		Effects: toEffects(res.Effects),
		Saved:   res.Saved,
		Opened:  res.Opened,
		Toggled: res.Toggled,
	})
}

type itemsResponse struct {
	Title     string           `json:"title"`
	Subtitle  string           `json:"subtitle"`
	Theme     string           `json:"theme"`
	Books     []store.Book     `json:"books"`
	Ornaments []store.Ornament `json:"ornaments"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	lib := s.sess.Library()
	s.writeJSON(w, http.StatusOK, itemsResponse{
		Title:     lib.Title,
		Subtitle:  lib.Subtitle,
		Theme:     lib.Theme,
		Books:     lib.Books,
		Ornaments: lib.Ornaments,
	})
}

type addItemsRequest struct {
	ItemType string        `json:"itemType"`
	Items    []store.Draft `json:"items"`
}

func (s *Server) handleAddItems(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.ItemType == "" {
		req.ItemType = store.ItemTypeBook
	}
	if len(req.Items) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "items cannot be empty"))
		return
	}
	added, err := s.sess.AddBooks(r.Context(), req.Items, req.ItemType)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, added)
}

type addOrnamentRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleAddOrnament(w http.ResponseWriter, r *http.Request) {
	var req addOrnamentRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	added, err := s.sess.AddOrnament(r.Context(), req.Type)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, added)
}

type archiveResponse struct {
	Books     []store.Book     `json:"books"`
	Ornaments []store.Ornament `json:"ornaments"`
}

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	lib := s.sess.Library()
	s.writeJSON(w, http.StatusOK, archiveResponse{Books: lib.ArchivedBooks, Ornaments: lib.ArchivedOrnaments})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.sess.Restore(r.Context(), chi.URLParam(r, "id"), kind); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.frame())
}

func (s *Server) handleDeleteForever(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.sess.DeleteForever(r.Context(), chi.URLParam(r, "id"), kind); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type api struct {
	store      *Store
	log        *slog.Logger
	bus        *EventBus
	demoUserID string
}

func newAPI(store *Store, log *slog.Logger, demoUserID string) *api {
	return &api{store: store, log: log, bus: NewEventBus(), demoUserID: demoUserID}
}

func (a *api) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(withLogging(a.log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(a.withActor)

			r.Get("/boards", a.handleListBoards)
			r.Post("/boards", a.handleCreateBoard)
			r.Get("/boards/{boardID}", a.handleGetBoard)

			r.Get("/boards/{boardID}/lists", a.handleListsByBoard)
			r.Post("/boards/{boardID}/lists", a.handleCreateList)
			r.Patch("/boards/{boardID}/lists/{listID}", a.handleUpdateList)
			r.Delete("/boards/{boardID}/lists/{listID}", a.handleDeleteList)
			r.Post("/boards/{boardID}/reorder-lists", a.handleReorderLists)

			r.Get("/lists/{listID}/cards", a.handleCardsByList)
			r.Post("/lists/{listID}/cards", a.handleCreateCard)
			r.Patch("/cards/{cardID}", a.handleUpdateCard)
			r.Delete("/cards/{cardID}", a.handleDeleteCard)
			r.Post("/cards/{cardID}/move", a.handleMoveCard)

			r.Get("/boards/{boardID}/activity", a.handleActivity)
			r.Delete("/boards/{boardID}/activity", a.handleClearActivity)
			r.Post("/activity/{eventID}/undo", a.handleUndo)

			r.Get("/boards/{boardID}/events", a.handleBoardEvents)
		})
	})
	return r
}

type actorKey struct{}

// withActor resolves the acting user from the trusted X-User-Id header
// (demo stand-in for real authentication) and upserts it on first sight.
func (a *api) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-Id")
		if id == "" {
			id = a.demoUserID
		}
		if _, err := a.store.EnsureUser(r.Context(), id); err != nil {
			a.log.Error("ensure user", "err", err)
			writeAPIError(w, 500, "INTERNAL", "internal error")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, id)))
	})
}

func actorID(r *http.Request) string {
	id, _ := r.Context().Value(actorKey{}).(string)
	return id
}

func chiParam(r *http.Request, key string) string { return chi.URLParam(r, key) }

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"ok": true, "data": data})
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"ok":    false,
		"error": map[string]any{"code": code, "message": message},
	})
}

// fail maps the error taxonomy onto HTTP. Anything unrecognized,
// including internal-consistency faults, is logged and surfaced as a
// generic failure.
func (a *api) fail(w http.ResponseWriter, op string, err error) {
	var ve *ValidationError
	var ce *ConflictError
	switch {
	case errors.As(err, &ve):
		writeAPIError(w, 400, "VALIDATION", ve.Message)
	case errors.Is(err, ErrForbidden):
		writeAPIError(w, 403, "FORBIDDEN", "not a board member")
	case errors.Is(err, ErrNotFound):
		writeAPIError(w, 404, "NOT_FOUND", "not found")
	case errors.As(err, &ce):
		writeAPIError(w, 409, ce.Code, ce.Message)
	default:
		a.log.Error(op, "err", err)
		writeAPIError(w, 500, "INTERNAL", "internal error")
	}
}

// Title/description limits shared with the original clients.
const (
	maxBoardTitleLen  = 120
	maxListTitleLen   = 120
	maxCardTitleLen   = 200
	maxDescriptionLen = 5000
)

func validTitle(s string, max int) bool { return len(s) >= 1 && len(s) <= max }

func withLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: 200}
			start := time.Now()
			next.ServeHTTP(sw, r)
			log.Info("http", "method", r.Method, "path", r.URL.Path, "status", sw.status, "dur_ms", time.Since(start).Milliseconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }

// Implement http.Flusher if the underlying writer supports it (needed for SSE)
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, 200, map[string]any{"ts": time.Now().UTC().Format(time.RFC3339)})
}

// Package apitest runs an in-process products API for tests. It follows the envelope
// conventions of the real backend: {"success": true, "data": ...} on success and
// {"success": false, "message": ...} on failure.
package apitest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	producterrors "github.com/abgdnv/storefront/internal/product/errors"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
)

const (
	MsgMissingFields  = "Please provide all fields"
	MsgNotFound       = "Product not found"
	MsgUpdated        = "Product updated successfully"
	MsgDeleted        = "Product deleted"
	MsgServerError    = "Server Error"
	MsgInvalidRequest = "Invalid request body"
)

// Reply is a canned response returned instead of the normal handler.
type Reply struct {
	Status int
	Body   string
}

// Server is a running fake products API.
type Server struct {
	*httptest.Server

	docs     *documents
	logger   *slog.Logger
	requests atomic.Int64

	mu        sync.Mutex
	overrides map[string]Reply
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		docs:      newDocuments(),
		logger:    bootstrap.NewLoggerTo(io.Discard, "error"),
		overrides: make(map[string]Reply),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(s.logger))
	mux.Use(web.Recoverer(s.logger))
	mux.Use(s.count)
	mux.Use(s.override)

	mux.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.findAll)
		r.Post("/", s.create)

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", s.update)
			r.Delete("/", s.deleteByID)
		})
	})
	return mux
}

// Seed stores documents as if they had been created through the API and returns their ids.
func (s *Server) Seed(docs ...Document) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, s.docs.Create(d)["_id"].(string))
	}
	return ids
}

// Documents returns the stored documents in order.
func (s *Server) Documents() []Document {
	return s.docs.FindAll()
}

// Requests returns the number of requests received so far.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Respond makes every subsequent request with method answer with reply.
func (s *Server) Respond(method string, reply Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method] = reply
}

// Reset removes all canned replies.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.overrides)
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) override(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		reply, ok := s.overrides[r.Method]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.Status)
		_, _ = io.WriteString(w, reply.Body)
	})
}

func (s *Server) findAll(w http.ResponseWriter, r *http.Request) {
	list := s.docs.FindAll()
	s.logger.DebugContext(r.Context(), "Listing products", "count", len(list))
	web.RespondJSON(w, s.logger, http.StatusOK, map[string]any{"success": true, "data": list})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var fields Document
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, s.logger, http.StatusBadRequest, MsgInvalidRequest)
		return
	}
	if !truthy(fields["name"]) || !truthy(fields["price"]) || !truthy(fields["image"]) {
		web.RespondError(w, s.logger, http.StatusBadRequest, MsgMissingFields)
		return
	}
	created := s.docs.Create(fields)
	s.logger.InfoContext(r.Context(), "Product created", "ID", created["_id"])
	web.RespondJSON(w, s.logger, http.StatusCreated, map[string]any{"success": true, "data": created})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var fields Document
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		web.RespondError(w, s.logger, http.StatusBadRequest, MsgInvalidRequest)
		return
	}
	updated, err := s.docs.Update(id, fields)
	if err != nil {
		s.respondStoreError(w, r, id, err)
		return
	}
	web.RespondJSON(w, s.logger, http.StatusOK, map[string]any{"success": true, "data": updated, "message": MsgUpdated})
}

func (s *Server) deleteByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.docs.DeleteByID(id); err != nil {
		s.respondStoreError(w, r, id, err)
		return
	}
	web.RespondJSON(w, s.logger, http.StatusOK, map[string]any{"success": true, "message": MsgDeleted})
}

func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, producterrors.ErrProductNotFound) {
		s.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, s.logger, http.StatusNotFound, MsgNotFound)
		return
	}
	s.logger.ErrorContext(r.Context(), "Store error", "ID", id, "error", err)
	web.RespondError(w, s.logger, http.StatusInternalServerError, MsgServerError)
}

// truthy mirrors the backend's presence check: empty strings, zero and null are missing.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}

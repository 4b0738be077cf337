package devgateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/araute/storefront-admin/internal/auth"
	"github.com/araute/storefront-admin/internal/gateway"
)

// Records is the store surface the REST layer needs; *Store implements it.
type Records interface {
	List(ctx context.Context, entity string, filter map[string]string, limit int, token string) ([]json.RawMessage, string, error)
	Get(ctx context.Context, entity, id string) (json.RawMessage, error)
	Update(ctx context.Context, entity, id string, patch map[string]any) (json.RawMessage, error)
	Create(ctx context.Context, entity, id string, data map[string]any) (json.RawMessage, error)
}

// entitySpec whitelists what the contract allows per entity.
type entitySpec struct {
	filters    map[string]bool // filterable fields
	updates    map[string]bool // patchable fields
	privileged bool            // mutations require a staff token
}

var entities = map[string]entitySpec{
	gateway.EntityOrders: {
		filters:    map[string]bool{"status": true, "owner": true},
		updates:    map[string]bool{"status": true, "trackingNumber": true},
		privileged: true,
	},
	gateway.EntityOrderItems: {
		filters: map[string]bool{"orderID": true, "productID": true, "owner": true},
		updates: map[string]bool{},
	},
	gateway.EntityProducts: {
		filters: map[string]bool{"category": true, "available": true},
		updates: map[string]bool{},
	},
	gateway.EntityStoreProducts: {
		filters:    map[string]bool{"storeID": true, "productID": true},
		updates:    map[string]bool{"quantity": true, "productID": true, "priceOverride": true, "isAvailable": true},
		privileged: true,
	},
}

type Server struct {
	Store  Records
	Events ChangePublisher
	Staff  *auth.Verifier
	APIKey string
	Log    *zap.Logger
}

func (s *Server) Register(r *chi.Mux) {
	r.Route("/v1/{entity}", func(r chi.Router) {
		r.Use(s.requireEntity)
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}", s.get)
		r.Patch("/{id}", s.update)
	})
}

func (s *Server) requireEntity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := entities[chi.URLParam(r, "entity")]; !ok {
			writeError(w, http.StatusNotFound, "unknown entity")
			return
		}
		if !s.readAuthorized(r) {
			writeError(w, http.StatusUnauthorized, "api key or staff token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// readAuthorized accepts the shared API key or any valid staff token.
func (s *Server) readAuthorized(r *http.Request) bool {
	if r.Header.Get("X-Api-Key") == s.APIKey && s.APIKey != "" {
		return true
	}
	return s.staffSession(r) != nil
}

func (s *Server) staffSession(r *http.Request) *auth.Session {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil
	}
	sess, err := s.Staff.Parse(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return nil
	}
	return sess
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	spec := entities[entity]

	filter := map[string]string{}
	for key, vals := range r.URL.Query() {
		field, ok := strings.CutPrefix(key, "filter.")
		if !ok || len(vals) == 0 {
			continue
		}
		if !spec.filters[field] {
			writeError(w, http.StatusBadRequest, "field not filterable: "+field)
			return
		}
		filter[field] = vals[0]
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad limit")
			return
		}
		limit = n
	}

	items, next, err := s.Store.List(r.Context(), entity, filter, limit, r.URL.Query().Get("nextToken"))
	if err != nil {
		s.Log.Error("list records", zap.String("entity", entity), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextToken": next})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	data, err := s.Store.Get(r.Context(), entity, chi.URLParam(r, "id"))
	if err != nil {
		s.Log.Error("get record", zap.String("entity", entity), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get failed")
		return
	}
	if data == nil {
		// Absence is a normal response, not an error.
		writeJSON(w, http.StatusOK, map[string]any{"item": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": data})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	spec := entities[entity]

	if len(spec.updates) == 0 {
		writeError(w, http.StatusMethodNotAllowed, "entity is read-only")
		return
	}
	if spec.privileged && s.staffSession(r) == nil {
		writeError(w, http.StatusForbidden, "staff token required")
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	for field := range patch {
		if !spec.updates[field] {
			writeError(w, http.StatusBadRequest, "field not updatable: "+field)
			return
		}
	}

	id := chi.URLParam(r, "id")
	data, err := s.Store.Update(r.Context(), entity, id, patch)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		s.Log.Error("update record", zap.String("entity", entity), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}

	s.Events.RecordChanged(entity, id, "update")
	writeJSON(w, http.StatusOK, map[string]any{"item": data})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	if s.staffSession(r) == nil {
		writeError(w, http.StatusForbidden, "staff token required")
		return
	}

	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, _ := doc["id"].(string)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	data, err := s.Store.Create(r.Context(), entity, id, doc)
	if err != nil {
		s.Log.Error("create record", zap.String("entity", entity), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "create failed")
		return
	}

	s.Events.RecordChanged(entity, id, "create")
	writeJSON(w, http.StatusOK, map[string]any{"item": data})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

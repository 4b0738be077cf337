package httpx

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/araute/storefront-admin/internal/auth"
	"github.com/araute/storefront-admin/internal/orders"
)

// OrdersHandler exposes the reconciliation view over HTTP.
type OrdersHandler struct {
	View *orders.View
	Log  *zap.Logger
}

type ordersResponse struct {
	Phase  orders.Phase       `json:"phase"`
	Orders []orders.Order     `json:"orders"`
	Active *orders.Order      `json:"active,omitempty"`
	Items  []orders.OrderItem `json:"items,omitempty"`
}

type statusRequest struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Post("/{id}/review", h.review)
			r.Post("/{id}/status", h.status)
			r.Post("/dismiss", h.dismiss)
		})
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ordersResponse{
		Phase:  h.View.Phase(),
		Orders: h.View.Orders(),
		Active: h.View.Active(),
		Items:  h.View.Items(),
	})
}

func (h *OrdersHandler) review(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.View.Open(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, orders.ErrUnknownOrder):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case errors.Is(err, orders.ErrNotListing):
			writeError(w, http.StatusConflict, err.Error())
			return
		default:
			// Items failed to load; the review is open regardless, matching
			// the view's stale-data stance on read failures.
			h.Log.Warn("review item load failed", zap.String("order_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, ordersResponse{
		Phase:  h.View.Phase(),
		Orders: h.View.Orders(),
		Active: h.View.Active(),
		Items:  h.View.Items(),
	})
}

func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "missing status")
		return
	}

	id := chi.URLParam(r, "id")
	active := h.View.Active()
	if active == nil || active.ID != id {
		writeError(w, http.StatusConflict, "order is not under review")
		return
	}

	if err := h.View.Submit(r.Context(), req.Status); err != nil {
		if !orders.IsStaffAction(req.Status) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ordersResponse{Phase: h.View.Phase(), Orders: h.View.Orders()})
}

func (h *OrdersHandler) dismiss(w http.ResponseWriter, r *http.Request) {
	h.View.Dismiss()
	writeJSON(w, http.StatusOK, ordersResponse{Phase: h.View.Phase(), Orders: h.View.Orders()})
}

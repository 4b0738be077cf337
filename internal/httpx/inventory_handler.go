package httpx

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/araute/storefront-admin/internal/auth"
	"github.com/araute/storefront-admin/internal/inventory"
)

// InventoryHandler exposes the adjustment view over HTTP.
type InventoryHandler struct {
	View *inventory.View
	Log  *zap.Logger
}

type inventoryResponse struct {
	Rows    []inventory.Detail `json:"rows"`
	Message *inventory.Message `json:"message,omitempty"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *InventoryHandler) Register(r *chi.Mux) {
	r.Route("/store-products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/reload", h.reload)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Post("/{id}/edit", h.edit)
			r.Put("/{id}/quantity", h.quantity)
			r.Post("/{id}/save", h.save)
			r.Post("/{id}/cancel", h.cancel)
		})
	})
}

func (h *InventoryHandler) respond(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, inventoryResponse{
		Rows:    h.View.Rows(),
		Message: h.View.TakeMessage(),
	})
}

func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	h.respond(w)
}

func (h *InventoryHandler) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.View.Load(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.respond(w)
}

func (h *InventoryHandler) edit(w http.ResponseWriter, r *http.Request) {
	if !h.rowAction(w, h.View.Edit(chi.URLParam(r, "id"))) {
		return
	}
	h.respond(w)
}

func (h *InventoryHandler) quantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !h.rowAction(w, h.View.SetQuantity(chi.URLParam(r, "id"), req.Quantity)) {
		return
	}
	h.respond(w)
}

func (h *InventoryHandler) save(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.View.Save(r.Context(), id); err != nil {
		if errors.Is(err, inventory.ErrUnknownRow) || errors.Is(err, inventory.ErrRowState) {
			h.rowAction(w, err)
			return
		}
		// Gateway failure: the row stayed editable and the view carries the
		// failure message; report the state as-is.
		h.Log.Warn("save failed", zap.String("store_product_id", id), zap.Error(err))
	}
	h.respond(w)
}

func (h *InventoryHandler) cancel(w http.ResponseWriter, r *http.Request) {
	if !h.rowAction(w, h.View.Cancel(chi.URLParam(r, "id"))) {
		return
	}
	h.respond(w)
}

// rowAction maps row-level errors onto status codes; returns false when a
// response was already written.
func (h *InventoryHandler) rowAction(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, inventory.ErrUnknownRow):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrRowState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
	return false
}

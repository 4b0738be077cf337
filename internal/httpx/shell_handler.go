package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/araute/storefront-admin/internal/auth"
	"github.com/araute/storefront-admin/internal/catalog"
	"github.com/araute/storefront-admin/internal/gateway"
)

// ShellHandler covers the navigation shell: the home and pending
// placeholders and the sign-out action.
type ShellHandler struct {
	Client   *gateway.Client
	PageSize int
	Log      *zap.Logger
}

type homeResponse struct {
	LoginID  string   `json:"loginId,omitempty"`
	Products []string `json:"products"`
}

func (h *ShellHandler) Register(r *chi.Mux) {
	r.Get("/", h.home)
	r.Get("/pending", h.pending)
	r.Post("/signout", h.signOut)
}

func (h *ShellHandler) home(w http.ResponseWriter, r *http.Request) {
	resp := homeResponse{Products: []string{}}
	if s, ok := auth.FromContext(r.Context()); ok {
		resp.LoginID = s.LoginID
	}

	products, err := gateway.ListAll[catalog.Product](r.Context(), h.Client, gateway.EntityProducts, nil, h.PageSize)
	if err != nil {
		// Placeholder page: show what we have.
		h.Log.Warn("home product list", zap.Error(err))
	}
	for _, p := range products {
		resp.Products = append(resp.Products, p.Name)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ShellHandler) pending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
}

func (h *ShellHandler) signOut(w http.ResponseWriter, r *http.Request) {
	auth.SignOut(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

package http

import (
	"encoding/json"
	"net/http"

	"directory-sync-service/internal/service"
)

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	// Агрегат пересобирается из снапшота на каждый запрос.
	schema, users := h.Sess.Users()
	products := service.AggregateProducts(schema, users)
	filtered := service.FilterProducts(products, r.URL.Query().Get("search"))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(productsResponse{
		Count:    len(filtered),
		Products: filtered,
	})
}

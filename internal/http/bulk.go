package http

import (
	"encoding/json"
	"net/http"

	"directory-sync-service/internal/service"
)

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	const handlerName = "bulk"

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, handlerName, service.ErrBadRequest("invalid JSON"))
		return
	}
	if err := ValidateBulkRequest(req); err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	result, err := h.Bulk.Execute(r.Context(), service.BulkAction(req.Action), req.GroupName)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	// Отказы отдельных элементов не делают ответ ошибочным:
	// клиент разбирает поэлементный учёт сам.
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

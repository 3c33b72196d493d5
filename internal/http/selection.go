package http

import (
	"encoding/json"
	"net/http"

	"directory-sync-service/internal/service"
)

func (h *Handler) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	const handlerName = "set_selection"

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, handlerName, service.ErrBadRequest("invalid JSON"))
		return
	}
	if err := ValidateSelectionRequest(req); err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	if missing := h.Sess.SetSelection(req.AccountIDs); len(missing) > 0 {
		resp := missingSelectionResponse{Missing: missing}
		resp.Error.Code = "UNKNOWN_ACCOUNTS"
		resp.Error.Message = "some account ids are not in the current snapshot"

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	users := h.Sess.Selection()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(selectionResponse{Count: len(users), Users: users})
}

func (h *Handler) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	users := h.Sess.Selection()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(selectionResponse{Count: len(users), Users: users})
}

func (h *Handler) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	h.Sess.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

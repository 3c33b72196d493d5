package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"directory-sync-service/internal/service"
)

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	filtered := service.FilterGroups(h.Sess.Groups(), r.URL.Query().Get("search"))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(groupsResponse{
		Count:  len(filtered),
		Groups: filtered,
	})
}

func (h *Handler) handleGroupMembers(w http.ResponseWriter, r *http.Request) {
	const handlerName = "group_members"

	name := chi.URLParam(r, "name")
	members, err := h.Dir.GroupMembers(r.Context(), name)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(groupMembersResponse{
		Group:   name,
		Count:   len(members),
		Members: members,
	})
}

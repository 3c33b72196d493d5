package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"directory-sync-service/internal/service"
)

func (h *Handler) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	const handlerName = "auth_validate"

	who, err := h.Dir.ValidateToken(r.Context())
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(validateTokenResponse{User: who})
}

func (h *Handler) handleResolveOrg(w http.ResponseWriter, r *http.Request) {
	const handlerName = "org_resolve"

	id, name, err := h.Dir.ResolveOrg(r.Context())
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resolveOrgResponse{OrgID: id, OrgName: name})
}

func (h *Handler) handleFetchUsers(w http.ResponseWriter, r *http.Request) {
	const handlerName = "fetch_users"

	result, err := h.Dir.FetchUsers(r.Context())
	if err != nil {
		h.writeFetchError(w, handlerName, result, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleFetchGroups(w http.ResponseWriter, r *http.Request) {
	const handlerName = "fetch_groups"

	result, err := h.Dir.FetchGroups(r.Context())
	if err != nil {
		h.writeFetchError(w, handlerName, result, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// writeFetchError дополняет тело ошибки счётчиками частичного результата:
// уже полученные страницы остаются в снапшоте, и клиенту нужно знать, сколько.
func (h *Handler) writeFetchError(w http.ResponseWriter, handlerName string, result service.FetchResult, err error) {
	appErr, ok := err.(*service.AppError)
	if !ok {
		h.writeError(w, handlerName, err)
		return
	}

	h.Log.Error("handler error",
		slog.String("handler", handlerName),
		slog.String("code", appErr.Code),
		slog.String("message", appErr.Message),
		slog.Any("err", appErr.Err),
	)

	resp := fetchFailureResponse{Result: result}
	resp.Error.Code = appErr.Code
	resp.Error.Message = appErr.Message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	const handlerName = "list_users"

	spec, err := ParseFilterSpec(r.URL.Query())
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	schema, users := h.Sess.Users()
	filtered := service.FilterUsers(schema, users, spec)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(usersResponse{
		Schema: schema,
		Count:  len(filtered),
		Users:  filtered,
	})
}

func (h *Handler) handleUserProducts(w http.ResponseWriter, r *http.Request) {
	const handlerName = "user_products"

	accountID := chi.URLParam(r, "accountID")
	products, err := h.Dir.UserProducts(accountID)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(userProductsResponse{
		AccountID: accountID,
		Products:  products,
	})
}

package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"directory-sync-service/internal/export"
	"directory-sync-service/internal/model"
	"directory-sync-service/internal/service"
	"directory-sync-service/internal/session"
)

func writeCSVHeaders(w http.ResponseWriter, kind string) {
	name := export.Filename(kind, time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

// Выгружается текущее представление, а не весь снапшот: эндпоинты принимают
// те же query-параметры фильтра, что и списки.
func (h *Handler) handleExportUsers(w http.ResponseWriter, r *http.Request) {
	const handlerName = "export_users"

	spec, err := ParseFilterSpec(r.URL.Query())
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	schema, users := h.Sess.Users()
	filtered := service.FilterUsers(schema, users, spec)

	writeCSVHeaders(w, "users")
	if err := export.WriteUsers(w, schema, filtered); err != nil {
		h.Log.Error("csv write failed", slog.String("handler", handlerName), slog.Any("err", err))
	}
}

func (h *Handler) handleExportGroups(w http.ResponseWriter, r *http.Request) {
	const handlerName = "export_groups"

	groups := service.FilterGroups(h.Sess.Groups(), r.URL.Query().Get("search"))

	writeCSVHeaders(w, "groups")
	err := export.WriteGroups(w, groups, func(name string) ([]model.User, bool) {
		state, members := h.Sess.GroupMembersState(name)
		return members, state == session.StateLoaded
	})
	if err != nil {
		h.Log.Error("csv write failed", slog.String("handler", handlerName), slog.Any("err", err))
	}
}

func (h *Handler) handleExportProducts(w http.ResponseWriter, r *http.Request) {
	const handlerName = "export_products"

	schema, users := h.Sess.Users()
	products := service.FilterProducts(
		service.AggregateProducts(schema, users),
		r.URL.Query().Get("search"),
	)

	writeCSVHeaders(w, "products")
	if err := export.WriteProducts(w, products); err != nil {
		h.Log.Error("csv write failed", slog.String("handler", handlerName), slog.Any("err", err))
	}
}

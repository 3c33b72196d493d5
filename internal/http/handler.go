package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"directory-sync-service/internal/service"
	"directory-sync-service/internal/session"
)

type Handler struct {
	Dir     *service.DirectoryService
	Bulk    *service.BulkService
	Sess    *session.Session
	Origins []string
	Log     *slog.Logger
}

func NewHandler(dir *service.DirectoryService, bulk *service.BulkService, sess *session.Session, origins []string, log *slog.Logger) *Handler {
	return &Handler{
		Dir:     dir,
		Bulk:    bulk,
		Sess:    sess,
		Origins: origins,
		Log:     log,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if len(h.Origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.Origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Get("/health", h.handleHealth)

	r.Post("/auth/validate", h.handleValidateToken)
	r.Post("/org/resolve", h.handleResolveOrg)

	r.Route("/fetch", func(r chi.Router) {
		r.Post("/users", h.handleFetchUsers)
		r.Post("/groups", h.handleFetchGroups)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.handleListUsers)
		r.Get("/{accountID}/products", h.handleUserProducts)
	})

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.handleListGroups)
		r.Get("/{name}/members", h.handleGroupMembers)
	})

	r.Get("/products", h.handleListProducts)

	r.Route("/selection", func(r chi.Router) {
		r.Put("/", h.handleSetSelection)
		r.Get("/", h.handleGetSelection)
		r.Delete("/", h.handleClearSelection)
	})

	r.Post("/bulk", h.handleBulk)

	r.Route("/export", func(r chi.Router) {
		r.Get("/users.csv", h.handleExportUsers)
		r.Get("/groups.csv", h.handleExportGroups)
		r.Get("/products.csv", h.handleExportProducts)
	})

	r.Delete("/data", h.handleClearData)

	return r
}

func (h *Handler) writeError(w http.ResponseWriter, handlerName string, err error) {
	appErr, ok := err.(*service.AppError)
	if !ok {
		appErr = &service.AppError{
			Code:    "INTERNAL",
			Message: "internal error",
			Status:  http.StatusInternalServerError,
			Err:     err,
		}
	}

	h.Log.Error("handler error",
		slog.String("handler", handlerName),
		slog.String("code", appErr.Code),
		slog.String("message", appErr.Message),
		slog.Any("err", appErr.Err),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)

	resp := errorResponse{}
	resp.Error.Code = appErr.Code
	resp.Error.Message = appErr.Message
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) handleClearData(w http.ResponseWriter, r *http.Request) {
	h.Sess.Clear()
	h.Log.Info("session cleared")
	w.WriteHeader(http.StatusNoContent)
}

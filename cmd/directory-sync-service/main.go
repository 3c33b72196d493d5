// Package main запускает HTTP-сервис синхронизации каталога Jira
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"directory-sync-service/internal/atlassian"
	"directory-sync-service/internal/config"
	httpapi "directory-sync-service/internal/http"
	"directory-sync-service/internal/model"
	"directory-sync-service/internal/service"
	"directory-sync-service/internal/session"
)

func main() {
	// Контекст для корректного завершения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Чтение конфигурации из ENV
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Инициализация логгера (JSON)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	// 1. Адаптеры внешних API
	std := atlassian.NewStandardClient(cfg.JiraBaseURL, cfg.JiraEmail, cfg.JiraAPIToken, logger)

	var (
		userSrc   service.UserSource = std
		schema                       = model.SchemaStandard
		resolver  service.OrgResolver
		lifecycle service.LifecycleAPI
	)
	if cfg.OrgAPIKey != "" {
		org := atlassian.NewOrgClient(cfg.OrgBaseURL, cfg.OrgAPIKey, cfg.OrgID, logger)
		resolver = org
		lifecycle = org
		if cfg.UseOrgAPI {
			userSrc = org
			schema = model.SchemaOrg
		}
	}

	// 2. Сессия и сервисы
	sess := session.New()
	dirService := service.NewDirectoryService(sess, userSrc, schema, std, std, resolver, logger)
	bulkService := service.NewBulkService(sess, lifecycle, std, 0, logger)

	// 3. Инициализация HTTP-обработчика
	handler := httpapi.NewHandler(dirService, bulkService, sess, cfg.CORSAllowedOrigins, logger)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.Router(),
	}

	// Запуск сервера в горутине
	go func() {
		logger.Info("starting http server",
			slog.String("addr", server.Addr),
			slog.String("schema", string(schema)),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("err", err))
			cancel()
		}
	}()

	// Graceful Shutdown: сигнал ОС или фатальная ошибка сервера
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server shutdown error", slog.Any("err", err))
	}

	logger.Info("server stopped")
}

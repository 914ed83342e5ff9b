package router

import (
	"github.com/Totarae/MCPBuilder/internal/handlers"
	"github.com/Totarae/MCPBuilder/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие

	r.Get("/", handler.ShowForm)
	r.Post("/", handler.SubmitForm)
	r.Post("/api/generate", handler.Generate)
	r.Get("/health", handler.Health)
	r.Get("/ping", handler.Ping)
	return r
}

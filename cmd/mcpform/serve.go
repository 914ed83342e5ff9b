package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Totarae/MCPBuilder/internal/auth"
	"github.com/Totarae/MCPBuilder/internal/config"
	"github.com/Totarae/MCPBuilder/internal/handlers"
	"github.com/Totarae/MCPBuilder/internal/router"
	"github.com/Totarae/MCPBuilder/internal/session"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if !cfg.HasGenerator() {
		return errNoGenerator
	}
	logger.Info("Инициализация конфигурации", cfg.LogFields()...)

	secret := cfg.SessionSecret
	if secret == "" {
		// куки перестанут проходить проверку после перезапуска, сессии всё равно в памяти
		secret = uuid.NewString()
		logger.Warn("SESSION_SECRET is not set, using a random one")
	}

	// кука живёт не дольше сессии в памяти
	authService := auth.New(secret)
	authService.MaxAge = int(cfg.SessionIdle.Seconds())

	sessions := session.NewStore()
	handler := handlers.NewHandler(cfg, sessions, authService, logger)
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router.NewRouter(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweepSessions(ctx, sessions, cfg.SessionIdle, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("address", cfg.ServerAddress))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepSessions периодически удаляет неактивные сессии.
func sweepSessions(ctx context.Context, sessions *session.Store, idle time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(idle); n > 0 {
				logger.Debug("idle sessions removed", zap.Int("count", n), zap.Int("alive", sessions.Len()))
			}
		}
	}
}

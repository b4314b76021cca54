// Command dixis serves the Dixis marketplace admin API and storefront
// catalog endpoints.
//
// main only wires layers together: config, database, repositories, the
// websocket hub, services, handlers and routes. There is no global state.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/dixis/dixis/config"
	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/middleware"
	"github.com/dixis/dixis/pkg/logger"
	"github.com/dixis/dixis/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger depends on config, so this one goes to stderr.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log = log.Named("main")
	log.Info("dixis server starting", zap.Int("port", cfg.Server.Port))

	db, err := database.New(cfg.Database.Path, database.Migrations(), log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return err
	}

	repos := initRepositories(db.Conn)

	hub := ws.NewHub(log)

	svcs, err := initServices(db.Conn, repos, hub, cfg, log)
	if err != nil {
		return err
	}
	defer svcs.Close()

	limiters := initRateLimiters()
	defer limiters.Close()

	registerHubCallbacks(hub, svcs.Dashboard)
	go hub.Run()

	svcs.Expiry.Start()

	h := initHandlers(svcs, limiters, hub, cfg)

	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth, repos.User, cfg.Upload.Dir)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      middleware.RequestLogger(log)(corsHandler.Handler(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		hub.Shutdown()
		return err
	}
	log.Info("shutting down")

	// Close live connections first so clients see the server going away,
	// then drain in-flight requests.
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

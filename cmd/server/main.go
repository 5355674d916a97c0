package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/planbay/planbay/internal/api"
	"github.com/planbay/planbay/internal/auth"
	"github.com/planbay/planbay/internal/config"
	"github.com/planbay/planbay/internal/db"
	"github.com/planbay/planbay/internal/editor"
	"github.com/planbay/planbay/internal/live"
	mw "github.com/planbay/planbay/internal/middleware"
	"github.com/planbay/planbay/internal/persist"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open snapshot store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	authService := auth.NewService(cfg.JWTSecret, cfg.AccessHash)
	authHandler := auth.NewHandler(authService)

	service := api.NewService(store, cfg.RetentionWindow(), editor.Options{
		MaxHistory:        cfg.MaxHistory,
		EntryZoneFraction: cfg.EntryZoneFraction,
		DebounceWindow:    cfg.DebounceWindow(),
	})
	apiHandler := api.NewHandler(service)

	manager := live.NewManager(service)
	go manager.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.NewCORS(cfg.Origins()))

	// Access gate (public)
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(authService.AuthMiddleware)

	protected.HandleFunc("/templates", apiHandler.Templates).Methods("GET")
	protected.HandleFunc("/layouts", apiHandler.List).Methods("GET")
	protected.HandleFunc("/layouts", apiHandler.Create).Methods("POST")
	protected.HandleFunc("/layouts/{layoutId}", apiHandler.Get).Methods("GET")
	protected.HandleFunc("/layouts/{layoutId}", apiHandler.Delete).Methods("DELETE")
	protected.HandleFunc("/layouts/{layoutId}/save", apiHandler.Save).Methods("POST")
	protected.HandleFunc("/layouts/{layoutId}/ops", apiHandler.ApplyOp).Methods("POST")
	protected.HandleFunc("/layouts/{layoutId}/violations", apiHandler.Violations).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/layout/{layoutId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, manager, authService, cfg.Origins())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore picks Postgres when DATABASE_URL is set and falls back to the
// local SQLite file otherwise.
func openStore(ctx context.Context, cfg *config.Config) (persist.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := persist.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("snapshot store", "backend", "postgres")
		return store, pool.Close, nil
	}

	store, err := persist.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("snapshot store", "backend", "sqlite", "path", cfg.SQLitePath)
	return store, func() { store.Close() }, nil
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, manager *live.Manager, authSvc *auth.Service, origins []string) {
	layoutID := mux.Vars(r)["layoutId"]

	if !authSvc.Open() {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if err := authSvc.ValidateToken(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(origins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := live.NewClient(manager, conn, layoutID, clientID)

	manager.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// originPatterns strips schemes so the allow list matches what the
// websocket library compares against.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		for _, prefix := range []string{"https://", "http://"} {
			if len(o) > len(prefix) && o[:len(prefix)] == prefix {
				o = o[len(prefix):]
				break
			}
		}
		out = append(out, o)
	}
	return out
}

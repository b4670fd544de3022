package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/flexpath/flexpath/internal/auth"
	"github.com/flexpath/flexpath/internal/config"
	"github.com/flexpath/flexpath/internal/db"
	"github.com/flexpath/flexpath/internal/document"
	"github.com/flexpath/flexpath/internal/export"
	"github.com/flexpath/flexpath/internal/live"
	mw "github.com/flexpath/flexpath/internal/middleware"
	"github.com/flexpath/flexpath/internal/pathdoc"
	"github.com/flexpath/flexpath/internal/static"
	"github.com/flexpath/flexpath/internal/typeid"
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

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	queries := db.New(pool)

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	docService := pathdoc.NewService(queries)
	docHandler := pathdoc.NewHandler(docService)

	hub := live.NewHub()
	go hub.Run()

	exportHandler := export.NewHandler()
	staticHandler := static.NewHandler(cfg.StaticDir)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS)

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Export endpoint (public, used by the playground and authenticated users)
	r.HandleFunc("/export/svg", exportHandler.ExportSVG).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/documents", docHandler.List).Methods("GET")
	api.HandleFunc("/documents", docHandler.Create).Methods("POST")
	api.HandleFunc("/documents/{documentId}", docHandler.Get).Methods("GET")
	api.HandleFunc("/documents/{documentId}", docHandler.Delete).Methods("DELETE")
	api.HandleFunc("/documents/{documentId}/snapshots", docHandler.SaveSnapshot).Methods("PUT")
	api.HandleFunc("/documents/{documentId}/snapshots/latest", docHandler.GetLatestSnapshot).Methods("GET")

	// WebSocket preview endpoint (anonymous access allowed)
	wsOrigins := originPatterns(cfg.AllowedOrigins)
	r.HandleFunc("/ws/preview", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, docService, wsOrigins)
	})

	// Demo frontend
	r.PathPrefix("/").Handler(staticHandler.Serve()).Methods("GET")

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

		// Stop the hub first so open preview sessions tear down cleanly
		hub.Stop()

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

// originPatterns turns the configured origin list into websocket host
// patterns ("http://localhost:5173,..." -> ["localhost:5173", ...]).
func originPatterns(origins string) []string {
	var patterns []string
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *live.Hub, docs *pathdoc.Service, origins []string) {
	docID := r.URL.Query().Get("documentId")

	// Previews run against the latest stored snapshot, or the built-in
	// sample when no document is named.
	var doc *document.PathDocument
	if docID != "" {
		loaded, err := docs.LoadSnapshot(r.Context(), docID)
		if err != nil {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		doc = loaded
	} else {
		doc = document.NewSampleDocument(typeid.NewDocumentID())
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	session := live.NewSession(hub, conn, clientID, docID, doc)

	hub.Register(session)

	ctx := r.Context()
	go session.WritePump(ctx)
	go session.Run()
	session.ReadPump(ctx)
}

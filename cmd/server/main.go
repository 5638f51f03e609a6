package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/term"

	"coffeeslides/internal/config"
	"coffeeslides/internal/handlers/dataset"
	slidehandlers "coffeeslides/internal/handlers/slides"
	apphttp "coffeeslides/internal/http"
	"coffeeslides/internal/logger"
	"coffeeslides/internal/services/dataloader"
	"coffeeslides/internal/services/metrics"
	"coffeeslides/internal/services/storage"
	"coffeeslides/internal/templates"
	"coffeeslides/internal/version"
)

var (
	cfg      *config.Config
	store    *storage.Storage
	loader   *dataloader.DataLoader
	renderer *templates.Renderer
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	l, err := logger.New(c.LogLevel, c.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	restore := logger.Install(l)
	defer restore()
	defer l.Sync()

	info := version.Get()
	l.Info("Starting Coffee Slides", append(info.Fields(),
		zap.String("addr", c.ListenAddr),
		zap.String("data_dir", c.DataDirectory),
		zap.String("uploads_dir", c.UploadsDirectory))...)
	if warning := info.Check(); warning != "" {
		l.Warn(warning)
	}

	store, err = storage.New(c.DataDirectory)
	if err != nil {
		l.Fatal("Failed to open data directory", zap.Error(err))
	}
	if err := unlock(store, c.Passphrase); err != nil {
		l.Fatal("Failed to unlock data directory", zap.Error(err))
	}

	if err := SetupDependencies(c); err != nil {
		l.Fatal("Failed to set up dependencies", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              c.ListenAddr,
		Handler:           SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Shutdown failed", zap.Error(err))
		}
	}()

	l.Info("Server starting", zap.String("addr", c.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Fatal("Server failed", zap.Error(err))
	}
	l.Info("Server stopped")
}

// unlock opens an encrypted data directory with the configured passphrase,
// or prompts for one when running in a terminal
func unlock(s *storage.Storage, passphrase string) error {
	if !s.IsEncrypted() {
		return nil
	}
	if passphrase == "" {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return errors.New("data directory is encrypted: set SLIDES_PASSPHRASE")
		}
		fmt.Fprint(os.Stderr, "Passphrase: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read passphrase: %w", err)
		}
		passphrase = string(b)
	}
	return s.Unlock(passphrase)
}

// SetupDependencies wires services and handlers for c. A dataset that
// fails to load is logged and leaves the slideshow unavailable; it is not
// an error here.
func SetupDependencies(c *config.Config) error {
	cfg = c

	if store == nil {
		var err error
		store, err = storage.New(cfg.DataDirectory)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
	}

	loader = dataloader.New(cfg.UploadsDirectory, store)

	var err error
	renderer, err = templates.New(cfg.TemplatesDirectory, cfg.Debug)
	if err != nil {
		zap.L().Warn("Could not load templates", zap.Error(err))
		renderer = nil
	}

	slidehandlers.Initialize(loader, renderer, cfg, metrics.New())
	dataset.Initialize(loader, renderer, cfg, store, slidehandlers.Reload)

	if err := slidehandlers.Reload(); err != nil {
		zap.L().Warn("Slideshow unavailable until data is fixed", zap.Error(err))
	}
	return nil
}

// SetupRouter builds the chi router with middleware and all routes
func SetupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(apphttp.RequestLogger(zap.L().Named("http")))
	r.Use(middleware.Compress(5))

	fileServer := http.FileServer(http.Dir(cfg.StaticDirectory))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/slides", http.StatusTemporaryRedirect)
	})

	slidehandlers.RegisterRoutes(r)
	dataset.RegisterRoutes(r)

	r.Get("/api/health", handleHealth)
	r.Get("/api/version", handleVersion)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":    "ok",
		"data":      "ready",
		"encrypted": store.IsEncrypted(),
		"unlocked":  store.IsUnlocked(),
	}
	if st, err := slidehandlers.Status(); err != nil {
		resp["data"] = "unavailable"
	} else {
		resp["slide"] = st
	}
	apphttp.JSONResponse(w, resp, http.StatusOK)
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	apphttp.JSONResponse(w, version.Get(), http.StatusOK)
}

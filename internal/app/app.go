package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"homeshare/internal/config"
	"homeshare/internal/event"
	"homeshare/internal/handler"
	"homeshare/internal/model"
	"homeshare/internal/router"
	"homeshare/internal/service"
	"homeshare/internal/storage"
	"homeshare/internal/upload"
	"homeshare/internal/ws"
)

// Version is stamped at build time.
var Version = "dev"

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := storage.New(cfg.ShareRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	bus := event.NewBus()
	hub := ws.NewHub(bus)
	go hub.Run()

	uploadManager, err := upload.NewManager(cfg.StateDir, store, cfg.AllowOverwrite, bus)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload manager: %w", err)
	}

	browseService := service.NewBrowseService(store, bus)
	fileService := service.NewFileService(store, filepath.Join(cfg.StateDir, "thumbnails"))

	info := model.ServerInfo{
		ShareRoot:      store.RootAbs(),
		ReadOnly:       cfg.ReadOnly,
		AllowOverwrite: cfg.AllowOverwrite,
		Version:        Version,
	}

	appRouter := router.New(cfg, router.Handlers{
		Browse:  handler.NewBrowseHandler(browseService, info),
		File:    handler.NewFileHandler(fileService),
		Upload:  handler.NewUploadHandler(uploadManager, cfg.MaxChunkSize),
		Archive: handler.NewArchiveHandler(store),
	}, hub)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go uploadManager.StartCleanupTicker(cleanupCtx, cfg.UploadExpiry)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	slog.Info("share configured",
		"share_root", store.RootAbs(),
		"read_only", cfg.ReadOnly,
		"allow_overwrite", cfg.AllowOverwrite,
	)

	return &App{
		server: server,
		cleanupFuncs: []func(){
			cleanupCancel,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// Package main is the entry point for the Chapterforge application.
// It initializes all components and runs the main program loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chapterforge/local-app/src/pkg/adapter"
	"chapterforge/local-app/src/pkg/cli"
	"chapterforge/local-app/src/pkg/config"
	"chapterforge/local-app/src/pkg/data"
	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/render"
	"chapterforge/local-app/src/pkg/session"
	"chapterforge/local-app/src/pkg/storage"
	"chapterforge/local-app/src/pkg/watcher"
)

// main initializes all components, sets up signal handling, and runs the
// main program loop.
func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	if err := config.ConfigLoad(); err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.ConfigGet()

	// Initialize logger
	logger, err := log.NewLogger(cfg, log.LevelInfo)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Printf("Failed to close logger: %v\n", err)
		}
	}()

	logger.Info(ctx, "Application started", log.Fields{"config": cfg})

	// Initialize storage
	store, err := storage.NewStorage(cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize storage", log.Fields{"error": err})
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(ctx, "Failed to close storage", log.Fields{"error": err})
		}
	}()

	logger.Info(ctx, "Storage initialized", nil)

	// Probe the blob tier once and pick the payload store for this run
	payloads := storage.SelectPayloadStore(ctx, store.BlobStore, logger)

	// Initialize data manager
	dataManager, err := data.NewDataManager(store.UserStore, store.OutlineStore, payloads, cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize data manager", log.Fields{"error": err})
		os.Exit(1)
	}

	logger.Info(ctx, "Data manager initialized", nil)

	// Initialize renderer boundary
	resolver := render.NewResolver(payloads, logger)
	exporter := render.NewHTMLExporter(resolver, logger)

	// Initialize attachment inbox watcher when enabled
	var inbox *watcher.InboxWatcher
	if cfg.WatchInbox {
		inbox, err = watcher.NewInboxWatcher(cfg.InboxDir, dataManager.EventManager, logger)
		if err != nil {
			logger.Error(ctx, "Failed to initialize inbox watcher", log.Fields{"error": err})
			os.Exit(1)
		}
		if err := inbox.Start(ctx); err != nil {
			logger.Error(ctx, "Failed to start inbox watcher", log.Fields{"error": err})
			os.Exit(1)
		}
		defer func() {
			if err := inbox.Stop(); err != nil {
				logger.Warn(ctx, "Failed to stop inbox watcher", log.Fields{"error": err})
			}
		}()
		logger.Info(ctx, "Inbox watcher started", log.Fields{"dir": cfg.InboxDir})
	}

	// Initialize session manager
	sessionManager := session.NewSessionManager(dataManager, resolver, exporter, inbox, logger)
	defer sessionManager.StopCleanupRoutine()

	logger.Info(ctx, "Session manager initialized", nil)

	// Initialize adapter manager
	adapterManager := adapter.NewAdapterManager(sessionManager, logger)
	defer adapterManager.Shutdown()

	// Initialize cli adapter
	cliAdapter, err := adapter.NewCLIAdapter(adapterManager, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize CLI adapter", log.Fields{"error": err})
		os.Exit(1)
	}

	logger.Info(ctx, "CLI adapter initialized", nil)

	// Create CLI
	cliInstance, err := cli.NewCLI(cliAdapter, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initiate CLI", log.Fields{"error": err})
		os.Exit(1)
	}

	// Graceful shutdown on interrupt
	go func() {
		<-sigChan
		logger.Info(ctx, "Received interrupt signal, shutting down", nil)
		fmt.Println("\nReceived interrupt signal. Shutting down...")
		cancel()
	}()

	// Run CLI
	if err := cliInstance.Run(ctx); err != nil && err != context.Canceled {
		logger.Error(ctx, "CLI error", log.Fields{"error": err})
	}

	logger.Info(ctx, "Application shutting down", nil)
	fmt.Println("Goodbye!")
}

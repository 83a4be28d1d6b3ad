package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"botdesk/internal/assistant"
	"botdesk/internal/config"
	"botdesk/internal/datasync"
	"botdesk/internal/domain/client"
	"botdesk/internal/domain/conversation"
	"botdesk/internal/domain/expense"
	"botdesk/internal/domain/project"
	"botdesk/internal/notify"
	"botdesk/internal/remote"
	"botdesk/internal/snapshot"
	"botdesk/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureSnapshotDir(cfg.Snapshot.Path); err != nil {
		logger.Error("failed to prepare snapshot path", "error", err)
		os.Exit(1)
	}
	snaps, err := snapshot.Open(cfg.Snapshot.Path)
	if err != nil {
		logger.Error("failed to open snapshot store", "error", err)
		os.Exit(1)
	}
	defer snaps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing or unreachable backend is not fatal; the dashboard keeps
	// working off the snapshot store in local-only mode.
	var store remote.Store
	if cfg.Remote.ProjectID != "" {
		fs, err := remote.NewFirestore(ctx, remote.FirestoreConfig{
			ProjectID:       cfg.Remote.ProjectID,
			CredentialsFile: cfg.Remote.CredentialsFile,
			Namespace:       cfg.Remote.Namespace,
		}, logger)
		if err != nil {
			logger.Warn("remote store unavailable, running local-only", "error", err)
		} else {
			store = fs
			defer fs.Close()
		}
	} else {
		logger.Warn("no remote project configured, running local-only")
	}

	syncer := datasync.New(datasync.Config{
		Remote:    store,
		Snapshots: snaps,
		Freshness: cfg.Sync.Freshness,
		Debounce:  cfg.Sync.Debounce,
		Logger:    logger,
	})
	defer syncer.Close()

	if store != nil {
		if err := syncer.Start(ctx); err != nil {
			logger.Warn("backend session failed, running local-only", "error", err)
		} else if cfg.Sync.Live {
			if err := syncer.SubscribeAll(ctx); err != nil {
				logger.Warn("live subscriptions unavailable", "error", err)
			}
		}
	}

	clientSvc := client.NewService(syncer.Clients, logger)
	projectSvc := project.NewService(syncer.Projects, clientSvc, logger)
	expenseSvc := expense.NewService(syncer.Expenses, logger)
	conversationSvc := conversation.NewService(snaps, logger)

	bot := assistant.New(cfg.Assistant.WebhookURL, logger,
		assistant.WithHTTPClient(&http.Client{Timeout: cfg.Assistant.Timeout}))

	gateway := notify.NewGateway(cfg.Notify.GatewayURL, nil)
	reminder := notify.NewReminder(projectSvc, gateway, logger)
	if cfg.Notify.GatewayURL != "" {
		go reminder.Run(ctx, cfg.Notify.CheckInterval)
	}

	api := transport.NewServer(transport.Options{
		Syncer:        syncer,
		Projects:      projectSvc,
		Clients:       clientSvc,
		Expenses:      expenseSvc,
		Conversations: conversationSvc,
		Assistant:     bot,
		Reminders:     reminder,
		Logger:        logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: api.Router(cfg.Server.CORSOrigins),
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer, cancel)
}

func ensureSnapshotDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func waitForShutdown(logger *slog.Logger, server *http.Server, cancel context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	cancel()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

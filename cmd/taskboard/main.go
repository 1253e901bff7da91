package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"taskboard/internal/directory"
	"taskboard/internal/model"
	"taskboard/internal/notify"
	"taskboard/internal/store"
	tasksync "taskboard/internal/sync"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	configPath := os.Getenv("TASKBOARD_CONFIG")
	if configPath == "" {
		configPath = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("loading config", zap.String("path", configPath), zap.Error(err))
	}
	if cfg.Actor.ID == "" {
		logger.Fatal("config is missing actor.id", zap.String("path", configPath))
	}

	st, err := store.NewSQLiteStore(cfg.Remote.DatabasePath)
	if err != nil {
		logger.Fatal("opening store", zap.String("path", cfg.Remote.DatabasePath), zap.Error(err))
	}
	defer st.Close()
	logger.Info("store opened", zap.String("path", cfg.Remote.DatabasePath))

	var dir directory.Directory = directory.Static{}
	if cfg.Directory.BaseURL != "" {
		dir = directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.Token)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mirror directory entries so the store has reference targets.
	if users, err := dir.ListUsers(ctx); err != nil {
		logger.Warn("listing directory users", zap.Error(err))
	} else {
		for _, u := range users {
			if err := st.UpsertUser(ctx, u); err != nil {
				logger.Warn("mirroring user", zap.String("user", u.ID), zap.Error(err))
			}
		}
	}

	// Subscribe before loading the snapshots so writes landing in
	// between are buffered and replayed through the idempotent merge
	// instead of being lost.
	taskSub := st.SubscribeTasks(cfg.Actor.ID)
	notifSub := st.SubscribeNotifications(cfg.Actor.ID)

	synchronizer := tasksync.New(logger)
	snapshot, err := st.TasksForActor(ctx, cfg.Actor.ID)
	if err != nil {
		logger.Fatal("loading task snapshot", zap.Error(err))
	}
	synchronizer.LoadSnapshot(snapshot)

	feed := notify.New(st, cfg.Actor.ID, cfg.Notifications.Cap, logger)
	if err := feed.Load(ctx); err != nil {
		logger.Fatal("loading notification snapshot", zap.Error(err))
	}

	go synchronizer.Run(ctx, taskSub)
	go feed.Run(ctx, notifSub)

	logger.Info("taskboard engine running",
		zap.String("actor", cfg.Actor.ID),
		zap.Int("tasks", synchronizer.Len()),
		zap.Int("unread", feed.Unread()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("shutting down")
	cancel()
}

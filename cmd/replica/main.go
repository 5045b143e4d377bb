package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Leeps-Lab/etf-cda/pkg/config"
	"github.com/Leeps-Lab/etf-cda/pkg/logger"
	"github.com/Leeps-Lab/etf-cda/pkg/redis"

	bookv1 "github.com/Leeps-Lab/etf-cda/internal/domain/book/v1"
	app "github.com/Leeps-Lab/etf-cda/internal/app/replica"
	"github.com/Leeps-Lab/etf-cda/internal/gateway"
	"github.com/Leeps-Lab/etf-cda/internal/usecase/book"
	"github.com/Leeps-Lab/etf-cda/internal/usecase/command"
	"github.com/Leeps-Lab/etf-cda/internal/usecase/feed"
	"github.com/Leeps-Lab/etf-cda/internal/usecase/ledger"
	"github.com/Leeps-Lab/etf-cda/internal/usecase/snapshot"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	var err error
	cfg = &config.Config{}
	err = config.Load(cfg)
	if err != nil {
		panic(err)
	}

	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	log = logger
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	redisConfig := redis.DefaultConfig()
	redisConfig.Addrs = []string{cfg.Redis.Addrs}
	redisConfig.Password = cfg.Redis.Password
	redisConfig.Username = cfg.Redis.Username
	redisConfig.DB = cfg.Redis.DB
	rclient := redis.NewClient(log, redisConfig)

	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	books := make(map[string]bookv1.Book, len(cfg.Assets))
	for _, assetName := range cfg.Assets {
		books[assetName] = book.NewBook(assetName, log)
	}
	ldg := ledger.NewLedger(cfg.Assets, cfg.StartingCash, cfg.StartingAssets)
	feedReader := feed.NewReader(cfg.Feed, log)
	snapshotStore := snapshot.NewStore(rclient, log)
	publisher := command.NewPublisher(cfg.Commands, log)

	replica, err := app.NewReplica(books, ldg, feedReader, snapshotStore, log, cfg)
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "new_replica",
		})
		return
	}

	server := gateway.NewServer(replica, publisher, cfg, log)

	if err := replica.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_replica",
		})
		return
	}

	go func() {
		if err := server.Start(cfg.Gateway.Addr); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "start_gateway",
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	log.Info("replica service started", logger.Field{
		Key:   "sessionID",
		Value: cfg.SessionID,
	}, logger.Field{
		Key:   "participantID",
		Value: cfg.ParticipantID,
	})

	sig := <-sigChan
	log.Info("received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := replica.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_replica",
		})
	}

	if err := publisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_publisher",
		})
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("replica service shutdown complete")
}

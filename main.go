package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codehasanali/rafine-web/internal/config"
	httpapi "github.com/codehasanali/rafine-web/internal/http"
	"github.com/codehasanali/rafine-web/internal/http/handlers"
	"github.com/codehasanali/rafine-web/internal/logger"
	"github.com/codehasanali/rafine-web/internal/ordersync"
	"github.com/codehasanali/rafine-web/internal/storage"
	"github.com/codehasanali/rafine-web/internal/upstream"
	"github.com/codehasanali/rafine-web/internal/ws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := upstream.NewClient(upstream.Options{
		BaseURL:  cfg.UpstreamBaseURL,
		Email:    cfg.UpstreamEmail,
		Password: cfg.UpstreamPassword,
		Timeout:  cfg.UpstreamRequestTimeout,
		Logger:   log,
	})
	if err := client.Authenticate(ctx); err != nil {
		if cfg.Env == "production" {
			log.Fatal("upstream sign-in failed", zap.Error(err))
		}
		log.Warn("upstream sign-in failed; retrying per request", zap.Error(err))
	}

	engine := ordersync.NewEngine(client, log)
	if err := engine.LoadSnapshot(ctx); err != nil {
		log.Warn("initial order snapshot failed", zap.Error(err))
	} else {
		log.Info("order snapshot loaded", zap.Int("orders", engine.Len()))
	}

	var store *storage.ObjectStore
	if cfg.ObjectStoreBucket != "" {
		store, err = storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
		})
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("object store init failed", zap.Error(err))
			}
			log.Warn("object store init failed; uploads disabled", zap.Error(err))
			store = nil
		}
	} else {
		log.Info("uploads disabled (OBJECT_STORE_BUCKET is empty)")
	}

	wsServer := ws.New(engine, log, cfg)

	subscriber := &upstream.Subscriber{
		URL:               cfg.UpstreamSocketURL,
		ReconnectAttempts: cfg.SocketReconnectAttempts,
		ReconnectDelay:    cfg.SocketReconnectDelay,
		HandshakeTimeout:  cfg.SocketHandshakeTimeout,
		HeartbeatInterval: cfg.WSHeartbeatInterval,
		Logger:            log,
		OnConnect: func() {
			// Every (re)connect starts from a fresh snapshot so events missed
			// while disconnected cannot leave the view stale.
			if err := engine.LoadSnapshot(ctx); err != nil {
				log.Warn("snapshot reload failed", zap.Error(err))
			}
		},
		OnEvent: func(event upstream.Event) {
			go func() {
				if err := engine.HandleEvent(ctx, event); err != nil {
					log.Warn("order event dropped",
						zap.String("kind", string(event.Kind)),
						zap.String("orderId", event.OrderID),
						zap.Error(err))
				}
			}()
		},
	}
	go func() {
		if err := subscriber.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("order notifications stopped; use manual refresh", zap.Error(err))
		}
	}()

	h := &handlers.Handler{
		Upstream: client,
		Sync:     engine,
		Store:    store,
		Logger:   log,
		Config:   cfg,
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(h, log, cfg, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("dashboard api ready", zap.String("base", "/api"))
		log.Info("dashboard ws ready", zap.String("base", "/ws"))
		log.Info("dashboard listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// Stop the upstream subscriber before draining the HTTP server.
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

// Package main provides the rendezvous server binary: a WebSocket
// presence and signaling service with a static file frontend.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rendezvous/internal/config"
	"github.com/cory-johannsen/rendezvous/internal/frontend/ws"
	"github.com/cory-johannsen/rendezvous/internal/observability"
	"github.com/cory-johannsen/rendezvous/internal/presence"
	"github.com/cory-johannsen/rendezvous/internal/server"
	"github.com/cory-johannsen/rendezvous/internal/signal"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	registry := presence.NewRegistry()
	acceptor := ws.NewAcceptor(cfg.Server, cfg.WebSocket, logger)
	service := signal.NewService(registry, acceptor, signal.UUIDAllocator{}, logger, cfg.Logging.ClientEcho)
	acceptor.SetHandler(service)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("websocket", acceptor)

	logger.Info("rendezvous server initialized",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("static_dir", cfg.Server.StaticDir),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

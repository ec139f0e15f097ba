package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/titanic-chat/backend/internal/analysis/chart"
	"github.com/zhouzirui/titanic-chat/backend/internal/config"
	"github.com/zhouzirui/titanic-chat/backend/internal/dataset"
	"github.com/zhouzirui/titanic-chat/backend/internal/handler"
	"github.com/zhouzirui/titanic-chat/backend/internal/service/chat"
	"github.com/zhouzirui/titanic-chat/backend/internal/service/router"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// The manifest is loaded once; every session shares the same read-only table.
	table, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		logger.Fatal("failed to load passenger data", zap.String("path", cfg.Dataset.Path), zap.Error(err))
	}
	logger.Info("passenger data loaded", zap.String("path", cfg.Dataset.Path), zap.Int("passengers", table.Len()))

	renderer := chart.NewRenderer(cfg.Chart.Width, cfg.Chart.Height)
	answerer := router.New(table, renderer, logger.Named("router"))
	chatService := chat.NewService(answerer, logger.Named("chat"))

	r := handler.NewRouter(handler.Deps{
		Table:   table,
		Rules:   answerer,
		ChatSvc: chatService,
		Logger:  logger.Named("http"),
	})

	startServer(ctx, logger, cfg.Server, r)
}

func startServer(ctx context.Context, logger *zap.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("titanic chat backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

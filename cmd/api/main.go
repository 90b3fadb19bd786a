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

	"github.com/aicookbook/recipechat/internal/config"
	"github.com/aicookbook/recipechat/internal/handler"
	"github.com/aicookbook/recipechat/internal/service/ai"
	"github.com/aicookbook/recipechat/internal/service/kitchen"
	"github.com/aicookbook/recipechat/pkg/logger"
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

	zl, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer closeLog()
	zap.ReplaceGlobals(zl)

	// 有 Ark 凭证时使用大模型，否则使用模板回复
	var responder kitchen.Responder = kitchen.TemplateResponder{}
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, zl)
		if err != nil {
			zl.Warn("failed to initialize AI service, using template replies", zap.Error(err))
		} else {
			responder = aiService
			zl.Info("AI service initialized", zap.String("model", cfg.AI.Model))
		}
	} else {
		zl.Info("Ark 凭证未配置，使用模板回复")
	}

	kitchenService := kitchen.NewService(responder, zl)
	router := handler.NewRouter(kitchenService, cfg.Server.CORSOrigins, zl)

	if err := startServer(ctx, cfg.Server, router, zl); err != nil {
		zl.Error("server error", zap.Error(err))
		closeLog()
		os.Exit(1)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, zl *zap.Logger) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zl.Info("recipe chat backend listening", zap.String("addr", addr))
	return runServer(ctx, srv)
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

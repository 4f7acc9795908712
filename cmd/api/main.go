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

	"github.com/zhouzirui/burn-studio/backend/internal/config"
	"github.com/zhouzirui/burn-studio/backend/internal/handler"
	"github.com/zhouzirui/burn-studio/backend/internal/handler/page"
	"github.com/zhouzirui/burn-studio/backend/internal/logging"
	"github.com/zhouzirui/burn-studio/backend/internal/metrics"
	"github.com/zhouzirui/burn-studio/backend/internal/service/coach"
	"github.com/zhouzirui/burn-studio/backend/internal/service/inference"
	"github.com/zhouzirui/burn-studio/backend/internal/service/session"
	"github.com/zhouzirui/burn-studio/backend/internal/service/workout"
)

const version = "0.1.0"

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

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("BURN Studio starting",
		zap.String("version", version),
		zap.String("model_backend", cfg.Model.Backend),
	)

	// 启动时加载一次模型，损坏的模型文件在首次提交前就会暴露
	model := inference.NewModel(newLoader(cfg.Model))
	if err := model.Load(ctx); err != nil {
		logger.Error("calorie model unavailable, every submission will be rejected until restart", zap.Error(err))
		metrics.SetModelLoaded(false)
	} else {
		logger.Info("calorie model loaded")
		metrics.SetModelLoaded(true)
	}

	coachSvc := newCoachService(ctx, cfg.AI, logger)

	sessions := session.NewStore(
		session.WithIdleTTL(cfg.Session.IdleTTL),
		session.WithMaxSessions(cfg.Session.MaxSessions),
	)
	workoutSvc := workout.NewService(model, sessions, coachSvc, logger)

	router := handler.NewRouter(workoutSvc, sessions, model, handler.Options{
		Page: page.Config{
			Title:       cfg.UI.Title,
			HeaderImage: cfg.UI.HeaderImage,
		},
		MetricsEnabled: cfg.Metrics.Enabled,
		CoachActive:    coachSvc.Enabled(),
		Version:        version,
	}, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func newLoader(cfg config.ModelConfig) inference.Loader {
	if cfg.Backend == config.BackendRemote {
		return inference.LoadRemote(cfg.URL, cfg.Timeout)
	}
	return inference.LoadXGBoost(cfg.Path)
}

func newCoachService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) *coach.Service {
	coachCfg := coach.Config{Enabled: cfg.CoachNote, Timeout: cfg.CoachTimeout}

	if !cfg.Enabled() || !cfg.CoachNote {
		logger.Info("coach note disabled: ark credentials not configured or COACH_NOTE_ENABLED=false")
		svc, _ := coach.NewService(ctx, nil, coachCfg, logger)
		return svc
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		logger.Warn("failed to create chat model, continuing without coach note", zap.Error(err))
		svc, _ := coach.NewService(ctx, nil, coachCfg, logger)
		return svc
	}

	svc, err := coach.NewService(ctx, chatModel, coachCfg, logger)
	if err != nil {
		logger.Warn("failed to initialize coach service, continuing without coach note", zap.Error(err))
		svc, _ = coach.NewService(ctx, nil, coachCfg, logger)
		return svc
	}

	logger.Info("coach note enabled", zap.String("model", cfg.Model))
	return svc
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("BURN Studio listening", zap.String("addr", addr))
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

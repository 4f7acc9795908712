package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/burn-studio/backend/internal/handler/health"
	"github.com/zhouzirui/burn-studio/backend/internal/handler/live"
	"github.com/zhouzirui/burn-studio/backend/internal/handler/page"
	"github.com/zhouzirui/burn-studio/backend/internal/handler/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/burn-studio/backend/internal/middleware"
	"github.com/zhouzirui/burn-studio/backend/internal/service/session"
	workoutService "github.com/zhouzirui/burn-studio/backend/internal/service/workout"
)

// Options 路由的非服务类配置
type Options struct {
	Page           page.Config
	MetricsEnabled bool
	CoachActive    bool
	Version        string
}

// NewRouter 将 HTTP 路由绑定到核心服务。
func NewRouter(workoutSvc *workoutService.Service, sessions *session.Store, model health.ModelStatus, opts Options, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)

	page.New(workoutSvc, sessions, opts.Page, logger).RegisterRoutes(r)
	health.New(model, opts.CoachActive, opts.Version).RegisterRoutes(r)

	if opts.MetricsEnabled {
		metrics.Register()
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.CORS)

		workout.New(workoutSvc, sessions, logger).RegisterRoutes(api)
		live.NewWebSocketHandler(workoutSvc, sessions, logger).RegisterRoutes(api)
	})

	return r
}

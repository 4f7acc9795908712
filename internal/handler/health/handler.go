package health

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/burn-studio/backend/pkg/utils"
)

// ModelStatus reports the outcome of the model load.
type ModelStatus interface {
	Load(ctx context.Context) error
}

// Handler serves the health endpoint.
type Handler struct {
	model       ModelStatus
	coachActive bool
	version     string
}

// New 创建健康检查处理器
func New(model ModelStatus, coachActive bool, version string) *Handler {
	return &Handler{model: model, coachActive: coachActive, version: version}
}

type Response struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// RegisterRoutes registers /healthz.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:       "healthy",
		Service:      "burn-studio",
		Version:      h.version,
		Dependencies: map[string]string{},
	}

	if err := h.model.Load(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Dependencies["model"] = "unavailable: " + err.Error()
	} else {
		resp.Dependencies["model"] = "loaded"
	}

	if h.coachActive {
		resp.Dependencies["coach"] = "enabled"
	} else {
		resp.Dependencies["coach"] = "disabled"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	utils.RespondJSON(w, status, resp)
}

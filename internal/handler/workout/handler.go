package workout

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/service/session"
	workoutservice "github.com/zhouzirui/burn-studio/backend/internal/service/workout"
	"github.com/zhouzirui/burn-studio/backend/pkg/utils"
)

// Handler 表单 JSON 接口的HTTP处理器
type Handler struct {
	workoutSvc *workoutservice.Service
	sessions   *session.Store
	logger     *zap.Logger
}

// New 创建表单接口处理器
func New(workoutSvc *workoutservice.Service, sessions *session.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		workoutSvc: workoutSvc,
		sessions:   sessions,
		logger:     logger.Named("api"),
	}
}

// RegisterRoutes 注册会话与预测相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Post("/sessions/{sessionID}/predictions", h.handleSubmit)
	r.Get("/sessions/{sessionID}/result", h.handleLastResult)
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, utils.ErrCodeInternalError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, sess)
}

// submitPayload 表单字段，省略的数值字段取表单默认值
type submitPayload struct {
	Gender       string   `json:"gender"`
	Age          *int     `json:"age"`
	HeightCm     *float64 `json:"heightCm"`
	WeightKg     *float64 `json:"weightKg"`
	DurationMin  *int     `json:"durationMin"`
	HeartRateBpm *int     `json:"heartRateBpm"`
	BodyTempC    *float64 `json:"bodyTempC"`
}

// DecodeInput 将 JSON 请求体解析为 SessionInput
func DecodeInput(data json.RawMessage) (workout.SessionInput, error) {
	var payload submitPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return workout.SessionInput{}, err
	}
	return payload.toInput()
}

func (p submitPayload) toInput() (workout.SessionInput, error) {
	gender, err := workout.ParseGender(p.Gender)
	if err != nil {
		return workout.SessionInput{}, err
	}

	in := workout.DefaultInput()
	in.Gender = gender
	if p.Age != nil {
		in.Age = *p.Age
	}
	if p.HeightCm != nil {
		in.HeightCm = *p.HeightCm
	}
	if p.WeightKg != nil {
		in.WeightKg = *p.WeightKg
	}
	if p.DurationMin != nil {
		in.DurationMin = *p.DurationMin
	}
	if p.HeartRateBpm != nil {
		in.HeartRateBpm = *p.HeartRateBpm
	}
	if p.BodyTempC != nil {
		in.BodyTempC = *p.BodyTempC
	}
	return in, nil
}

// handleSubmit 提交表单并返回预测结果
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, utils.ErrCodeBadRequest, "invalid request body")
		return
	}

	input, err := payload.toInput()
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error())
		return
	}

	result, err := h.workoutSvc.Submit(r.Context(), sessionID, input)
	if err != nil {
		status, code, message := Classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("submission failed", zap.String("session", sessionID), zap.Error(err))
		}
		utils.RespondError(w, status, code, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// handleLastResult 获取会话最近一次结果
func (h *Handler) handleLastResult(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, ok, err := h.workoutSvc.LastResult(r.Context(), sessionID)
	if err != nil {
		status, code, message := Classify(err)
		utils.RespondError(w, status, code, message)
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusNotFound, utils.ErrCodeNotFound, "no result yet")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

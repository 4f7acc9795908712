package workout

import (
	"errors"
	"net/http"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/service/session"
	workoutservice "github.com/zhouzirui/burn-studio/backend/internal/service/workout"
	"github.com/zhouzirui/burn-studio/backend/pkg/utils"
)

// 各类失败展示给用户的提示
const (
	MessageModelUnavailable = "Model not loaded. Please restart the app."
	MessagePredictionFailed = "An error occurred during prediction"
)

// Classify 将控制器错误映射为 HTTP 状态码、错误码与提示信息
func Classify(err error) (int, string, string) {
	var predErr *workoutservice.PredictionError
	switch {
	case errors.Is(err, workoutservice.ErrModelUnavailable):
		return http.StatusServiceUnavailable, utils.ErrCodeModelUnavailable, MessageModelUnavailable
	case errors.Is(err, workout.ErrInvalidGender):
		return http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error()
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, utils.ErrCodeNotFound, err.Error()
	case errors.As(err, &predErr):
		return http.StatusUnprocessableEntity, utils.ErrCodePredictionFailed, MessagePredictionFailed + ": " + predErr.Err.Error()
	default:
		return http.StatusInternalServerError, utils.ErrCodeInternalError, "internal error"
	}
}

package live

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	workouthandler "github.com/zhouzirui/burn-studio/backend/internal/handler/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/service/session"
	workoutservice "github.com/zhouzirui/burn-studio/backend/internal/service/workout"
	"github.com/zhouzirui/burn-studio/backend/pkg/utils"
)

// 实时通道消息类型
const (
	TypeSubmit = "submit"
	TypePing   = "ping"
	TypeState  = "state"
	TypeResult = "result"
	TypeError  = "error"
	TypePong   = "pong"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// WebSocketHandler 实时会话处理器，滑块每次变化都重新提交表单
type WebSocketHandler struct {
	workoutSvc *workoutservice.Service
	sessions   *session.Store
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(workoutSvc *workoutservice.Service, sessions *session.Store, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		workoutSvc: workoutSvc,
		sessions:   sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.Named("live"),
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// resultView 在结果上附带页面展示用的文案
type resultView struct {
	workout.PredictionResult
	CaloriesLabel  string `json:"caloriesLabel"`
	DurationLabel  string `json:"durationLabel"`
	HeartRateLabel string `json:"heartRateLabel"`
}

func newResultView(result workout.PredictionResult) resultView {
	return resultView{
		PredictionResult: result,
		CaloriesLabel:    result.CaloriesLabel(),
		DurationLabel:    result.DurationLabel(),
		HeartRateLabel:   result.HeartRateLabel(),
	}
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.sessions.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	h.logger.Debug("live session opened", zap.String("session", sessionID))

	ctx := r.Context()
	var state interface{}
	if result, ok, err := h.workoutSvc.LastResult(ctx, sessionID); err == nil && ok {
		state = newResultView(result)
	}
	if err := h.send(conn, outgoingMessage{Type: TypeState, SessionID: sessionID, Data: state}); err != nil {
		return
	}

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("live session read failed", zap.String("session", sessionID), zap.Error(err))
			}
			return
		}

		reply := h.dispatch(r, sessionID, msg)
		if err := h.send(conn, reply); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) dispatch(r *http.Request, sessionID string, msg inboundMessage) outgoingMessage {
	switch msg.Type {
	case TypePing:
		return outgoingMessage{Type: TypePong, SessionID: sessionID}
	case TypeSubmit:
		input, err := workouthandler.DecodeInput(msg.Data)
		if err != nil {
			code := utils.ErrCodeBadRequest
			message := "invalid submit payload"
			if errors.Is(err, workout.ErrInvalidGender) {
				message = err.Error()
			}
			return errorMessage(sessionID, code, message)
		}

		result, err := h.workoutSvc.Submit(r.Context(), sessionID, input)
		if err != nil {
			_, code, message := workouthandler.Classify(err)
			return errorMessage(sessionID, code, message)
		}
		return outgoingMessage{Type: TypeResult, SessionID: sessionID, Data: newResultView(result)}
	default:
		return errorMessage(sessionID, utils.ErrCodeBadRequest, "unknown message type: "+msg.Type)
	}
}

func errorMessage(sessionID, code, message string) outgoingMessage {
	return outgoingMessage{
		Type:      TypeError,
		SessionID: sessionID,
		Data:      utils.APIError{Code: code, Message: message},
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg outgoingMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("live session write failed", zap.Error(err))
		return err
	}
	return nil
}

package page

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	workouthandler "github.com/zhouzirui/burn-studio/backend/internal/handler/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
	"github.com/zhouzirui/burn-studio/backend/internal/service/session"
	workoutservice "github.com/zhouzirui/burn-studio/backend/internal/service/workout"
)

// SessionCookie names the cookie carrying the form session id.
const SessionCookie = "burn_session"

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Config holds what the page needs besides the services.
type Config struct {
	Title       string
	HeaderImage string
}

// Handler renders the single-page form.
type Handler struct {
	workoutSvc      *workoutservice.Service
	sessions        *session.Store
	title           string
	headerPath      string
	headerAvailable bool
	logger          *zap.Logger
}

// New creates the page handler. A missing header image is only a warning.
func New(workoutSvc *workoutservice.Service, sessions *session.Store, cfg Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		workoutSvc: workoutSvc,
		sessions:   sessions,
		title:      cfg.Title,
		headerPath: cfg.HeaderImage,
		logger:     logger.Named("page"),
	}
	if h.title == "" {
		h.title = "BURN: Studio"
	}

	if info, err := os.Stat(cfg.HeaderImage); err == nil && !info.IsDir() {
		h.headerAvailable = true
	} else {
		h.logger.Warn("header image not found, page renders without it", zap.String("path", cfg.HeaderImage))
	}
	return h
}

// RegisterRoutes registers the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/analyze", h.handleAnalyze)
	r.Get("/static/header", h.handleHeader)
}

type limits struct {
	MinAge, MaxAge             int
	MinHeightCm, MaxHeightCm   float64
	MinWeightKg, MaxWeightKg   float64
	MinDuration, MaxDuration   int
	MinHeartRate, MaxHeartRate int
	MinBodyTemp, MaxBodyTemp   float64
}

var formLimits = limits{
	MinAge: workout.MinAge, MaxAge: workout.MaxAge,
	MinHeightCm: workout.MinHeightCm, MaxHeightCm: workout.MaxHeightCm,
	MinWeightKg: workout.MinWeightKg, MaxWeightKg: workout.MaxWeightKg,
	MinDuration: workout.MinDuration, MaxDuration: workout.MaxDuration,
	MinHeartRate: workout.MinHeartRate, MaxHeartRate: workout.MaxHeartRate,
	MinBodyTemp: workout.MinBodyTemp, MaxBodyTemp: workout.MaxBodyTemp,
}

type viewData struct {
	Title           string
	SessionID       string
	HeaderAvailable bool
	HeaderName      string
	Limits          limits
	Input           workout.SessionInput
	Result          *workout.PredictionResult
	Error           string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	sessionID := h.ensureSession(w, r)
	h.render(w, r, http.StatusOK, sessionID, workout.DefaultInput(), "")
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sessionID := h.ensureSession(w, r)

	input, err := parseForm(r)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, sessionID, input, err.Error())
		return
	}

	if _, err := h.workoutSvc.Submit(r.Context(), sessionID, input); err != nil {
		status, _, message := workouthandler.Classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("form submission failed", zap.String("session", sessionID), zap.Error(err))
		}
		h.render(w, r, status, sessionID, input, message)
		return
	}

	h.render(w, r, http.StatusOK, sessionID, input, "")
}

func (h *Handler) handleHeader(w http.ResponseWriter, r *http.Request) {
	if !h.headerAvailable {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, h.headerPath)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, sessionID string, input workout.SessionInput, errMsg string) {
	data := viewData{
		Title:           h.title,
		SessionID:       sessionID,
		HeaderAvailable: h.headerAvailable,
		HeaderName:      filepath.Base(h.headerPath),
		Limits:          formLimits,
		Input:           input.Clamped(),
		Error:           errMsg,
	}

	if result, ok, err := h.workoutSvc.LastResult(r.Context(), sessionID); err == nil && ok {
		data.Result = &result
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
	}
}

// ensureSession returns the session bound to the request cookie, creating a
// new one when the cookie is missing or stale.
func (h *Handler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := h.sessions.GetSession(r.Context(), c.Value); err == nil {
			return c.Value
		}
	}

	sess, err := h.sessions.CreateSession(r.Context())
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess.ID
}

func parseForm(r *http.Request) (workout.SessionInput, error) {
	in := workout.DefaultInput()
	if err := r.ParseForm(); err != nil {
		return in, fmt.Errorf("invalid form: %w", err)
	}

	gender, err := workout.ParseGender(r.PostFormValue("gender"))
	if err != nil {
		return in, err
	}
	in.Gender = gender

	ints := []struct {
		field string
		dst   *int
	}{
		{"age", &in.Age},
		{"duration", &in.DurationMin},
		{"heart_rate", &in.HeartRateBpm},
	}
	for _, f := range ints {
		raw := strings.TrimSpace(r.PostFormValue(f.field))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return in, fmt.Errorf("invalid %s value %q", f.field, raw)
		}
		*f.dst = v
	}

	floats := []struct {
		field string
		dst   *float64
	}{
		{"height", &in.HeightCm},
		{"weight", &in.WeightKg},
		{"body_temp", &in.BodyTempC},
	}
	for _, f := range floats {
		raw := strings.TrimSpace(r.PostFormValue(f.field))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, fmt.Errorf("invalid %s value %q", f.field, raw)
		}
		*f.dst = v
	}

	return in, nil
}

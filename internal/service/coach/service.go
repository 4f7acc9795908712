package coach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/burn-studio/backend/internal/analysis/coaching"
	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
)

// Config controls the optional coach note.
type Config struct {
	Enabled  bool
	Timeout  time.Duration
	MaxRunes int
}

// runner is the compiled chain; compose.Runnable satisfies it.
type runner interface {
	Invoke(ctx context.Context, input map[string]any, opts ...compose.Option) (*schema.Message, error)
}

// Service asks a chat model for a short personal note on top of the fixed
// tier message. A nil or disabled Service writes nothing.
type Service struct {
	chain    runner
	timeout  time.Duration
	maxRunes int
	logger   *zap.Logger
}

// NewService compiles the note chain. It returns a disabled service when the
// chat model is missing or the feature is turned off.
func NewService(ctx context.Context, chatModel model.BaseChatModel, cfg Config, logger *zap.Logger) (*Service, error) {
	svc := newService(nil, cfg, logger)
	if !cfg.Enabled || chatModel == nil {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(coachSystemPrompt),
		schema.UserMessage(coachUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile coach chain: %w", err)
	}

	svc.chain = runnable
	return svc, nil
}

func newService(chain runner, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	maxRunes := cfg.MaxRunes
	if maxRunes <= 0 {
		maxRunes = 280
	}
	return &Service{
		chain:    chain,
		timeout:  timeout,
		maxRunes: maxRunes,
		logger:   logger.Named("coach"),
	}
}

// Enabled reports whether notes are generated.
func (s *Service) Enabled() bool {
	return s != nil && s.chain != nil
}

// Note writes the coach note for a result. Errors are returned so callers can
// log them; an empty note is never an error.
func (s *Service) Note(ctx context.Context, input workout.SessionInput, result workout.PredictionResult) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.chain.Invoke(ctx, buildChainInput(input, result))
	if err != nil {
		return "", fmt.Errorf("failed to run coach chain: %w", err)
	}
	if msg == nil {
		return "", nil
	}

	note := truncateRunes(strings.TrimSpace(msg.Content), s.maxRunes)
	s.logger.Debug("coach note generated", zap.Int("length", len(note)), zap.String("tier", string(result.Tier)))
	return note, nil
}

func buildChainInput(input workout.SessionInput, result workout.PredictionResult) map[string]any {
	return map[string]any{
		"gender":     string(input.Gender),
		"age":        input.Age,
		"height":     fmt.Sprintf("%.1f", input.HeightCm),
		"weight":     fmt.Sprintf("%.1f", input.WeightKg),
		"duration":   result.DurationMin,
		"heart_rate": result.HeartRateBpm,
		"body_temp":  fmt.Sprintf("%.1f", input.BodyTempC),
		"calories":   result.CaloriesLabel(),
		"tier":       coaching.Title(result.Tier),
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

const coachSystemPrompt = "You are a concise strength and conditioning coach. Given one workout summary, reply with one or two encouraging sentences of practical advice (recovery, hydration, pacing). No greetings, no lists, no medical claims."

const coachUserPrompt = "Athlete: {gender}, {age} years, {height} cm, {weight} kg.\nSession: {duration} min at {heart_rate} bpm average, body temperature {body_temp} °C.\nEstimated burn: {calories} ({tier} tier).\nWrite the note."

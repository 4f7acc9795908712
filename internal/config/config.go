package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"gopkg.in/yaml.v3"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Model   ModelConfig
	UI      UIConfig
	Session SessionConfig
	Log     LogConfig
	Metrics MetricsConfig
	AI      AIConfig
}

// 模型后端
const (
	BackendXGBoost = "xgboost"
	BackendRemote  = "remote"
)

// Load 先读取 BURN_CONFIG_FILE 指向的可选 YAML 文件，再用环境变量覆盖。
func Load() (*Config, error) {
	file, err := loadFile(strings.TrimSpace(os.Getenv("BURN_CONFIG_FILE")))
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig(file.Server)
	if err != nil {
		return nil, err
	}

	modelCfg, err := loadModelConfig(file.Model)
	if err != nil {
		return nil, err
	}

	sessionCfg, err := loadSessionConfig(file.Session)
	if err != nil {
		return nil, err
	}

	metricsCfg, err := loadMetricsConfig(file.Metrics)
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig(file.AI)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Model:   modelCfg,
		UI:      loadUIConfig(file.UI),
		Session: sessionCfg,
		Log:     LogConfig{Level: getEnvOrDefault("LOG_LEVEL", orDefault(file.Log.Level, "info"))},
		Metrics: metricsCfg,
		AI:      ai,
	}, nil
}

// fileConfig 对应 YAML 文件结构，所有字段均可省略。
type fileConfig struct {
	Server  fileServer  `yaml:"server"`
	Model   fileModel   `yaml:"model"`
	UI      fileUI      `yaml:"ui"`
	Session fileSession `yaml:"session"`
	Log     fileLog     `yaml:"log"`
	Metrics fileMetrics `yaml:"metrics"`
	AI      fileAI      `yaml:"ai"`
}

type fileServer struct {
	Port string `yaml:"port"`
}

type fileModel struct {
	Backend        string `yaml:"backend"`
	Path           string `yaml:"path"`
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type fileUI struct {
	HeaderImage string `yaml:"header_image"`
	Title       string `yaml:"title"`
}

type fileSession struct {
	IdleTTLMinutes *int `yaml:"idle_ttl_minutes"`
	MaxSessions    *int `yaml:"max_sessions"`
}

type fileLog struct {
	Level string `yaml:"level"`
}

type fileMetrics struct {
	Enabled *bool `yaml:"enabled"`
}

type fileAI struct {
	Model               string `yaml:"model"`
	BaseURL             string `yaml:"base_url"`
	Region              string `yaml:"region"`
	CoachNote           *bool  `yaml:"coach_note"`
	CoachTimeoutSeconds int    `yaml:"coach_timeout_seconds"`
}

func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

func loadServerConfig(file fileServer) (ServerConfig, error) {
	port := getEnvOrDefault("PORT", orDefault(file.Port, "8080"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ModelConfig 描述卡路里模型的后端与位置。
type ModelConfig struct {
	Backend string
	Path    string
	URL     string
	Timeout time.Duration
}

func loadModelConfig(file fileModel) (ModelConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("MODEL_BACKEND", orDefault(file.Backend, BackendXGBoost)))
	if backend != BackendXGBoost && backend != BackendRemote {
		return ModelConfig{}, fmt.Errorf("invalid MODEL_BACKEND value: %q", backend)
	}

	timeoutSeconds := 5
	if file.TimeoutSeconds > 0 {
		timeoutSeconds = file.TimeoutSeconds
	}
	if override, err := parseOptionalIntEnv("MODEL_TIMEOUT_SECONDS"); err != nil {
		return ModelConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	return ModelConfig{
		Backend: backend,
		Path:    getEnvOrDefault("MODEL_PATH", orDefault(file.Path, "model.xgb")),
		URL:     getEnvOrDefault("MODEL_URL", file.URL),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// UIConfig 页面展示相关配置
type UIConfig struct {
	HeaderImage string
	Title       string
}

func loadUIConfig(file fileUI) UIConfig {
	return UIConfig{
		HeaderImage: getEnvOrDefault("HEADER_IMAGE", orDefault(file.HeaderImage, "header_image.jpg")),
		Title:       getEnvOrDefault("PAGE_TITLE", orDefault(file.Title, "BURN: Studio")),
	}
}

// SessionConfig 限制内存会话数量与空闲时长，0 表示不限制。
type SessionConfig struct {
	IdleTTL     time.Duration
	MaxSessions int
}

func loadSessionConfig(file fileSession) (SessionConfig, error) {
	ttlMinutes := 120
	if file.IdleTTLMinutes != nil {
		ttlMinutes = *file.IdleTTLMinutes
	}
	if override, err := parseOptionalIntEnv("SESSION_IDLE_TTL_MINUTES"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		ttlMinutes = *override
	}

	maxSessions := 10000
	if file.MaxSessions != nil {
		maxSessions = *file.MaxSessions
	}
	if override, err := parseOptionalIntEnv("SESSION_MAX"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		maxSessions = *override
	}

	if ttlMinutes < 0 || maxSessions < 0 {
		return SessionConfig{}, fmt.Errorf("session limits must not be negative (ttl=%d, max=%d)", ttlMinutes, maxSessions)
	}

	return SessionConfig{
		IdleTTL:     time.Duration(ttlMinutes) * time.Minute,
		MaxSessions: maxSessions,
	}, nil
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Enabled bool
}

func loadMetricsConfig(file fileMetrics) (MetricsConfig, error) {
	def := true
	if file.Enabled != nil {
		def = *file.Enabled
	}
	enabled, err := parseBoolEnv("METRICS_ENABLED", def)
	if err != nil {
		return MetricsConfig{}, err
	}
	return MetricsConfig{Enabled: enabled}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey       string
	AccessKey    string
	SecretKey    string
	Model        string
	BaseURL      string
	Region       string
	Temperature  *float64
	MaxTokens    *int
	CoachNote    bool
	CoachTimeout time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig(file fileAI) (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	noteDefault := true
	if file.CoachNote != nil {
		noteDefault = *file.CoachNote
	}
	coachNote, err := parseBoolEnv("COACH_NOTE_ENABLED", noteDefault)
	if err != nil {
		return AIConfig{}, err
	}

	coachTimeout := 8
	if file.CoachTimeoutSeconds > 0 {
		coachTimeout = file.CoachTimeoutSeconds
	}
	if override, err := parseOptionalIntEnv("COACH_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		coachTimeout = *override
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        getEnvOrDefault("Model", file.Model),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", orDefault(file.BaseURL, "https://ark.cn-beijing.volces.com/api/v3")),
		Region:       getEnvOrDefault("ARK_REGION", orDefault(file.Region, "cn-beijing")),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		CoachNote:    coachNote,
		CoachTimeout: time.Duration(coachTimeout) * time.Second,
	}, nil
}

func orDefault(value, defaultValue string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

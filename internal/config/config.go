// Package config loads commentator configuration from a config file and
// environment variables. A config.yaml in the working directory is optional;
// every key can be supplied through the environment (ANTHROPIC_API_KEY,
// CARTESIA_API_KEY, SERVER_PORT, ...).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Commentary gating modes.
const (
	ModeEventGated = "event" // detection events open the gate
	ModeTimerGated = "timer" // every debounce tick produces a turn
)

// Config is the fully resolved application configuration.
type Config struct {
	// LLM
	AnthropicAPIKey string
	OpenAIAPIKey    string
	LLMModel        string

	// TTS (Cartesia)
	CartesiaAPIKey string
	TTSModel       string
	TTSStreaming   bool // synthesize over the streaming websocket

	// Detection
	RoboflowAPIKey      string
	RoboflowModelID     string
	DetectionModelPath  string // local ONNX model; empty means hosted inference
	DetectionFPS        int
	DetectionConfidence float64
	SkipDetection       bool

	// Commentary
	CommentaryMode     string // "event" or "timer"
	CommentaryCooldown float64
	Sport              string
	PersonaFile        string // optional personas.yaml

	// Voices
	VoiceIDDanny    string
	VoiceIDCoachKay string
	VoiceIDRookie   string

	// Video
	YouTubeAPIKey    string
	VideosDir        string
	MaxVideoDuration int

	// Server
	ServerPort int
	LogLevel   string
	DBPath     string
}

// Load reads config.yaml (if present) and the environment, returning the
// resolved configuration.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvAliases(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		AnthropicAPIKey: v.GetString("llm.anthropic_api_key"),
		OpenAIAPIKey:    v.GetString("llm.openai_api_key"),
		LLMModel:        v.GetString("llm.model"),

		CartesiaAPIKey: v.GetString("tts.cartesia_api_key"),
		TTSModel:       v.GetString("tts.model"),
		TTSStreaming:   v.GetBool("tts.streaming"),

		RoboflowAPIKey:      v.GetString("detection.roboflow_api_key"),
		RoboflowModelID:     v.GetString("detection.roboflow_model_id"),
		DetectionModelPath:  v.GetString("detection.model_path"),
		DetectionFPS:        v.GetInt("detection.fps"),
		DetectionConfidence: v.GetFloat64("detection.confidence"),
		SkipDetection:       v.GetBool("detection.skip"),

		CommentaryMode:     v.GetString("commentary.mode"),
		CommentaryCooldown: v.GetFloat64("commentary.cooldown"),
		Sport:              v.GetString("commentary.sport"),
		PersonaFile:        v.GetString("commentary.persona_file"),

		VoiceIDDanny:    v.GetString("voices.danny"),
		VoiceIDCoachKay: v.GetString("voices.coach_kay"),
		VoiceIDRookie:   v.GetString("voices.rookie"),

		YouTubeAPIKey:    v.GetString("video.youtube_api_key"),
		VideosDir:        v.GetString("video.dir"),
		MaxVideoDuration: v.GetInt("video.max_duration"),

		ServerPort: v.GetInt("server.port"),
		LogLevel:   v.GetString("server.log_level"),
		DBPath:     v.GetString("server.db_path"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.model", "claude-sonnet-4-5")
	v.SetDefault("tts.model", "sonic-3")
	v.SetDefault("tts.streaming", false)
	v.SetDefault("detection.roboflow_model_id", "football-detection")
	v.SetDefault("detection.fps", 5)
	v.SetDefault("detection.confidence", 0.5)
	v.SetDefault("detection.skip", false)
	v.SetDefault("commentary.mode", ModeEventGated)
	v.SetDefault("commentary.cooldown", 5.0)
	v.SetDefault("commentary.sport", "soccer")
	v.SetDefault("video.dir", "./videos")
	v.SetDefault("video.max_duration", 700)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.db_path", "./commentator.db")
}

// bindEnvAliases maps the flat environment variable names the deployment
// uses onto the nested config keys.
func bindEnvAliases(v *viper.Viper) {
	aliases := map[string]string{
		"llm.anthropic_api_key":      "ANTHROPIC_API_KEY",
		"llm.openai_api_key":         "OPENAI_API_KEY",
		"tts.cartesia_api_key":       "CARTESIA_API_KEY",
		"tts.streaming":              "TTS_STREAMING",
		"detection.roboflow_api_key": "ROBOFLOW_API_KEY",
		"detection.model_path":       "DETECTION_MODEL_PATH",
		"detection.skip":             "SKIP_DETECTION",
		"commentary.mode":            "COMMENTARY_MODE",
		"voices.danny":               "VOICE_ID_DANNY",
		"voices.coach_kay":           "VOICE_ID_COACH_KAY",
		"voices.rookie":              "VOICE_ID_ROOKIE",
		"video.youtube_api_key":      "YOUTUBE_API_KEY",
		"video.dir":                  "VIDEOS_DIR",
		"video.max_duration":         "MAX_VIDEO_DURATION",
		"server.port":                "SERVER_PORT",
		"server.log_level":           "LOG_LEVEL",
	}
	for key, env := range aliases {
		_ = v.BindEnv(key, env)
	}
}

// Validate checks cross-field constraints. Missing API keys are not fatal
// here; the provider constructors report them when the feature is used.
func (c *Config) Validate() error {
	switch c.CommentaryMode {
	case ModeEventGated, ModeTimerGated:
	default:
		return fmt.Errorf("config: unknown commentary mode %q", c.CommentaryMode)
	}
	if c.DetectionFPS <= 0 {
		return fmt.Errorf("config: detection fps must be positive, got %d", c.DetectionFPS)
	}
	if c.DetectionConfidence <= 0 || c.DetectionConfidence > 1 {
		return fmt.Errorf("config: detection confidence must be in (0,1], got %v", c.DetectionConfidence)
	}
	if c.CommentaryCooldown <= 0 {
		return fmt.Errorf("config: commentary cooldown must be positive, got %v", c.CommentaryCooldown)
	}
	return nil
}

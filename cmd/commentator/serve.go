package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PreritO/cartesia-hackathon/internal/config"
	"github.com/PreritO/cartesia-hackathon/internal/log"
	"github.com/PreritO/cartesia-hackathon/internal/store"
	"github.com/PreritO/cartesia-hackathon/pkg/detect"
	"github.com/PreritO/cartesia-hackathon/pkg/llm"
	"github.com/PreritO/cartesia-hackathon/pkg/persona"
	"github.com/PreritO/cartesia-hackathon/pkg/server"
	"github.com/PreritO/cartesia-hackathon/pkg/trigger"
	"github.com/PreritO/cartesia-hackathon/pkg/tts"
	"github.com/PreritO/cartesia-hackathon/pkg/video"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the commentator server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log.Init(cfg.LogLevel)
			return serve(cmd, cfg)
		},
	}
}

func serve(cmd *cobra.Command, cfg *config.Config) error {
	logger := log.L()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	llmProvider, err := buildLLM(cfg, logger)
	if err != nil {
		return err
	}
	defer llmProvider.Close()

	ttsProvider, err := buildTTS(cfg, logger)
	if err != nil {
		return err
	}
	defer ttsProvider.Close()

	videos, err := buildVideos(cfg, st, logger)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Port:          cfg.ServerPort,
		VideosDir:     cfg.VideosDir,
		Sport:         cfg.Sport,
		Mode:          trigger.Mode(cfg.CommentaryMode),
		Cooldown:      time.Duration(cfg.CommentaryCooldown * float64(time.Second)),
		FPS:           cfg.DetectionFPS,
		SkipDetection: cfg.SkipDetection,
		Registry:      registry,
		LLM:           llmProvider,
		TTS:           ttsProvider,
		Detectors:     detect.NewCache(detectorFactory(cfg, logger)),
		Videos:        videos,
		Store:         st,
		Debug:         cfg.LogLevel == "debug",
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("commentator starting", "port", cfg.ServerPort, "sport", cfg.Sport, "mode", cfg.CommentaryMode)
	return srv.Listen(ctx)
}

func buildRegistry(cfg *config.Config) (*persona.Registry, error) {
	registry := persona.NewRegistry()
	registry.LoadBuiltIn()

	if cfg.PersonaFile != "" {
		if err := registry.LoadFile(cfg.PersonaFile); err != nil {
			return nil, err
		}
	}

	voices := map[string]string{
		persona.KeyDefault:  cfg.VoiceIDDanny,
		persona.KeyAnalyst:  cfg.VoiceIDCoachKay,
		persona.KeyColor:    cfg.VoiceIDRookie,
		persona.KeyPersonal: cfg.VoiceIDDanny,
	}
	for key, voiceID := range voices {
		if voiceID == "" {
			continue
		}
		if p, err := registry.Get(key); err == nil && p.VoiceID == "" {
			p.VoiceID = voiceID
		}
	}
	return registry, nil
}

var errNoLLM = errors.New("no LLM configured: set ANTHROPIC_API_KEY or OPENAI_API_KEY")

// buildLLM prefers Anthropic and falls back to OpenAI when only that key
// is present.
func buildLLM(cfg *config.Config, logger *slog.Logger) (llm.Provider, error) {
	switch {
	case cfg.AnthropicAPIKey != "":
		return llm.NewAnthropic(
			llm.WithAPIKey(cfg.AnthropicAPIKey),
			llm.WithModel(cfg.LLMModel),
			llm.WithLogger(logger),
		)
	case cfg.OpenAIAPIKey != "":
		return llm.NewOpenAI(
			llm.WithAPIKey(cfg.OpenAIAPIKey),
			llm.WithLogger(logger),
		)
	default:
		return nil, errNoLLM
	}
}

// buildTTS picks the streaming websocket backend when tts.streaming is
// set, the one-shot REST backend otherwise.
func buildTTS(cfg *config.Config, logger *slog.Logger) (tts.Provider, error) {
	opts := []tts.Option{
		tts.WithAPIKey(cfg.CartesiaAPIKey),
		tts.WithModelID(cfg.TTSModel),
		tts.WithLogger(logger),
	}
	if cfg.TTSStreaming {
		return tts.NewCartesiaWS(opts...)
	}
	return tts.NewCartesia(opts...)
}

func buildVideos(cfg *config.Config, st *store.Store, logger *slog.Logger) (server.Fetcher, error) {
	downloader, err := video.NewYtDlp(logger)
	if err != nil {
		return nil, err
	}

	var dl video.Downloader = downloader
	if cfg.YouTubeAPIKey != "" {
		dl = video.NewYouTubeMeta(cfg.YouTubeAPIKey, dl)
	}
	return video.NewManager(cfg.VideosDir, cfg.MaxVideoDuration, dl, st, logger), nil
}

// detectorFactory picks the detection backend from configuration: a local
// ONNX model when a path is set, the hosted Roboflow model otherwise.
func detectorFactory(cfg *config.Config, logger *slog.Logger) func() (detect.Detector, error) {
	return func() (detect.Detector, error) {
		if cfg.DetectionModelPath != "" {
			return detect.NewDNN(
				detect.WithModelPath(cfg.DetectionModelPath),
				detect.WithConfidence(cfg.DetectionConfidence),
				detect.WithLogger(logger),
			)
		}
		if cfg.RoboflowAPIKey != "" {
			return detect.NewRoboflow(
				detect.WithAPIKey(cfg.RoboflowAPIKey),
				detect.WithModelID(cfg.RoboflowModelID),
				detect.WithConfidence(cfg.DetectionConfidence),
				detect.WithLogger(logger),
			)
		}
		return nil, fmt.Errorf("no detection backend configured")
	}
}

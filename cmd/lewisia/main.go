package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/adapters/cache"
	"github.com/srreparos7z-rgb/lewisia/adapters/capture"
	"github.com/srreparos7z-rgb/lewisia/adapters/history"
	"github.com/srreparos7z-rgb/lewisia/adapters/llm"
	"github.com/srreparos7z-rgb/lewisia/adapters/sink"
	"github.com/srreparos7z-rgb/lewisia/adapters/stt"
	"github.com/srreparos7z-rgb/lewisia/audio"
	"github.com/srreparos7z-rgb/lewisia/config"
	"github.com/srreparos7z-rgb/lewisia/dispatcher"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
	"github.com/srreparos7z-rgb/lewisia/internal/auth"
	"github.com/srreparos7z-rgb/lewisia/internal/console"
	"github.com/srreparos7z-rgb/lewisia/recognizer"
	"github.com/srreparos7z-rgb/lewisia/skills"
	"github.com/srreparos7z-rgb/lewisia/supervisor"
	"github.com/srreparos7z-rgb/lewisia/wakeword"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	engine, err := newSpeechEngine(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize speech recognition", zap.Error(err))
	}

	var fallback repositories.LargeLanguageModel
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		gemini, err := llm.NewGemini(ctx, apiKey, logger)
		if err != nil {
			logger.Warn("generative fallback disabled", zap.Error(err))
		} else {
			fallback = gemini
		}
	}

	var responseCache repositories.ResponseCache
	if cfg.CacheDir != "" && fallback != nil {
		responseCache, err = cache.NewBadger(cfg.CacheDir, logger)
		if err != nil {
			logger.Warn("response cache disabled", zap.Error(err))
		} else {
			defer responseCache.Close()
		}
	}

	var store repositories.TurnRepository = history.NewMemory(cfg.HistorySize)
	if cfg.MongoURI != "" {
		mongoStore, err := history.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			logger.Warn("durable history disabled", zap.Error(err))
		} else {
			defer mongoStore.Close(context.Background())
			store = mongoStore
		}
	}

	var dumper *audio.Dumper
	if cfg.DumpDir != "" {
		dumper = audio.NewDumper(afero.NewOsFs(), cfg.DumpDir, cfg.SampleRate)
	}

	detector := wakeword.New(wakeword.Config{
		TriggerPhrase:       cfg.TriggerPhrase,
		ConfidenceThreshold: cfg.WakeConfidenceThreshold,
		Cooldown:            cfg.WakeCooldown,
		SampleRate:          cfg.SampleRate,
		FrameSize:           cfg.FrameSize,
		Language:            cfg.Language,
	}, engine, logger)
	detector.SetEnergyThreshold(cfg.EnergyThreshold)

	rec := recognizer.New(recognizer.Config{
		SilenceTimeout: cfg.SilenceTimeout,
		MaxDuration:    cfg.CommandMaxDuration,
		SampleRate:     cfg.SampleRate,
		Language:       cfg.Language,
		MinConfidence:  cfg.MinSTTConfidence,
	}, engine, dumper, logger)
	rec.SetEnergyThreshold(cfg.EnergyThreshold)

	disp := dispatcher.New(dispatcher.Config{
		ConfidenceThreshold: cfg.DispatchConfidenceThreshold,
		Timeout:             cfg.DispatchTimeout,
	}, fallback, responseCache, store, logger)
	registerSkills(disp)

	speaker := sink.NewEspeak(cfg.Language, logger)

	sup := supervisor.New(supervisor.Config{
		Device: repositories.DeviceConfig{
			Device:     cfg.AudioDevice,
			SampleRate: cfg.SampleRate,
			FrameSize:  cfg.FrameSize,
		},
		BackoffBase:   cfg.BackoffBase,
		BackoffMax:    cfg.BackoffMax,
		MaxRecoveries: cfg.MaxRecoveries,
	}, func() repositories.AudioSource {
		if cfg.InputWAV != "" {
			return capture.NewWavFile(afero.NewOsFs(), cfg.InputWAV)
		}
		return capture.NewPortAudio(logger)
	}, detector, rec, disp, speaker, speaker, store, logger)

	var consoleServer *console.Server
	if cfg.ConsoleAddr != "" {
		hub := console.NewHub(logger)
		go hub.Run()
		sup.SetObserver(hub)

		var authenticator *auth.Auth
		if cfg.ConsoleSecret != "" {
			authenticator = auth.New(cfg.ConsoleSecret, 24*time.Hour)
		}

		consoleServer = console.NewServer(hub, authenticator, sup, store, disp.Skills(), logger)
		go func() {
			if err := consoleServer.Start(cfg.ConsoleAddr); err != nil && err != http.ErrServerClosed {
				logger.Error("console server stopped", zap.Error(err))
			}
		}()
		logger.Info("console listening", zap.String("addr", cfg.ConsoleAddr))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("shutdown signal received")
		sup.RequestShutdown()
	}()

	logger.Info("lewisia starting",
		zap.String("trigger", cfg.TriggerPhrase),
		zap.String("engine", cfg.STTEngine),
		zap.Int("sampleRate", cfg.SampleRate))

	runErr := sup.Run(ctx)

	if consoleServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := consoleServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("console shutdown failed", zap.Error(err))
		}
	}

	if runErr != nil {
		logger.Fatal("supervisor stopped", zap.Error(runErr))
	}
	logger.Info("lewisia exited")
}

// newSpeechEngine selects the recognition backend from configuration.
func newSpeechEngine(ctx context.Context, cfg *config.Config) (repositories.SpeechToText, error) {
	switch cfg.STTEngine {
	case config.EngineGoogle:
		return stt.NewGoogle(ctx)
	case config.EngineWhisperAPI:
		return stt.NewWhisperAPI(os.Getenv("OPENAI_API_KEY"))
	default:
		return stt.NewWhisper(cfg.WhisperModelPath)
	}
}

func registerSkills(disp *dispatcher.Dispatcher) {
	disp.Register(skills.NewGreeting())
	disp.Register(skills.NewClock())
	disp.Register(skills.NewCalendar())
	disp.Register(skills.NewJoke(nil))
	disp.Register(skills.NewQuote(nil))
	disp.Register(skills.NewFact(nil))
	disp.Register(skills.NewWeather(os.Getenv("LEWISIA_WEATHER_CITY")))
	disp.Register(skills.NewStatus())
	disp.Register(skills.NewVolume())
}

// Package config loads the daemon configuration from the environment, with
// an optional .env file for development setups.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// STT engine selectors.
const (
	EngineGoogle     = "google"
	EngineWhisper    = "whisper"
	EngineWhisperAPI = "whisper-api"
)

// Config holds every tunable of the voice pipeline. Values are read once at
// startup; nothing reloads at runtime.
type Config struct {
	// Wake word
	TriggerPhrase           string
	WakeConfidenceThreshold float64
	WakeCooldown            time.Duration

	// Command capture
	CommandMaxDuration time.Duration
	SilenceTimeout     time.Duration
	MinSTTConfidence   float64

	// Dispatch
	DispatchConfidenceThreshold float64
	DispatchTimeout             time.Duration

	// Audio device
	AudioDevice     string
	SampleRate      int
	FrameSize       int
	EnergyThreshold float64

	// Recognition engine
	STTEngine        string
	Language         string
	WhisperModelPath string

	// Error recovery
	BackoffBase   time.Duration
	BackoffMax    time.Duration
	MaxRecoveries int

	// Operator console
	ConsoleAddr   string
	ConsoleSecret string

	// Persistence
	MongoURI      string
	MongoDatabase string
	CacheDir      string
	HistorySize   int

	// Diagnostics
	DumpDir string

	// InputWAV, when set, replays a recording instead of opening the
	// microphone. Development aid.
	InputWAV string
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (*Config, error) {
	// Missing .env is fine; the service normally runs from environment
	// provided by its service manager.
	_ = godotenv.Load()

	cfg := &Config{
		TriggerPhrase:               getString("LEWISIA_TRIGGER_PHRASE", "lewis"),
		WakeConfidenceThreshold:     getFloat("LEWISIA_WAKE_CONFIDENCE", 0.6),
		WakeCooldown:                getMillis("LEWISIA_WAKE_COOLDOWN_MS", 2000),
		CommandMaxDuration:          getMillis("LEWISIA_COMMAND_MAX_DURATION_MS", 10000),
		SilenceTimeout:              getMillis("LEWISIA_SILENCE_TIMEOUT_MS", 1500),
		MinSTTConfidence:            getFloat("LEWISIA_MIN_STT_CONFIDENCE", 0.4),
		DispatchConfidenceThreshold: getFloat("LEWISIA_DISPATCH_CONFIDENCE", 0.5),
		DispatchTimeout:             getMillis("LEWISIA_DISPATCH_TIMEOUT_MS", 10000),
		AudioDevice:                 getString("LEWISIA_AUDIO_DEVICE", ""),
		SampleRate:                  getInt("LEWISIA_SAMPLE_RATE", 16000),
		FrameSize:                   getInt("LEWISIA_FRAME_SIZE", 1024),
		EnergyThreshold:             getFloat("LEWISIA_ENERGY_THRESHOLD", 300),
		STTEngine:                   getString("LEWISIA_STT_ENGINE", EngineWhisper),
		Language:                    getString("LEWISIA_LANGUAGE", "pt-BR"),
		WhisperModelPath:            getString("LEWISIA_WHISPER_MODEL", ""),
		BackoffBase:                 getMillis("LEWISIA_BACKOFF_BASE_MS", 1000),
		BackoffMax:                  getMillis("LEWISIA_BACKOFF_MAX_MS", 30000),
		MaxRecoveries:               getInt("LEWISIA_MAX_RECOVERIES", 5),
		ConsoleAddr:                 getString("LEWISIA_CONSOLE_ADDR", ""),
		ConsoleSecret:               getString("LEWISIA_CONSOLE_SECRET", ""),
		MongoURI:                    getString("MONGODB_URI", ""),
		MongoDatabase:               getString("MONGODB_DATABASE", "lewisia"),
		CacheDir:                    getString("LEWISIA_CACHE_DIR", ""),
		HistorySize:                 getInt("LEWISIA_HISTORY_SIZE", 10),
		DumpDir:                     getString("LEWISIA_DUMP_DIR", ""),
		InputWAV:                    getString("LEWISIA_INPUT_WAV", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TriggerPhrase == "" {
		return fmt.Errorf("trigger phrase must not be empty")
	}
	if c.WakeConfidenceThreshold <= 0 || c.WakeConfidenceThreshold > 1 {
		return fmt.Errorf("wake confidence threshold must be in (0,1], got %v", c.WakeConfidenceThreshold)
	}
	if c.DispatchConfidenceThreshold <= 0 || c.DispatchConfidenceThreshold > 1 {
		return fmt.Errorf("dispatch confidence threshold must be in (0,1], got %v", c.DispatchConfidenceThreshold)
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.FrameSize <= 0 {
		c.FrameSize = 1024
	}
	if c.CommandMaxDuration <= 0 {
		return fmt.Errorf("command max duration must be positive")
	}
	if c.SilenceTimeout <= 0 {
		return fmt.Errorf("silence timeout must be positive")
	}
	if c.SilenceTimeout > c.CommandMaxDuration {
		return fmt.Errorf("silence timeout %v exceeds command max duration %v", c.SilenceTimeout, c.CommandMaxDuration)
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffMax < c.BackoffBase {
		c.BackoffMax = c.BackoffBase
	}
	if c.MaxRecoveries <= 0 {
		c.MaxRecoveries = 5
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 10
	}
	switch c.STTEngine {
	case EngineGoogle, EngineWhisper, EngineWhisperAPI:
	default:
		return fmt.Errorf("unknown stt engine %q", c.STTEngine)
	}
	return nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getMillis(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Millisecond
}

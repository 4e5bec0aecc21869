package repositories

import "context"

// Recognition is a single speech recognition result.
type Recognition struct {
	Text       string
	Confidence float64
}

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// Transcribe converts a block of PCM samples to text. An empty
	// recognition text means no speech was recognized.
	Transcribe(ctx context.Context, samples []int16, config AudioConfig) (Recognition, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

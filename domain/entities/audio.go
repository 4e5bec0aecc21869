package entities

import "time"

// AudioFrame is a fixed-duration block of PCM samples produced by an audio
// source. Frames are immutable once produced; pipeline stages must not modify
// the sample buffer they receive.
type AudioFrame struct {
	Samples    []int16
	SampleRate int
	Channels   int
	Timestamp  time.Time
}

// Duration returns the playback duration of the frame.
func (f AudioFrame) Duration() time.Duration {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	samplesPerChannel := len(f.Samples) / f.Channels
	return time.Duration(samplesPerChannel) * time.Second / time.Duration(f.SampleRate)
}

// End returns the timestamp of the end of the frame.
func (f AudioFrame) End() time.Time {
	return f.Timestamp.Add(f.Duration())
}

// WakeEvent is emitted when the trigger phrase is recognized in the audio
// stream. It is consumed once by the supervisor and then discarded.
type WakeEvent struct {
	Phrase     string
	Confidence float64
	Timestamp  time.Time
}

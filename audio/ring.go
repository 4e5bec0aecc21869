// Package audio holds the small signal-processing pieces shared by the wake
// word detector and the command recognizer.
package audio

// Ring is a fixed-size ring buffer of PCM samples. The wake word detector
// uses it to keep the audio heard just before speech onset, so the first
// syllables of the trigger phrase are not lost.
type Ring struct {
	buffer []int16
	head   int
	filled int
}

// NewRing creates a ring buffer holding size samples.
func NewRing(size int) *Ring {
	return &Ring{
		buffer: make([]int16, size),
	}
}

// Add appends samples, overwriting the oldest when full.
func (r *Ring) Add(samples []int16) {
	for _, s := range samples {
		r.buffer[r.head] = s
		r.head = (r.head + 1) % len(r.buffer)
		if r.filled < len(r.buffer) {
			r.filled++
		}
	}
}

// Read returns the buffered samples in arrival order.
func (r *Ring) Read() []int16 {
	samples := make([]int16, r.filled)
	start := (r.head - r.filled + len(r.buffer)) % len(r.buffer)
	for i := 0; i < r.filled; i++ {
		samples[i] = r.buffer[(start+i)%len(r.buffer)]
	}
	return samples
}

// Clear zeroes the buffer.
func (r *Ring) Clear() {
	for i := range r.buffer {
		r.buffer[i] = 0
	}
	r.head = 0
	r.filled = 0
}

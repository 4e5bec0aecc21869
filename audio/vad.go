package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Voice activity defaults, tuned for 16kHz mono speech on small embedded
// microphones.
const (
	DefaultEnergyThreshold = 300.0
	DefaultBandThreshold   = 1000.0

	voiceBandLowHz  = 300.0
	voiceBandHighHz = 3400.0
)

// VAD decides whether a frame of samples contains speech. It combines a
// cheap mean-energy gate with a spectral check that most of the energy sits
// in the human voice band, which filters fan noise and clicks that pass a
// pure energy threshold.
type VAD struct {
	sampleRate      int
	energyThreshold float64
	bandThreshold   float64
}

// NewVAD creates a detector with default thresholds.
func NewVAD(sampleRate int) *VAD {
	return &VAD{
		sampleRate:      sampleRate,
		energyThreshold: DefaultEnergyThreshold,
		bandThreshold:   DefaultBandThreshold,
	}
}

// SetEnergyThreshold overrides the mean-energy gate.
func (v *VAD) SetEnergyThreshold(threshold float64) {
	v.energyThreshold = threshold
}

// Active reports whether the frame contains voice-like audio.
func (v *VAD) Active(samples []int16) bool {
	if Energy(samples) < v.energyThreshold {
		return false
	}
	return v.voiceBandMagnitude(samples) >= v.bandThreshold
}

// voiceBandMagnitude returns the mean FFT magnitude over the 300-3400 Hz
// band.
func (v *VAD) voiceBandMagnitude(samples []int16) float64 {
	if len(samples) == 0 || v.sampleRate <= 0 {
		return 0
	}

	real := make([]float64, len(samples))
	for i, s := range samples {
		real[i] = float64(s)
	}

	spectrum := fft.FFTReal(real)

	binWidth := float64(v.sampleRate) / float64(len(samples))
	low := int(voiceBandLowHz / binWidth)
	high := int(voiceBandHighHz / binWidth)
	if high > len(spectrum)/2 {
		high = len(spectrum) / 2
	}
	if low >= high {
		return 0
	}

	var sum float64
	for i := low; i < high; i++ {
		sum += cmplx.Abs(spectrum[i])
	}
	return sum / float64(high-low)
}

// Energy returns the mean absolute amplitude of the samples.
func Energy(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += math.Abs(float64(s))
	}
	return sum / float64(len(samples))
}

package repositories

import (
	"context"
	"errors"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
)

// ErrDeviceUnavailable is returned when the input device cannot be acquired.
// It is fatal unless the caller retries with its own policy.
var ErrDeviceUnavailable = errors.New("audio input device unavailable")

// ErrStreamClosed is returned by NextFrame once capture has been stopped.
// It signals normal shutdown, not a failure.
var ErrStreamClosed = errors.New("audio stream closed")

// DeviceConfig selects and configures the audio input device.
type DeviceConfig struct {
	Device     string // empty means the system default input
	SampleRate int
	FrameSize  int // samples per frame
}

// AudioSource owns the microphone input stream and produces a sequence of
// fixed-size audio frames. A source is not restartable once closed; the
// supervisor opens a fresh one after device loss.
type AudioSource interface {
	// Open acquires the input device. It fails with ErrDeviceUnavailable
	// when the device cannot be acquired.
	Open(ctx context.Context, config DeviceConfig) error
	// NextFrame blocks until a frame is available, the context is
	// cancelled, or the stream is closed (ErrStreamClosed).
	NextFrame(ctx context.Context) (entities.AudioFrame, error)
	// Close releases the device. Idempotent.
	Close() error
}

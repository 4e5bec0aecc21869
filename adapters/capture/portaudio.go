// Package capture provides AudioSource implementations: a live microphone
// via PortAudio, a WAV-file replay source, and an in-memory scripted source
// for tests.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

// frameQueueDepth bounds how many frames may sit between the audio driver
// and the pipeline. When the pipeline stalls, the oldest frame is dropped
// rather than blocking the driver; bounded staleness beats an underrun.
const frameQueueDepth = 8

// PortAudio captures microphone audio through PortAudio. It owns the device
// handle exclusively; a reader goroutine fills a bounded frame queue that
// NextFrame consumes.
type PortAudio struct {
	logger *zap.Logger

	mu        sync.Mutex
	stream    *portaudio.Stream
	opened    bool
	closed    bool
	closeOnce sync.Once

	config repositories.DeviceConfig
	frames chan entities.AudioFrame
	done   chan struct{}
}

// NewPortAudio creates an unopened microphone source.
func NewPortAudio(logger *zap.Logger) *PortAudio {
	return &PortAudio{
		logger: logger,
		frames: make(chan entities.AudioFrame, frameQueueDepth),
		done:   make(chan struct{}),
	}
}

// Open acquires the input device and starts the capture goroutine.
func (p *PortAudio) Open(ctx context.Context, config repositories.DeviceConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opened {
		return fmt.Errorf("capture source already opened")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: initialize: %v", repositories.ErrDeviceUnavailable, err)
	}

	in := make([]int16, config.FrameSize)
	stream, err := p.openStream(config, in)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("%w: %v", repositories.ErrDeviceUnavailable, err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("%w: start stream: %v", repositories.ErrDeviceUnavailable, err)
	}

	p.stream = stream
	p.config = config
	p.opened = true

	p.logger.Info("audio capture started",
		zap.String("device", config.Device),
		zap.Int("sampleRate", config.SampleRate),
		zap.Int("frameSize", config.FrameSize))

	go p.captureLoop(stream, in)

	return nil
}

func (p *PortAudio) openStream(config repositories.DeviceConfig, in []int16) (*portaudio.Stream, error) {
	if config.Device == "" {
		return portaudio.OpenDefaultStream(1, 0, float64(config.SampleRate), len(in), in)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	for _, dev := range devices {
		if dev.Name == config.Device && dev.MaxInputChannels > 0 {
			params := portaudio.HighLatencyParameters(dev, nil)
			params.Input.Channels = 1
			params.SampleRate = float64(config.SampleRate)
			params.FramesPerBuffer = len(in)
			return portaudio.OpenStream(params, in)
		}
	}
	return nil, fmt.Errorf("input device %q not found", config.Device)
}

// frameReader matches the read side of a portaudio stream.
type frameReader interface {
	Read() error
}

// captureLoop holds its own stream handle so a read racing Close sees a
// stopped-stream error instead of a nil pointer.
func (p *PortAudio) captureLoop(stream frameReader, in []int16) {
	for {
		select {
		case <-p.done:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			select {
			case <-p.done:
			default:
				p.logger.Error("audio stream read failed", zap.Error(err))
				_ = p.Close()
			}
			return
		}

		samples := make([]int16, len(in))
		copy(samples, in)

		frame := entities.AudioFrame{
			Samples:    samples,
			SampleRate: p.config.SampleRate,
			Channels:   1,
			Timestamp:  time.Now(),
		}

		select {
		case p.frames <- frame:
		default:
			// Queue full: drop the oldest frame, keep the newest.
			select {
			case <-p.frames:
			default:
			}
			select {
			case p.frames <- frame:
			default:
			}
		}
	}
}

// NextFrame blocks until a frame arrives or capture stops.
func (p *PortAudio) NextFrame(ctx context.Context) (entities.AudioFrame, error) {
	select {
	case frame := <-p.frames:
		return frame, nil
	default:
	}

	select {
	case frame := <-p.frames:
		return frame, nil
	case <-ctx.Done():
		return entities.AudioFrame{}, ctx.Err()
	case <-p.done:
		return entities.AudioFrame{}, repositories.ErrStreamClosed
	}
}

// Close releases the device. Safe to call more than once.
func (p *PortAudio) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.closed = true
		if p.stream != nil {
			if err := p.stream.Stop(); err != nil {
				p.logger.Warn("stopping audio stream", zap.Error(err))
			}
			if err := p.stream.Close(); err != nil {
				p.logger.Warn("closing audio stream", zap.Error(err))
			}
		}
		if p.opened {
			if err := portaudio.Terminate(); err != nil {
				p.logger.Warn("terminating portaudio", zap.Error(err))
			}
		}
	})
	return nil
}

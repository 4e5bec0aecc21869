package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-audio/wav"
	"github.com/spf13/afero"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

// WavFile replays a WAV recording as an audio source, which makes the whole
// pipeline runnable without a microphone. Frames carry synthetic timestamps
// spaced exactly one frame duration apart.
type WavFile struct {
	fileSys afero.Fs
	path    string

	mu        sync.Mutex
	frames    []entities.AudioFrame
	pos       int
	opened    bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewWavFile creates a replay source for the given file.
func NewWavFile(fileSys afero.Fs, path string) *WavFile {
	return &WavFile{
		fileSys: fileSys,
		path:    path,
		done:    make(chan struct{}),
	}
}

// Open decodes the file and slices it into frames.
func (w *WavFile) Open(ctx context.Context, config repositories.DeviceConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.opened {
		return fmt.Errorf("replay source already opened")
	}

	file, err := w.fileSys.Open(w.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", repositories.ErrDeviceUnavailable, w.path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("%w: decode %s: %v", repositories.ErrDeviceUnavailable, w.path, err)
	}

	sampleRate := buf.Format.SampleRate
	frameSize := config.FrameSize
	if frameSize <= 0 {
		frameSize = 1024
	}

	start := time.Now()
	frameDur := time.Duration(frameSize) * time.Second / time.Duration(sampleRate)

	for offset := 0; offset < len(buf.Data); offset += frameSize {
		end := offset + frameSize
		if end > len(buf.Data) {
			end = len(buf.Data)
		}
		samples := make([]int16, end-offset)
		for i, v := range buf.Data[offset:end] {
			samples[i] = int16(v)
		}
		w.frames = append(w.frames, entities.AudioFrame{
			Samples:    samples,
			SampleRate: sampleRate,
			Channels:   1,
			Timestamp:  start.Add(time.Duration(offset/frameSize) * frameDur),
		})
	}

	w.opened = true
	return nil
}

// NextFrame returns the next recorded frame; after the recording is
// exhausted it reports a closed stream.
func (w *WavFile) NextFrame(ctx context.Context) (entities.AudioFrame, error) {
	select {
	case <-w.done:
		return entities.AudioFrame{}, repositories.ErrStreamClosed
	case <-ctx.Done():
		return entities.AudioFrame{}, ctx.Err()
	default:
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.opened {
		return entities.AudioFrame{}, repositories.ErrStreamClosed
	}
	if w.pos >= len(w.frames) {
		return entities.AudioFrame{}, repositories.ErrStreamClosed
	}
	frame := w.frames[w.pos]
	w.pos++
	return frame, nil
}

// Close marks the replay as finished. Idempotent.
func (w *WavFile) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
	})
	return nil
}

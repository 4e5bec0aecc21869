package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"

	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

func writeTestWAV(t *testing.T, fileSys afero.Fs, path string, samples int) {
	t.Helper()

	file, err := fileSys.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, 16000, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		SourceBitDepth: 16,
		Data:           make([]int, samples),
	}
	for i := range buf.Data {
		buf.Data[i] = i % 100
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestWavFileReplay(t *testing.T) {
	fileSys := afero.NewMemMapFs()
	writeTestWAV(t, fileSys, "/rec.wav", 2148)

	source := NewWavFile(fileSys, "/rec.wav")
	config := repositories.DeviceConfig{SampleRate: 16000, FrameSize: 1024}

	if err := source.Open(context.Background(), config); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer source.Close()

	var frames int
	var total int
	for {
		frame, err := source.NextFrame(context.Background())
		if errors.Is(err, repositories.ErrStreamClosed) {
			break
		}
		if err != nil {
			t.Fatalf("NextFrame failed: %v", err)
		}
		frames++
		total += len(frame.Samples)
		if frame.SampleRate != 16000 {
			t.Errorf("expected sample rate 16000, got %d", frame.SampleRate)
		}
	}

	// 2148 samples at 1024 per frame: two full frames plus a 100 tail.
	if frames != 3 {
		t.Errorf("expected 3 frames, got %d", frames)
	}
	if total != 2148 {
		t.Errorf("expected 2148 samples replayed, got %d", total)
	}
}

func TestWavFileTimestampsAdvance(t *testing.T) {
	fileSys := afero.NewMemMapFs()
	writeTestWAV(t, fileSys, "/rec.wav", 4096)

	source := NewWavFile(fileSys, "/rec.wav")
	if err := source.Open(context.Background(), repositories.DeviceConfig{SampleRate: 16000, FrameSize: 1024}); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer source.Close()

	first, err := source.NextFrame(context.Background())
	if err != nil {
		t.Fatalf("NextFrame failed: %v", err)
	}
	second, err := source.NextFrame(context.Background())
	if err != nil {
		t.Fatalf("NextFrame failed: %v", err)
	}

	if got := second.Timestamp.Sub(first.Timestamp); got != first.Duration() {
		t.Errorf("expected timestamps one frame apart, got %v", got)
	}
}

func TestWavFileMissing(t *testing.T) {
	source := NewWavFile(afero.NewMemMapFs(), "/missing.wav")

	err := source.Open(context.Background(), repositories.DeviceConfig{SampleRate: 16000, FrameSize: 1024})
	if !errors.Is(err, repositories.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

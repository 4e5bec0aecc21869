package skills

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command. Tests swap it to avoid touching the
// real mixer.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Volume adjusts the ALSA master mixer through amixer.
type Volume struct {
	run Runner
}

// NewVolume creates the volume skill on the real mixer.
func NewVolume() *Volume {
	return &Volume{run: execRunner}
}

// NewVolumeWithRunner creates the volume skill with a custom runner.
func NewVolumeWithRunner(run Runner) *Volume {
	return &Volume{run: run}
}

func (v *Volume) Name() string { return "volume" }

func (v *Volume) Phrases() []string {
	return []string{
		"turn up the volume",
		"turn down the volume",
		"volume up",
		"volume down",
		"mute",
		"unmute",
	}
}

func (v *Volume) Handle(ctx context.Context, command string) (string, error) {
	normalized := strings.ToLower(command)

	var args []string
	var reply string
	switch {
	case strings.Contains(normalized, "up"):
		args = []string{"set", "Master", "10%+"}
		reply = "Volume up."
	case strings.Contains(normalized, "down"):
		args = []string{"set", "Master", "10%-"}
		reply = "Volume down."
	case strings.Contains(normalized, "unmute"):
		args = []string{"set", "Master", "unmute"}
		reply = "Unmuted."
	case strings.Contains(normalized, "mute"):
		args = []string{"set", "Master", "mute"}
		reply = "Muted."
	default:
		return "", fmt.Errorf("unrecognized volume command: %q", command)
	}

	if err := v.run(ctx, "amixer", args...); err != nil {
		return "", fmt.Errorf("adjust mixer: %w", err)
	}
	return reply, nil
}

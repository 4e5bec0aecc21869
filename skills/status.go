package skills

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/afero"
)

const thermalZonePath = "/sys/class/thermal/thermal_zone0/temp"

// Status reports system health: memory pressure, uptime and, on boards
// that expose it, the SoC temperature.
type Status struct {
	fileSys afero.Fs
}

// NewStatus creates the status skill reading thermal data from the OS fs.
func NewStatus() *Status {
	return &Status{fileSys: afero.NewOsFs()}
}

func (s *Status) Name() string { return "status" }

func (s *Status) Phrases() []string {
	return []string{
		"system status",
		"how is the system",
		"are you okay",
	}
}

func (s *Status) Handle(ctx context.Context, command string) (string, error) {
	parts := []string{"All systems running."}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		parts = append(parts, fmt.Sprintf("Memory at %.0f percent.", vm.UsedPercent))
	}

	if uptime, err := host.UptimeWithContext(ctx); err == nil {
		hours := uptime / 3600
		minutes := (uptime % 3600) / 60
		parts = append(parts, fmt.Sprintf("Up for %d hours and %d minutes.", hours, minutes))
	}

	if temp, ok := s.temperature(); ok {
		parts = append(parts, fmt.Sprintf("Core temperature %.1f degrees.", temp))
	}

	return strings.Join(parts, " "), nil
}

// temperature reads the first thermal zone, which reports millidegrees
// Celsius on Linux.
func (s *Status) temperature() (float64, bool) {
	raw, err := afero.ReadFile(s.fileSys, thermalZonePath)
	if err != nil {
		return 0, false
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, false
	}
	return float64(milli) / 1000, true
}

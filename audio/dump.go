package audio

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/afero"
	wave "github.com/zenwerk/go-wave"
)

// Dumper writes captured command segments to WAV files so recognition and
// threshold problems can be diagnosed offline. The filesystem is abstracted
// so tests run against an in-memory fs.
type Dumper struct {
	fileSys    afero.Fs
	dir        string
	sampleRate int
}

// NewDumper creates a dumper writing into dir on the given filesystem.
func NewDumper(fileSys afero.Fs, dir string, sampleRate int) *Dumper {
	return &Dumper{
		fileSys:    fileSys,
		dir:        dir,
		sampleRate: sampleRate,
	}
}

// Dump writes samples as a mono 16-bit WAV file and returns its name.
func (d *Dumper) Dump(samples []int16) (string, error) {
	name := d.dir + "/segment-" + strconv.FormatInt(time.Now().UnixNano(), 10) + ".wav"

	file, err := d.fileSys.Create(name)
	if err != nil {
		return "", fmt.Errorf("create dump file: %w", err)
	}
	defer file.Close()

	writer, err := wave.NewWriter(wave.WriterParam{
		Out:           file,
		Channel:       1,
		SampleRate:    d.sampleRate,
		BitsPerSample: 16,
	})
	if err != nil {
		return "", fmt.Errorf("create wave writer: %w", err)
	}
	defer writer.Close()

	if _, err := writer.WriteSample16(samples); err != nil {
		return "", fmt.Errorf("write samples: %w", err)
	}

	return name, nil
}

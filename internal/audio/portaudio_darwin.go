//go:build darwin

package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/gordonklaus/portaudio"
)

const commitTimeout = 10 * time.Second

type portAudioService struct {
	switcher string
}

// NewService creates a PortAudio-based device service. Defaults are changed
// with the SwitchAudioSource command line tool, which addresses devices by
// name, so the device name doubles as its ID.
func NewService() (Service, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	path, err := exec.LookPath("SwitchAudioSource")
	if err != nil {
		path = "SwitchAudioSource"
	}
	return &portAudioService{switcher: path}, nil
}

func (p *portAudioService) ListDevices(kind Kind) ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, d := range infos {
		channels := d.MaxOutputChannels
		if kind == Input {
			channels = d.MaxInputChannels
		}
		if channels > 0 {
			devices = append(devices, Device{ID: d.Name, Name: d.Name})
		}
	}
	return devices, nil
}

func (p *portAudioService) SetDefault(deviceID string, kind Kind) error {
	ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.switcher, switchAudioSourceArgs(deviceID, kind)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return commandError(fmt.Sprintf("SwitchAudioSource (%s)", kind), err, stdout.Bytes(), stderr.Bytes())
	}
	return nil
}

func (p *portAudioService) Close() error {
	return portaudio.Terminate()
}

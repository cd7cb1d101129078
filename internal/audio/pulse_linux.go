//go:build linux

package audio

import (
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type pulseService struct {
	client *pulse.Client
}

// NewService connects to the PulseAudio (or PipeWire-pulse) server
func NewService() (Service, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("soundswitch"))
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseService{client: c}, nil
}

func (p *pulseService) ListDevices(kind Kind) ([]Device, error) {
	if kind == Input {
		return p.listSources()
	}
	return p.listSinks()
}

func (p *pulseService) listSinks() ([]Device, error) {
	sinks, err := p.client.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("pulse list sinks: %w", err)
	}
	devices := make([]Device, 0, len(sinks))
	for _, s := range sinks {
		devices = append(devices, Device{ID: s.ID(), Name: s.Name()})
	}
	return devices, nil
}

func (p *pulseService) listSources() ([]Device, error) {
	sources, err := p.client.ListSources()
	if err != nil {
		return nil, fmt.Errorf("pulse list sources: %w", err)
	}
	devices := make([]Device, 0, len(sources))
	for _, s := range sources {
		// Monitor sources mirror a sink and are never a microphone
		if strings.HasSuffix(s.ID(), ".monitor") {
			continue
		}
		devices = append(devices, Device{ID: s.ID(), Name: s.Name()})
	}
	return devices, nil
}

func (p *pulseService) SetDefault(deviceID string, kind Kind) error {
	var req proto.RequestArgs
	if kind == Input {
		req = &proto.SetDefaultSource{SourceName: deviceID}
	} else {
		req = &proto.SetDefaultSink{SinkName: deviceID}
	}
	if err := p.client.RawRequest(req, nil); err != nil {
		return fmt.Errorf("pulse set default %s %q: %w", kind, deviceID, err)
	}
	return nil
}

func (p *pulseService) Close() error {
	p.client.Close()
	return nil
}

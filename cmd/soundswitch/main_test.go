package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/petems/soundswitch-tray/internal/audio"
	"github.com/petems/soundswitch-tray/internal/config"
)

func TestPrintDevices(t *testing.T) {
	fake := audio.NewFake(
		[]audio.Device{{ID: "alsa_output.usb", Name: "Headphones"}},
		[]audio.Device{{ID: "alsa_input.usb", Name: "Mic Array"}},
	)

	var buf bytes.Buffer
	if err := printDevices(&buf, fake); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "output devices:") || !strings.Contains(out, "input devices:") {
		t.Errorf("missing headings:\n%s", out)
	}
	if strings.Index(out, "Mic Array") < strings.Index(out, "input devices:") {
		t.Errorf("input device listed under the wrong heading:\n%s", out)
	}
	if !strings.Contains(out, "alsa_output.usb") {
		t.Errorf("expected device id in output:\n%s", out)
	}
}

func TestPrintDevicesError(t *testing.T) {
	fake := audio.NewFake(nil, nil)
	fake.ListErr = map[audio.Kind]error{audio.Input: errors.New("no server")}

	if err := printDevices(&bytes.Buffer{}, fake); err == nil {
		t.Fatal("expected enumeration error")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[[hotkeys]]
keys = "Ctrl+Alt+1"
device-name = "Studio Monitors"
`))
	if err != nil {
		t.Fatal(err)
	}
	fake := audio.NewFake([]audio.Device{{ID: "o1", Name: "Speakers"}}, nil)

	dir, report := validate(zerolog.Nop(), cfg, fake)
	if dir == nil {
		t.Fatal("expected a directory snapshot")
	}
	if len(report.MissingOutputs) != 1 || report.MissingOutputs[0].Name != "Studio Monitors" {
		t.Errorf("unexpected report %+v", report)
	}

	fake.ListErr = map[audio.Kind]error{audio.Output: errors.New("no server")}
	dir, report = validate(zerolog.Nop(), cfg, fake)
	if dir != nil || !report.Empty() {
		t.Error("a failed snapshot must skip validation")
	}
}

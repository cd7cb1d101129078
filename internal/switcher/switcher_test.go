package switcher

import (
	"errors"
	"strings"
	"testing"

	"github.com/petems/soundswitch-tray/internal/audio"
	"github.com/petems/soundswitch-tray/internal/config"
	"github.com/petems/soundswitch-tray/internal/match"
)

var (
	outputs = []audio.Device{
		{ID: "out-1", Name: "Speakers"},
		{ID: "out-2", Name: "Headphones"},
	}
	inputs = []audio.Device{
		{ID: "in-1", Name: "Mic Array"},
		{ID: "in-2", Name: "Webcam Microphone"},
	}
	exact = match.Policy{}
)

func TestSwitchEndToEnd(t *testing.T) {
	svc := audio.NewFake(outputs, inputs)

	out, err := Switch(audio.Output, "Headphones", outputs, exact, svc)
	if err != nil {
		t.Fatalf("output switch: %v", err)
	}
	in, err := Switch(audio.Input, "Mic Array", inputs, exact, svc)
	if err != nil {
		t.Fatalf("input switch: %v", err)
	}

	if out != "Headphones" || in != "Mic Array" {
		t.Errorf("unexpected names %q / %q", out, in)
	}

	want := []audio.Commit{
		{DeviceID: "out-2", Kind: audio.Output},
		{DeviceID: "in-1", Kind: audio.Input},
	}
	got := svc.Commits()
	if len(got) != len(want) {
		t.Fatalf("expected %d commits, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("commit %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSwitchNoMatch(t *testing.T) {
	svc := audio.NewFake(outputs, inputs)

	_, err := Switch(audio.Output, "Studio Monitors", outputs, exact, svc)

	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoMatchError, got %v", err)
	}
	if noMatch.Target != "Studio Monitors" || noMatch.Kind != audio.Output {
		t.Errorf("unexpected error fields: %+v", noMatch)
	}
	if !strings.Contains(err.Error(), "exact match") {
		t.Errorf("expected policy description in %q", err.Error())
	}
	if len(svc.Commits()) != 0 {
		t.Error("no commit expected when nothing matched")
	}
}

func TestSwitchFuzzyReturnsResolvedName(t *testing.T) {
	svc := audio.NewFake(outputs, inputs)
	policy := match.Policy{FuzzyEnabled: true, Algorithm: match.Levenshtein, Threshold: 0.6}

	name, err := Switch(audio.Output, "headphone", outputs, policy, svc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Headphones" {
		t.Errorf("expected resolved display name, got %q", name)
	}
}

func TestSwitchCommitFailure(t *testing.T) {
	cause := errors.New("access denied")
	svc := audio.NewFake(outputs, inputs)
	svc.CommitErr = map[string]error{"out-1": cause}

	_, err := Switch(audio.Output, "Speakers", outputs, exact, svc)

	var commitErr *CommitError
	if !errors.As(err, &commitErr) {
		t.Fatalf("expected CommitError, got %v", err)
	}
	if commitErr.Device.ID != "out-1" {
		t.Errorf("unexpected device %+v", commitErr.Device)
	}
	if !errors.Is(err, cause) {
		t.Error("expected CommitError to unwrap to the cause")
	}
}

func TestValidateMissingDevice(t *testing.T) {
	dir, err := audio.NewDirectory(audio.NewFake(outputs, inputs))
	if err != nil {
		t.Fatal(err)
	}
	mappings := []config.HotkeyMapping{
		{Keys: "Ctrl+Alt+1", DeviceName: "Headphones", InputDeviceName: "Mic Array"},
		{Keys: "Ctrl+Alt+2", DeviceName: "Studio Monitors", InputDeviceName: "Podcast Mic"},
		{Keys: "Ctrl+Alt+3", DeviceName: "Speakers"},
	}

	r := Validate(mappings, dir, exact)

	if r.Empty() {
		t.Fatal("expected missing devices")
	}
	if len(r.MissingOutputs) != 1 || r.MissingOutputs[0] != (Missing{Name: "Studio Monitors", Keys: "Ctrl+Alt+2"}) {
		t.Errorf("unexpected missing outputs: %v", r.MissingOutputs)
	}
	if len(r.MissingInputs) != 1 || r.MissingInputs[0].Name != "Podcast Mic" {
		t.Errorf("unexpected missing inputs: %v", r.MissingInputs)
	}
	if len(r.AvailableOutputs) != 2 || r.AvailableOutputs[0] != "Speakers" {
		t.Errorf("unexpected available outputs: %v", r.AvailableOutputs)
	}

	msg := r.Message()
	for _, want := range []string{
		"Missing Output Device (1):",
		"Studio Monitors (hotkey: Ctrl+Alt+2)",
		"Missing Input Device (1):",
		"Available Output Devices (2):",
		"  - Headphones",
		"Available Input Devices (2):",
		"fuzzy-match",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestValidateAllPresent(t *testing.T) {
	dir, err := audio.NewDirectory(audio.NewFake(outputs, inputs))
	if err != nil {
		t.Fatal(err)
	}
	mappings := []config.HotkeyMapping{
		{Keys: "Ctrl+Alt+1", DeviceName: "Headphones", InputDeviceName: "Mic Array"},
	}

	r := Validate(mappings, dir, exact)
	if !r.Empty() {
		t.Errorf("expected empty report, got %+v", r)
	}
	if r.Message() != "" {
		t.Errorf("expected no message, got %q", r.Message())
	}
}

func TestReportOmitsAvailableListForCompleteKind(t *testing.T) {
	r := Report{
		MissingOutputs:   []Missing{{Name: "TV", Keys: "Ctrl+Alt+4"}},
		AvailableOutputs: []string{"Speakers"},
		AvailableInputs:  []string{"Mic Array"},
	}

	msg := r.Message()
	if strings.Contains(msg, "Input") {
		t.Errorf("input section not expected when no input is missing:\n%s", msg)
	}
	if !strings.Contains(msg, "Available Output Device (1):") {
		t.Errorf("expected singular output heading:\n%s", msg)
	}
}

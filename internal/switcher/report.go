package switcher

import (
	"fmt"
	"strings"

	"github.com/petems/soundswitch-tray/internal/audio"
	"github.com/petems/soundswitch-tray/internal/config"
	"github.com/petems/soundswitch-tray/internal/match"
)

// Missing is a configured device name with no acceptable candidate
type Missing struct {
	Name string
	Keys string
}

func (m Missing) String() string {
	return fmt.Sprintf("%s (hotkey: %s)", m.Name, m.Keys)
}

// Report is the result of checking every configured device against a
// directory snapshot
type Report struct {
	MissingOutputs   []Missing
	MissingInputs    []Missing
	AvailableOutputs []string
	AvailableInputs  []string
}

// Validate runs the matcher for every configured output and input name
// without committing anything.
func Validate(mappings []config.HotkeyMapping, dir *audio.Directory, policy match.Policy) Report {
	r := Report{
		AvailableOutputs: dir.Names(audio.Output),
		AvailableInputs:  dir.Names(audio.Input),
	}

	for _, m := range mappings {
		if _, ok := match.Resolve(m.DeviceName, dir.Devices(audio.Output), policy); !ok {
			r.MissingOutputs = append(r.MissingOutputs, Missing{Name: m.DeviceName, Keys: m.Keys})
		}
		if !m.HasInput() {
			continue
		}
		if _, ok := match.Resolve(m.InputDeviceName, dir.Devices(audio.Input), policy); !ok {
			r.MissingInputs = append(r.MissingInputs, Missing{Name: m.InputDeviceName, Keys: m.Keys})
		}
	}
	return r
}

// Empty reports whether every configured device was found
func (r Report) Empty() bool {
	return len(r.MissingOutputs) == 0 && len(r.MissingInputs) == 0
}

// Message renders the report for a desktop notification. It returns an
// empty string when nothing is missing.
func (r Report) Message() string {
	if r.Empty() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Some configured audio devices were not found:\n\n")

	writeMissing(&sb, "Output", r.MissingOutputs)
	writeMissing(&sb, "Input", r.MissingInputs)

	sb.WriteString("Hotkeys for these devices will not work until the devices are available.\n\n")

	if len(r.MissingOutputs) > 0 {
		writeNames(&sb, "Output", r.AvailableOutputs)
	}
	if len(r.MissingInputs) > 0 {
		writeNames(&sb, "Input", r.AvailableInputs)
	}

	sb.WriteString("Possible solutions:\n")
	sb.WriteString("- Check that the devices are connected and enabled\n")
	sb.WriteString("- Make sure the device names in config.toml match the available devices\n")
	sb.WriteString("- Consider enabling fuzzy-match in config.toml")
	return sb.String()
}

func writeMissing(sb *strings.Builder, kind string, missing []Missing) {
	if len(missing) == 0 {
		return
	}
	fmt.Fprintf(sb, "Missing %s %s (%d):\n", kind, plural("Device", len(missing)), len(missing))
	for _, m := range missing {
		fmt.Fprintf(sb, "  - %s\n", m)
	}
	sb.WriteString("\n")
}

func writeNames(sb *strings.Builder, kind string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(sb, "Available %s %s (%d):\n", kind, plural("Device", len(names)), len(names))
	for _, n := range names {
		fmt.Fprintf(sb, "  - %s\n", n)
	}
	sb.WriteString("\n")
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

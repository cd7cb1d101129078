package audio

import (
	"fmt"
	"strings"
)

// psQuote quotes s as a PowerShell single-quoted literal
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// setAudioDeviceScript builds the PowerShell command that imports the
// AudioDeviceCmdlets module from modulePath and makes deviceID the default.
func setAudioDeviceScript(modulePath, deviceID string, kind Kind) string {
	script := fmt.Sprintf("Import-Module -Name %s -ErrorAction Stop; Set-AudioDevice -ID %s",
		psQuote(modulePath), psQuote(deviceID))
	if kind == Input {
		script += " -RecordingDevice"
	}
	return script
}

// powershellArgs returns the powershell.exe arguments for running script
// without a profile, prompts or a visible window.
func powershellArgs(script string) []string {
	return []string{
		"-NoProfile",
		"-NonInteractive",
		"-WindowStyle", "Hidden",
		"-Command", script,
	}
}

// switchAudioSourceArgs returns the SwitchAudioSource arguments selecting
// the device by name for the given kind.
func switchAudioSourceArgs(name string, kind Kind) []string {
	return []string{"-t", kind.String(), "-s", name}
}

// commandError formats a failed external command the way the commit
// services report it: exit status plus trimmed stdout and stderr.
func commandError(what string, err error, stdout, stderr []byte) error {
	return fmt.Errorf("%s failed: %w. Stdout: '%s'. Stderr: '%s'",
		what, err, strings.TrimSpace(string(stdout)), strings.TrimSpace(string(stderr)))
}

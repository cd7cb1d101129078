//go:build windows

package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gen2brain/malgo"
	"golang.org/x/sys/windows"
)

const commitTimeout = 15 * time.Second

// wasapiIDChars is the length of the WASAPI member of ma_device_id
const wasapiIDChars = 64

type wasapiService struct {
	ctx        *malgo.AllocatedContext
	modulePath string
}

// NewService enumerates endpoints through WASAPI and commits defaults with
// the AudioDeviceCmdlets PowerShell module bundled next to the executable.
func NewService() (Service, error) {
	ctx, err := malgo.InitContext([]malgo.Backend{malgo.BackendWasapi}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo init: %w", err)
	}
	return &wasapiService{ctx: ctx, modulePath: bundledModulePath()}, nil
}

func bundledModulePath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "modules", "AudioDeviceCmdlets", "AudioDeviceCmdlets.psd1")
}

func (w *wasapiService) ListDevices(kind Kind) ([]Device, error) {
	deviceType := malgo.Playback
	if kind == Input {
		deviceType = malgo.Capture
	}

	infos, err := w.ctx.Devices(deviceType)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		id := info.ID
		devices = append(devices, Device{
			ID:   endpointID(id[:]),
			Name: info.Name(),
		})
	}
	return devices, nil
}

// endpointID decodes the NUL-terminated UTF-16 endpoint string that WASAPI
// stores in the device id union.
func endpointID(raw []byte) string {
	n := len(raw) / 2
	if n > wasapiIDChars {
		n = wasapiIDChars
	}
	chars := make([]uint16, n)
	for i := range chars {
		chars[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	return windows.UTF16ToString(chars)
}

func (w *wasapiService) SetDefault(deviceID string, kind Kind) error {
	if w.modulePath == "" {
		return fmt.Errorf("failed to resolve executable path for AudioDeviceCmdlets")
	}
	if _, err := os.Stat(w.modulePath); err != nil {
		return fmt.Errorf("bundled module manifest not found at expected path: %s", w.modulePath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
	defer cancel()

	script := setAudioDeviceScript(w.modulePath, deviceID, kind)
	cmd := exec.CommandContext(ctx, "powershell.exe", powershellArgs(script)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return commandError(fmt.Sprintf("PowerShell Set-AudioDevice (%s)", kind), err, stdout.Bytes(), stderr.Bytes())
	}
	return nil
}

func (w *wasapiService) Close() error {
	err := w.ctx.Uninit()
	w.ctx.Free()
	return err
}

//go:build windows

package hotkey

import (
	"testing"
	"unsafe"
)

func TestVirtualKey(t *testing.T) {
	tests := []struct {
		key  string
		want uint32
	}{
		{"A", 'A'},
		{"7", '7'},
		{"F1", 0x70},
		{"F12", 0x7B},
		{"F24", 0x87},
		{"SPACE", 0x20},
		{"DOWN", 0x28},
	}

	for _, tt := range tests {
		got, err := virtualKey(tt.key)
		if err != nil {
			t.Fatalf("virtualKey(%q): unexpected error: %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("virtualKey(%q): expected 0x%X, got 0x%X", tt.key, tt.want, got)
		}
	}
}

func TestWin32Modifiers(t *testing.T) {
	b, err := ParseBinding("Ctrl+Alt+Shift+Win+1")
	if err != nil {
		t.Fatal(err)
	}
	if got := win32Modifiers(b); got != modControl|modAlt|modShift|modWin {
		t.Errorf("unexpected modifiers 0x%X", got)
	}
}

func TestWinMsgLayout(t *testing.T) {
	want := uintptr(48)
	if unsafe.Sizeof(uintptr(0)) == 4 {
		want = 32
	}
	if got := unsafe.Sizeof(winMsg{}); got != want {
		t.Errorf("MSG layout mismatch: expected %d bytes, got %d", want, got)
	}
}

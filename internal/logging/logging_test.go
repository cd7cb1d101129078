package logging

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := NewWithLevel(tt.level)
			if got := log.GetLevel(); got != tt.want {
				t.Errorf("level %q: expected %s, got %s", tt.level, tt.want, got)
			}
		})
	}
}

func TestPathEndsWithLogFile(t *testing.T) {
	p := Path()
	if filepath.Base(p) != "soundswitch.log" {
		t.Errorf("unexpected log file name: %s", p)
	}
}

package ui

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{420 * time.Millisecond, "420ms"},
		{3*time.Second + 500*time.Millisecond, "3.5s"},
		{90 * time.Second, "1.5m"},
		{90 * time.Minute, "1.5h"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(0); got != "0 B" {
		t.Errorf("FormatBytes(0) = %q, want 0 B", got)
	}
	if got := FormatBytes(1500000000); got != "1.5 GB" {
		t.Errorf("FormatBytes(1500000000) = %q, want 1.5 GB", got)
	}
}

func TestDisableColors(t *testing.T) {
	defer func() {
		colorEnabled = true
		initStyles()
	}()

	DisableColors()
	if IsTerminal() {
		t.Error("IsTerminal should report false after DisableColors")
	}
	if Success("ok") != "ok" {
		t.Error("styles should render plain after DisableColors")
	}
}

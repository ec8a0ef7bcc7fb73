package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{400 * time.Millisecond, "00:00:00.400"},
		{61*time.Second + 5*time.Millisecond, "00:01:01.005"},
		{2*time.Hour + 3*time.Minute + 4500*time.Millisecond, "02:03:04.500"},
		{-time.Second, "00:00:00.000"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"45.5", 45500 * time.Millisecond},
		{"0.3", 300 * time.Millisecond},
		{"01:02", 62 * time.Second},
		{"01:02:03.250", time.Hour + 2*time.Minute + 3250*time.Millisecond},
		{" 4 ", 4 * time.Second},
		{"1m4.5s", 64500 * time.Millisecond},
		{"700ms", 700 * time.Millisecond},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "abc", "1:2:3:4", "-5", "1.5:00", "-1s", "1:xx"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{0, 999 * time.Millisecond, 3723456 * time.Millisecond} {
		got, err := ParseTimestamp(FormatDuration(d))
		if err != nil || got != d {
			t.Errorf("round trip of %v gave %v (%v)", d, got, err)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := map[string]float64{
		"30/1":       30,
		"30000/1001": 30000.0 / 1001,
		"25":         25,
		"0/0":        0,
		"x/1":        0,
	}
	for in, want := range tests {
		if got := ParseFrameRate(in); got != want {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "f.txt")
	if FileExists(path) {
		t.Fatal("file should not exist yet")
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Fatal("file should exist")
	}

	if err := CleanupFiles(path, filepath.Join(dir, "missing")); err != nil {
		t.Errorf("CleanupFiles failed: %v", err)
	}
	if FileExists(path) {
		t.Error("file not removed")
	}
}

package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	got := FormatDuration(time.Hour + 2*time.Minute + 3500*time.Millisecond)
	if got != "01:02:03.500" {
		t.Errorf("expected 01:02:03.500, got %q", got)
	}

	// sub-millisecond remainders carry into the next minute, never to :60
	got = FormatDuration(59*time.Second + 999600*time.Microsecond)
	if got != "00:01:00.000" {
		t.Errorf("expected 00:01:00.000, got %q", got)
	}
	got = FormatDuration(-1500 * time.Millisecond)
	if got != "-00:00:01.500" {
		t.Errorf("expected -00:00:01.500, got %q", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "45.5", want: 45500 * time.Millisecond},
		{in: "01:30", want: 90 * time.Second},
		{in: "1:00:00", want: time.Hour},
		{in: "abc", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: unexpected error state: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestFormatTimecode(t *testing.T) {
	if got := FormatTimecode(61*time.Second + 250*time.Millisecond); got != "01:01.25" {
		t.Errorf("expected 01:01.25, got %q", got)
	}
	if got := FormatTimecode(-time.Second); got != "00:00.00" {
		t.Errorf("expected negative clamp, got %q", got)
	}
}

func TestParseFrameRate(t *testing.T) {
	if got := ParseFrameRate("30/1"); got != 30 {
		t.Errorf("expected 30, got %f", got)
	}
	if got := ParseFrameRate("30/0"); got != 0 {
		t.Errorf("expected 0 for zero denominator, got %f", got)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "nested", "dst.bin")
	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("unexpected copy contents %q", data)
	}
	if !FileExists(dst) {
		t.Error("FileExists reported missing copy")
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(1.5); got != 1500*time.Millisecond {
		t.Errorf("Seconds(1.5) = %v", got)
	}
}

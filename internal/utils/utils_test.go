package utils

import (
	"os"
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	// Integration test using the OS filesystem
	tmp, err := os.CreateTemp("", "video_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write([]byte("fake video content")); err != nil {
		t.Fatal(err)
	}
	tmp.Close()

	id, err := Fingerprint(tmp.Name())
	if err != nil || id == "" {
		t.Errorf("Failed to generate fingerprint: %v", err)
	}

	// Verify Determinism
	id2, _ := Fingerprint(tmp.Name())
	if id != id2 {
		t.Errorf("Hash is not deterministic. Got %s, then %s", id, id2)
	}

	// Verify Sensitivity (Change content -> Change fingerprint)
	f, _ := os.OpenFile(tmp.Name(), os.O_APPEND|os.O_WRONLY, 0644)
	f.Write([]byte(" modification"))
	f.Close()

	id3, _ := Fingerprint(tmp.Name())
	if id == id3 {
		t.Error("Hash did not change after file modification")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(0); got != "--" {
		t.Errorf("Expected placeholder for zero duration, got %q", got)
	}
	if got := FormatDuration(90*time.Second + 400*time.Millisecond); got != "1m30s" {
		t.Errorf("Expected 1m30s, got %q", got)
	}
}

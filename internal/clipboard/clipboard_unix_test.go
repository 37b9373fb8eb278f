//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"sync"
	"testing"
)

func resetInit(t *testing.T) {
	t.Helper()
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	initOnce = sync.Once{}
	initErr = nil
	t.Cleanup(func() {
		initOnce = sync.Once{}
		initErr = nil
	})
}

func TestWriteTextWithoutDisplay(t *testing.T) {
	resetInit(t)
	if err := WriteText("https://example.com/a.jpg"); !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
}

func TestWritePNGWithoutDisplay(t *testing.T) {
	resetInit(t)
	if err := WritePNG([]byte{0x89, 'P', 'N', 'G'}); !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
	if _, err := ReadText(); !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
}

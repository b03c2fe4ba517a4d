package screenshot

import (
	"fmt"
	"log"
	"strings"
)

// Backend names a capture strategy.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendNative Backend = "native"
	BackendGrim   Backend = "grim"
)

// ParseBackend accepts "auto", "native" and "grim" (case-insensitive). Empty
// means auto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendNative, BackendGrim:
		return b, nil
	default:
		return "", fmt.Errorf("unknown capture backend %q (want auto, native or grim)", s)
	}
}

// DetectBackend picks grim for Wayland sessions and the native API otherwise.
func DetectBackend(getenv func(string) string) Backend {
	if getenv("WAYLAND_DISPLAY") != "" {
		return BackendGrim
	}
	if strings.EqualFold(getenv("XDG_SESSION_TYPE"), "wayland") {
		return BackendGrim
	}
	return BackendNative
}

// NewSource builds the Source for backend. Auto is resolved with
// DetectBackend(getenv). The choice is made once; it does not change at runtime.
func NewSource(backend Backend, getenv func(string) string, grim GrimOptions, d Displays) Source {
	if backend == BackendAuto || backend == "" {
		backend = DetectBackend(getenv)
		log.Printf("Capture backend auto-detected: %s", backend)
	}
	if backend == BackendGrim {
		return NewGrimSource(d, grim)
	}
	return NewNativeSource(d)
}

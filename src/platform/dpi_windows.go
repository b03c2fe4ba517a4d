//go:build windows

package platform

import (
	"log"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	shcore = windows.NewLazySystemDLL("Shcore.dll")

	procSetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")
	procSetProcessDpiAwareness        = shcore.NewProc("SetProcessDpiAwareness")
	procSetProcessDPIAware            = user32.NewProc("SetProcessDPIAware")
)

const (
	// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2 is the handle value -4.
	dpiAwarenessContextPerMonitorAwareV2 = ^uintptr(3)
	processPerMonitorDPIAware            = 2
)

// EnableDPIAwareness makes capture coordinates physical pixels. It must run
// before any window is created.
func EnableDPIAwareness() {
	if procSetProcessDpiAwarenessContext.Find() == nil {
		ret, _, _ := procSetProcessDpiAwarenessContext.Call(dpiAwarenessContextPerMonitorAwareV2)
		if ret != 0 {
			log.Printf("DPI: per-monitor v2 awareness enabled")
			return
		}
	}

	if procSetProcessDpiAwareness.Find() == nil {
		ret, _, _ := procSetProcessDpiAwareness.Call(processPerMonitorDPIAware)
		if ret == 0 {
			log.Printf("DPI: per-monitor awareness enabled")
			return
		}
		log.Printf("DPI: SetProcessDpiAwareness failed, error code: %d", ret)
	}

	if procSetProcessDPIAware.Find() == nil {
		if ret, _, _ := procSetProcessDPIAware.Call(); ret != 0 {
			log.Printf("DPI: system awareness enabled (fallback)")
			return
		}
	}
	log.Printf("DPI: no DPI awareness set")
}

package runtimeinit

import (
	"errors"
	"fmt"
	"log"
	"os"

	"screen-mirror/src/clipboard"
	"screen-mirror/src/config"
	"screen-mirror/src/screenshot"
	"screen-mirror/src/tray"
)

var ErrNoDisplays = errors.New("no active displays found")

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(cfg *config.Config)
	// Displays defaults to the live display list.
	Displays screenshot.Displays
	// Getenv drives backend auto-detection. Defaults to os.Getenv.
	Getenv        func(string) string
	RequireIcon   bool
	InitClipboard bool
}

// Runtime is everything a front end needs after startup checks pass.
type Runtime struct {
	Config         *config.Config
	Backend        screenshot.Backend
	Source         screenshot.Source
	Displays       screenshot.Displays
	Icon           []byte
	ClipboardReady bool
}

// Bootstrap loads configuration, sets up logging and verifies that capture can
// work at all. No displays, a broken tray icon or an out-of-range monitor
// override are fatal. A missing clipboard only disables frame copying, and an
// out-of-range monitor from the config file falls back to display 1.
func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg)
	}

	backend, err := screenshot.ParseBackend(cfg.CaptureBackend)
	if err != nil {
		return nil, err
	}

	displays := opts.Displays
	if displays == nil {
		displays = screenshot.ActiveDisplays{}
	}
	n := displays.Count()
	if n == 0 {
		return nil, ErrNoDisplays
	}
	if cfg.Monitor >= n {
		if o := opts.LoadOptions.MonitorOverride; o != nil && *o >= 0 {
			return nil, fmt.Errorf("%w: monitor %d out of range (have %d displays)", screenshot.ErrInvalidRegion, cfg.Monitor, n)
		}
		log.Printf("ERROR: Configured MONITOR=%d not found (have %d displays), falling back to display 1", cfg.Monitor, n)
		cfg.Monitor = 0
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	rt := &Runtime{
		Config:   cfg,
		Backend:  backend,
		Displays: displays,
		Source:   screenshot.NewSource(backend, getenv, screenshot.GrimOptions{Command: cfg.GrimPath}, displays),
	}

	if opts.RequireIcon {
		icon, err := tray.Icon()
		if err != nil {
			return nil, fmt.Errorf("failed to load tray icon: %w", err)
		}
		rt.Icon = icon
	}

	if opts.InitClipboard {
		if err := clipboard.Init(); err != nil {
			log.Printf("Clipboard unavailable, frame copy disabled: %v", err)
		} else {
			rt.ClipboardReady = true
		}
	}

	log.Printf("Screen Mirror initialized: backend=%s displays=%d monitor=%d", rt.Source.Name(), n, cfg.Monitor+1)
	return rt, nil
}

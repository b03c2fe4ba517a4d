package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ConfigPathEnvVar names a .env file used when none sits next to the executable.
	ConfigPathEnvVar = "SCREEN_MIRROR"

	DefaultGrimPath       = "grim"
	DefaultMirrorInterval = 15 * time.Millisecond
	DefaultEdgeInterval   = 500 * time.Millisecond
	DefaultEpsilon        = 0.02
	DefaultResolution     = "captured"
	DefaultCursorPreset   = "default"
	DefaultHotkey         = "Ctrl+Alt+M"
	DefaultLogFile        = "screen_mirror.log"
	DefaultPortStart      = 49560
	DefaultPortEnd        = 49570
)

type LoadOptions struct {
	BackendOverride string
	MonitorOverride *int
}

type Config struct {
	CaptureBackend    string
	GrimPath          string
	MirrorInterval    time.Duration
	EdgeInterval      time.Duration
	ContourEpsilon    float64
	Monitor           int
	Resolution        string
	CursorPreset      string
	Hotkey            string
	EnableFileLogging bool
	LogFile           string
	// PortStart and PortEnd bound the loopback ports scanned for a resident
	// instance, inclusive.
	PortStart int
	PortEnd   int
	EnvPath   string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_MIRROR env var as a path to a config file
	// Variables already set in the environment win over the file.
	envPath := resolveEnvPath()
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		CaptureBackend:    strings.ToLower(getEnvWithDefault("CAPTURE_BACKEND", "auto")),
		GrimPath:          getEnvWithDefault("GRIM_PATH", DefaultGrimPath),
		MirrorInterval:    durationMS("MIRROR_INTERVAL_MS", DefaultMirrorInterval),
		EdgeInterval:      durationMS("EDGE_INTERVAL_MS", DefaultEdgeInterval),
		ContourEpsilon:    positiveFloat("CONTOUR_EPSILON", DefaultEpsilon),
		Monitor:           nonNegativeInt("MONITOR", 0),
		Resolution:        strings.ToLower(getEnvWithDefault("MIRROR_RESOLUTION", DefaultResolution)),
		CursorPreset:      strings.ToLower(getEnvWithDefault("CURSOR_PRESET", DefaultCursorPreset)),
		Hotkey:            resolveHotkey(os.Getenv("HOTKEY")),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		LogFile:           getEnvWithDefault("LOG_FILE", DefaultLogFile),
		EnvPath:           envPath,
	}
	cfg.PortStart, cfg.PortEnd = portRange()

	if b := strings.TrimSpace(opts.BackendOverride); b != "" {
		cfg.CaptureBackend = strings.ToLower(b)
	}
	if opts.MonitorOverride != nil && *opts.MonitorOverride >= 0 {
		cfg.Monitor = *opts.MonitorOverride
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// resolveHotkey maps "off" and "none" to the empty string, which disables the hotkey.
func resolveHotkey(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return DefaultHotkey
	case "off", "none", "disabled":
		return ""
	default:
		return strings.TrimSpace(value)
	}
}

// portRange reads MIRROR_PORT_START and MIRROR_PORT_END, clamped to
// [1024, 65535] and ordered.
func portRange() (int, int) {
	start := nonNegativeInt("MIRROR_PORT_START", DefaultPortStart)
	end := nonNegativeInt("MIRROR_PORT_END", DefaultPortEnd)
	if start < 1024 {
		start = 1024
	}
	if end > 65535 {
		end = 65535
	}
	if end < start {
		start, end = end, start
	}
	return start, end
}

func durationMS(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return def
}

func positiveFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func nonNegativeInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

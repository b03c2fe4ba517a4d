package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-mirror/src/config"
	"screen-mirror/src/cursor"
	"screen-mirror/src/edge"
	"screen-mirror/src/pointer"
	"screen-mirror/src/render"
	"screen-mirror/src/screenshot"
	"screen-mirror/src/session"
)

type cliOptions struct {
	monitor    int
	region     string
	output     string
	outPath    string
	cursor     string
	resolution string
	edges      bool
	lower      int
	upper      int
	aperture   int
	contours   bool
	repeat     int
	interval   time.Duration
	backend    string
	jsonOutput bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"mirror-grab"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	defaults := edge.DefaultParams()
	cmd := &cobra.Command{
		Use:           "mirror-grab",
		Short:         "Capture a display or region to PNG",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.monitor, "monitor", -1, "Display index to capture (0-based, default from config)")
	cmd.Flags().StringVar(&opts.region, "region", "", `Region to capture: "X,Y WxH" or "X,Y,W,H"`)
	cmd.Flags().StringVar(&opts.output, "output-name", "", "Compositor output to capture by name (grim only)")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "frame.png", "PNG destination (use '-' for stdout)")
	cmd.Flags().StringVar(&opts.cursor, "cursor", "", "Cursor preset: "+strings.Join(cursor.PresetNames(), ", ")+" (default from config)")
	cmd.Flags().StringVar(&opts.resolution, "resolution", "", "Output resolution: "+strings.Join(render.Resolutions(), ", "))
	cmd.Flags().BoolVar(&opts.edges, "edges", false, "Run edge detection instead of mirroring")
	cmd.Flags().IntVar(&opts.lower, "lower", defaults.Lower, "Lower edge threshold (0-255)")
	cmd.Flags().IntVar(&opts.upper, "upper", defaults.Upper, "Upper edge threshold (0-255)")
	cmd.Flags().IntVar(&opts.aperture, "aperture", defaults.ApertureIndex, "Aperture index: 0=3, 1=5, 2=7")
	cmd.Flags().BoolVar(&opts.contours, "contours", false, "Outline quadrilateral contours")
	cmd.Flags().IntVar(&opts.repeat, "repeat", 1, "Number of captures; the last one is written")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Delay between repeated captures (default from config)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Capture backend: auto, native or grim")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output capture summary as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	return cmd
}

func runWithOptions(ctx context.Context, opts cliOptions, stdout io.Writer) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		fmt.Fprintf(os.Stderr, "[verbose] Starting mirror-grab\n")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loadOptions := config.LoadOptions{BackendOverride: opts.backend}
	if opts.monitor >= 0 {
		loadOptions.MonitorOverride = &opts.monitor
	}
	cfg, err := config.LoadWithOptions(loadOptions)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	backend, err := screenshot.ParseBackend(cfg.CaptureBackend)
	if err != nil {
		return err
	}
	displays := screenshot.ActiveDisplays{}
	src := screenshot.NewSource(backend, os.Getenv, screenshot.GrimOptions{Command: cfg.GrimPath}, displays)

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config loaded from %q, backend=%s\n", cfg.EnvPath, src.Name())
	}
	if opts.cursor == "" {
		opts.cursor = cfg.CursorPreset
	}
	if opts.resolution == "" {
		opts.resolution = cfg.Resolution
	}
	if opts.interval <= 0 {
		opts.interval = cfg.MirrorInterval
		if opts.edges {
			opts.interval = cfg.EdgeInterval
		}
	}

	target, err := resolveTarget(opts, cfg.Monitor)
	if err != nil {
		return err
	}

	result, img, err := grab(ctx, opts, target, src, displays, pointer.Robot{}, cfg.ContourEpsilon)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Captured %dx%d from %s in %v\n", result.Width, result.Height, result.Target, time.Duration(result.Duration*float64(time.Second)))
	}

	if err := writePNG(opts.outPath, img, stdout); err != nil {
		return err
	}
	return outputResult(result, opts.jsonOutput, opts.outPath, stdout)
}

// resolveTarget prefers an output name, then an explicit region, then the monitor.
func resolveTarget(opts cliOptions, monitor int) (screenshot.Target, error) {
	if opts.output != "" {
		return screenshot.OutputTarget(opts.output), nil
	}
	if opts.region != "" {
		r, err := screenshot.ParseRegion(opts.region)
		if err != nil {
			return screenshot.Target{}, err
		}
		return screenshot.RegionTarget(r), nil
	}
	if opts.monitor >= 0 {
		monitor = opts.monitor
	}
	return screenshot.MonitorTarget(monitor), nil
}

type GrabResult struct {
	Backend    string  `json:"backend"`
	Target     string  `json:"target"`
	Output     string  `json:"output"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Captures   int     `json:"captures"`
	Timestamp  string  `json:"timestamp"`
	Duration   float64 `json:"duration_seconds"`
	AvgCapture float64 `json:"average_capture_seconds"`
}

type lastFrame struct{ img image.Image }

func (l *lastFrame) SetFrame(img image.Image) { l.img = img }

// grab runs the same capture pipeline as the mirror and edge windows, one
// tick per repeat, and returns the final bitmap.
func grab(ctx context.Context, opts cliOptions, target screenshot.Target, src screenshot.Source, displays screenshot.Displays, ptr pointer.Source, epsilon float64) (*GrabResult, image.Image, error) {
	if opts.repeat < 1 {
		return nil, nil, fmt.Errorf("--repeat must be at least 1, got %d", opts.repeat)
	}
	cur, ok := cursor.Preset(opts.cursor)
	if !ok {
		return nil, nil, fmt.Errorf("unknown cursor preset %q (want one of: %s)", opts.cursor, strings.Join(cursor.PresetNames(), ", "))
	}
	sess, err := session.New(session.Options{
		Displays:   displays,
		Target:     target,
		Cursor:     cur,
		Edge:       edge.Params{Lower: opts.lower, Upper: opts.upper, ApertureIndex: opts.aperture, ShowContours: opts.contours},
		Resolution: opts.resolution,
	})
	if err != nil {
		return nil, nil, err
	}

	process := sess.MirrorProcess(ptr)
	name := "grab"
	if opts.edges {
		process = sess.EdgeProcess(edge.NewProcessor(epsilon))
		name = "grab-edges"
	}
	surface := &lastFrame{}
	loop, err := render.New(render.Options{
		Name:    name,
		Source:  src,
		Target:  sess.Target,
		Process: process,
		Surface: surface,
		Period:  opts.interval,
	})
	if err != nil {
		return nil, nil, err
	}
	defer loop.Close()

	start := time.Now()
	for i := 0; i < opts.repeat; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(opts.interval):
			}
		}
		if err := loop.Tick(ctx); err != nil {
			return nil, nil, fmt.Errorf("capture %d of %d failed: %w", i+1, opts.repeat, err)
		}
	}
	elapsed := time.Since(start)

	b := surface.img.Bounds()
	return &GrabResult{
		Backend:    src.Name(),
		Target:     target.String(),
		Output:     opts.outPath,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Captures:   opts.repeat,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Duration:   elapsed.Seconds(),
		AvgCapture: elapsed.Seconds() / float64(opts.repeat),
	}, surface.img, nil
}

func writePNG(path string, img image.Image, stdout io.Writer) error {
	if path == "-" {
		return png.Encode(stdout, img)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func outputResult(result *GrabResult, jsonOutput bool, outPath string, stdout io.Writer) error {
	if outPath == "-" {
		// stdout carries the image.
		return nil
	}
	if jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}
	fmt.Fprintf(stdout, "%s: %dx%d from %s\n", result.Output, result.Width, result.Height, result.Target)
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"monitor", "region", "out", "cursor", "json", "verbose", "backend", "repeat"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}

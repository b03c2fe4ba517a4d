package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"strings"
	"time"
)

const defaultGrimCommand = "grim"

// RunFunc runs an external command to completion.
type RunFunc func(ctx context.Context, name string, args ...string) error

// GrimOptions configures the external screenshot tool backend.
type GrimOptions struct {
	// Command defaults to "grim".
	Command string
	// TempDir holds the per-call output file. Empty means os.TempDir().
	TempDir string
	// Run defaults to exec.CommandContext.
	Run RunFunc
	// Locate finds where a named output sits on the desktop. Defaults to
	// SwayLocator("swaymsg").
	Locate OutputLocator
}

// GrimSource shells out to grim, which writes a PNG that is read back and
// decoded. Exactly one temp file is created per call and it is always removed
// before Capture returns.
type GrimSource struct {
	displays Displays
	command  string
	tempDir  string
	run      RunFunc
	origins  *originCache
}

func NewGrimSource(d Displays, opts GrimOptions) *GrimSource {
	s := &GrimSource{
		displays: d,
		command:  opts.Command,
		tempDir:  opts.TempDir,
		run:      opts.Run,
	}
	if s.command == "" {
		s.command = defaultGrimCommand
	}
	if s.run == nil {
		s.run = runCommand
	}
	locate := opts.Locate
	if locate == nil {
		locate = SwayLocator("swaymsg")
	}
	s.origins = newOriginCache(locate)
	return s
}

func (s *GrimSource) Name() string { return string(BackendGrim) }

func (s *GrimSource) Capture(ctx context.Context, target Target) (*Frame, error) {
	var (
		region Region
		args   []string
	)
	if target.Output != "" {
		args = []string{"-s", "1", "-o", target.Output}
	} else {
		r, err := target.Resolve(s.displays)
		if err != nil {
			return nil, err
		}
		region = r
		args = []string{"-s", "1", "-g", region.Geometry()}
	}

	tmp, err := os.CreateTemp(s.tempDir, "screen-mirror-*.png")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temp file: %v", ErrCaptureUnavailable, err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	args = append(args, path)
	if err := s.run(ctx, s.command, args...); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrExternalTool, s.command, strings.Join(args, " "), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: output file unreadable: %v", ErrExternalTool, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: output file %s is empty", ErrExternalTool, path)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	img := toRGBA(decoded)
	if err := checkImage(img); err != nil {
		return nil, err
	}

	frame := &Frame{Image: img, Region: region, CapturedAt: time.Now()}
	if target.Output != "" {
		s.placeOutput(ctx, frame, target.Output)
	}
	return frame, nil
}

// placeOutput sets the frame origin to the output's desktop position, or
// marks the frame detached when that position is unknown.
func (s *GrimSource) placeOutput(ctx context.Context, f *Frame, name string) {
	f.Region = Region{Width: f.Width(), Height: f.Height()}
	origin, err := s.origins.origin(ctx, name)
	if err != nil {
		f.Detached = true
		return
	}
	f.Region.X, f.Region.Y = origin.X, origin.Y
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return normalize(rgba)
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%v: %s", err, msg)
		}
		return err
	}
	return nil
}

// Package session owns the settings the render loops read on every tick.
// UI callbacks write through the setters; capture workers read snapshots.
package session

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"screen-mirror/src/cursor"
	"screen-mirror/src/edge"
	"screen-mirror/src/pointer"
	"screen-mirror/src/render"
	"screen-mirror/src/screenshot"
)

var ErrUnknownPreset = errors.New("unknown cursor preset")

type Options struct {
	Displays   screenshot.Displays
	Target     screenshot.Target
	Cursor     cursor.Settings
	Edge       edge.Params
	Resolution string
}

// Session is safe for concurrent use.
type Session struct {
	displays screenshot.Displays

	detachedOnce sync.Once

	mu         sync.RWMutex
	target     screenshot.Target
	cursor     cursor.Settings
	edge       edge.Params
	resolution string
}

// New validates opts. A zero Cursor selects cursor.DefaultSettings.
func New(opts Options) (*Session, error) {
	if opts.Displays == nil {
		return nil, errors.New("session: Displays is required")
	}
	if opts.Cursor == (cursor.Settings{}) {
		opts.Cursor = cursor.DefaultSettings()
	}
	if err := opts.Cursor.Validate(); err != nil {
		return nil, err
	}
	if opts.Resolution == "" {
		opts.Resolution = render.ResolutionCaptured
	}
	if err := render.ValidateResolution(opts.Resolution); err != nil {
		return nil, err
	}
	return &Session{
		displays:   opts.Displays,
		target:     opts.Target,
		cursor:     opts.Cursor,
		edge:       opts.Edge.Normalize(),
		resolution: opts.Resolution,
	}, nil
}

func (s *Session) Cursor() cursor.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// SetCursor replaces all cursor settings. Invalid settings are rejected and
// the previous ones kept.
func (s *Session) SetCursor(c cursor.Settings) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cursor = c
	s.mu.Unlock()
	return nil
}

// ApplyPreset overwrites every cursor field with the named preset.
func (s *Session) ApplyPreset(name string) (cursor.Settings, error) {
	c, ok := cursor.Preset(name)
	if !ok {
		return s.Cursor(), fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	s.mu.Lock()
	s.cursor = c
	s.mu.Unlock()
	return c, nil
}

func (s *Session) Edge() edge.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edge
}

func (s *Session) SetEdge(p edge.Params) {
	s.mu.Lock()
	s.edge = p.Normalize()
	s.mu.Unlock()
}

func (s *Session) SetLowerThreshold(v int) { s.updateEdge(func(p *edge.Params) { p.Lower = v }) }

func (s *Session) SetUpperThreshold(v int) { s.updateEdge(func(p *edge.Params) { p.Upper = v }) }

func (s *Session) SetApertureIndex(v int) { s.updateEdge(func(p *edge.Params) { p.ApertureIndex = v }) }

func (s *Session) SetShowContours(v bool) { s.updateEdge(func(p *edge.Params) { p.ShowContours = v }) }

func (s *Session) updateEdge(fn func(*edge.Params)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.edge)
	s.edge = s.edge.Normalize()
}

func (s *Session) Target() screenshot.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

func (s *Session) SetTarget(t screenshot.Target) {
	s.mu.Lock()
	s.target = t
	s.mu.Unlock()
}

// SelectMonitor switches the target to monitor index after checking it
// against the current display list.
func (s *Session) SelectMonitor(index int) error {
	if _, err := screenshot.MonitorTarget(index).Resolve(s.displays); err != nil {
		return err
	}
	s.SetTarget(screenshot.MonitorTarget(index))
	return nil
}

func (s *Session) Resolution() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolution
}

func (s *Session) SetResolution(name string) error {
	if err := render.ValidateResolution(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.resolution = name
	s.mu.Unlock()
	return nil
}

// MirrorProcess draws the cursor marker read from ptr and applies the
// resolution preset. Settings are read once per frame. Detached frames get no
// marker since the pointer cannot be placed on them.
func (s *Session) MirrorProcess(ptr pointer.Source) render.ProcessFunc {
	return func(f *screenshot.Frame) (image.Image, error) {
		s.mu.RLock()
		c, res := s.cursor, s.resolution
		s.mu.RUnlock()

		switch {
		case !c.Enabled:
		case f.Detached:
			s.detachedOnce.Do(func() {
				log.Printf("Cursor marker skipped: desktop position of %s is unknown", s.Target())
			})
		default:
			cursor.Annotate(f.Image, f.Region.Origin(), c, ptr.Position())
		}
		return render.Resize(f.Image, res), nil
	}
}

// EdgeProcess runs p with the current edge parameters.
func (s *Session) EdgeProcess(p *edge.Processor) render.ProcessFunc {
	return func(f *screenshot.Frame) (image.Image, error) {
		return p.Process(f.Image, s.Edge())
	}
}

package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"screen-mirror/src/cursor"
	"screen-mirror/src/render"
	"screen-mirror/src/screenshot"
	"screen-mirror/src/session"
)

// Action is a user command from the tray, the hotkey or a dialog.
type Action int

const (
	ActionSelectDisplay Action = iota
	ActionPickDisplay
	ActionStart
	ActionStop
	ActionToggle
	ActionShowWindow
	ActionCursorSettings
	ActionCopyFrame
	ActionQuit
)

var actionNames = map[Action]string{
	ActionSelectDisplay:  "select display",
	ActionPickDisplay:    "pick display",
	ActionStart:          "start mirroring",
	ActionStop:           "stop mirroring",
	ActionToggle:         "toggle mirroring",
	ActionShowWindow:     "show window",
	ActionCursorSettings: "cursor settings",
	ActionCopyFrame:      "copy frame",
	ActionQuit:           "quit",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Event carries an action and its argument.
type Event struct {
	Action  Action
	Display int // ActionSelectDisplay only
}

// CursorStore is the part of the session the settings dialog edits.
type CursorStore interface {
	Cursor() cursor.Settings
	SetCursor(cursor.Settings) error
	ApplyPreset(name string) (cursor.Settings, error)
}

// UI is the presentation layer. Methods are called from the loop goroutine
// and must hand work to the UI thread themselves.
type UI interface {
	ShowMirror()
	PickDisplay(displays []screenshot.Display, onPick func(index int))
	EditCursor(store CursorStore)
	Quit()
}

// Tray reflects loop state in the tray menu.
type Tray interface {
	SetRunning(running bool)
	SetTooltip(text string)
}

// Renderer is the mirror's render loop.
type Renderer interface {
	Start(ctx context.Context) bool
	Stop()
	State() render.State
	Last() image.Image
}

type Options struct {
	Session   *session.Session
	Displays  screenshot.Displays
	Renderer  Renderer
	UI        UI
	Tray      Tray
	CopyImage func(image.Image) error
	Notify    func(title, message string)
	Tooltip   string
}

// Loop is the single-threaded coordinator for tray, hotkey and dialog actions.
type Loop struct {
	opts   Options
	events chan Event
}

func New(opts Options) (*Loop, error) {
	switch {
	case opts.Session == nil:
		return nil, errors.New("eventloop: Session is required")
	case opts.Displays == nil:
		return nil, errors.New("eventloop: Displays is required")
	case opts.Renderer == nil:
		return nil, errors.New("eventloop: Renderer is required")
	case opts.UI == nil:
		return nil, errors.New("eventloop: UI is required")
	case opts.Tray == nil:
		return nil, errors.New("eventloop: Tray is required")
	}
	if opts.Notify == nil {
		opts.Notify = func(title, message string) { log.Printf("%s: %s", title, message) }
	}
	if opts.Tooltip == "" {
		opts.Tooltip = "Screen Mirror"
	}
	return &Loop{opts: opts, events: make(chan Event, 16)}, nil
}

// Post queues an event without blocking. It reports false when the queue is
// full and the event was dropped.
func (l *Loop) Post(ev Event) bool {
	select {
	case l.events <- ev:
		return true
	default:
		log.Printf("eventloop: queue full, dropping %s", ev.Action)
		return false
	}
}

// Run handles events until Quit (returns nil) or ctx ends (returns ctx.Err()).
// The mirror is stopped either way.
func (l *Loop) Run(ctx context.Context) error {
	defer l.opts.Renderer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			log.Printf("eventloop: %s", ev.Action)
			if ev.Action == ActionQuit {
				l.opts.Renderer.Stop()
				l.opts.Tray.SetRunning(false)
				l.opts.UI.Quit()
				return nil
			}
			l.handle(ctx, ev)
		}
	}
}

func (l *Loop) handle(ctx context.Context, ev Event) {
	switch ev.Action {
	case ActionSelectDisplay:
		l.selectDisplay(ev.Display)
	case ActionPickDisplay:
		displays := screenshot.List(l.opts.Displays)
		if len(displays) == 0 {
			l.opts.Notify("Screen Mirror", "No displays found")
			return
		}
		l.opts.UI.PickDisplay(displays, func(index int) {
			l.Post(Event{Action: ActionSelectDisplay, Display: index})
		})
	case ActionStart:
		l.start(ctx)
	case ActionStop:
		l.stop()
	case ActionToggle:
		if l.opts.Renderer.State() == render.Running {
			l.stop()
		} else {
			l.start(ctx)
		}
	case ActionShowWindow:
		l.opts.UI.ShowMirror()
	case ActionCursorSettings:
		l.opts.UI.EditCursor(l.opts.Session)
	case ActionCopyFrame:
		l.copyFrame()
	default:
		log.Printf("eventloop: unhandled action %v", ev.Action)
	}
}

func (l *Loop) start(ctx context.Context) {
	l.opts.Renderer.Start(ctx)
	l.opts.UI.ShowMirror()
	l.opts.Tray.SetRunning(true)
	l.opts.Tray.SetTooltip(fmt.Sprintf("%s: mirroring %s", l.opts.Tooltip, describe(l.opts.Session.Target())))
}

func (l *Loop) stop() {
	l.opts.Renderer.Stop()
	l.opts.Tray.SetRunning(false)
	l.opts.Tray.SetTooltip(l.opts.Tooltip)
}

func (l *Loop) selectDisplay(index int) {
	if err := l.opts.Session.SelectMonitor(index); err != nil {
		log.Printf("eventloop: select display %d: %v", index, err)
		l.opts.Notify("Screen Mirror", fmt.Sprintf("Display %d is not available", index+1))
		return
	}
	if l.opts.Renderer.State() == render.Running {
		l.opts.Tray.SetTooltip(fmt.Sprintf("%s: mirroring %s", l.opts.Tooltip, describe(l.opts.Session.Target())))
	}
}

func (l *Loop) copyFrame() {
	img := l.opts.Renderer.Last()
	if img == nil {
		l.opts.Notify("Screen Mirror", "Nothing to copy yet")
		return
	}
	if l.opts.CopyImage == nil {
		return
	}
	if err := l.opts.CopyImage(img); err != nil {
		log.Printf("eventloop: copy frame: %v", err)
		l.opts.Notify("Screen Mirror", "Clipboard error")
		return
	}
	l.opts.Notify("Screen Mirror", "Frame copied to clipboard")
}

func describe(t screenshot.Target) string {
	if t.ByMonitor {
		return fmt.Sprintf("display %d", t.Monitor+1)
	}
	return t.String()
}

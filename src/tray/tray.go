package tray

import (
	"errors"
	"log"
	"sync"

	"screen-mirror/src/eventloop"
	"screen-mirror/src/screenshot"

	"github.com/getlantern/systray"
)

// MenuEntry is one clickable tray item and the event it posts.
type MenuEntry struct {
	Label   string
	Tooltip string
	Event   eventloop.Event
}

// DisplayEntries lists one entry per display followed by the picker.
func DisplayEntries(displays []screenshot.Display) []MenuEntry {
	out := make([]MenuEntry, 0, len(displays)+1)
	for _, d := range displays {
		out = append(out, MenuEntry{
			Label:   d.String(),
			Tooltip: "Mirror this display",
			Event:   eventloop.Event{Action: eventloop.ActionSelectDisplay, Display: d.Index},
		})
	}
	return append(out, MenuEntry{
		Label:   "Choose with preview...",
		Tooltip: "Pick a display from thumbnails",
		Event:   eventloop.Event{Action: eventloop.ActionPickDisplay},
	})
}

// ActionEntries lists the top-level items between the display submenu and Quit.
func ActionEntries() []MenuEntry {
	return []MenuEntry{
		{Label: "Start mirroring", Tooltip: "Start capturing the selected display", Event: eventloop.Event{Action: eventloop.ActionStart}},
		{Label: "Stop mirroring", Tooltip: "Pause capturing", Event: eventloop.Event{Action: eventloop.ActionStop}},
		{Label: "Show window", Tooltip: "Bring the mirror window back", Event: eventloop.Event{Action: eventloop.ActionShowWindow}},
		{Label: "Cursor settings...", Tooltip: "Change the cursor marker", Event: eventloop.Event{Action: eventloop.ActionCursorSettings}},
		{Label: "Copy frame", Tooltip: "Copy the last frame to the clipboard", Event: eventloop.Event{Action: eventloop.ActionCopyFrame}},
	}
}

type Config struct {
	Title    string
	Tooltip  string
	Icon     []byte
	Displays []screenshot.Display
	// Post delivers menu clicks to the event loop.
	Post   func(eventloop.Event) bool
	OnExit func()
}

// Tray is the systray menu. SetRunning and SetTooltip may be called before the
// menu is ready; the state is applied once it is.
type Tray struct {
	cfg Config

	mu      sync.Mutex
	ready   bool
	running bool
	tooltip string
	start   *systray.MenuItem
	stop    *systray.MenuItem
}

func New(cfg Config) (*Tray, error) {
	if cfg.Post == nil {
		return nil, errors.New("tray: Post is required")
	}
	if len(cfg.Icon) == 0 {
		icon, err := Icon()
		if err != nil {
			return nil, err
		}
		cfg.Icon = icon
	}
	if cfg.Title == "" {
		cfg.Title = "Screen Mirror"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	return &Tray{cfg: cfg, tooltip: cfg.Tooltip}, nil
}

// Run blocks until Destroy is called or the tray exits.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) Destroy() {
	systray.Quit()
}

func (t *Tray) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = running
	t.applyRunningLocked()
}

func (t *Tray) SetTooltip(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tooltip = text
	if t.ready {
		systray.SetTooltip(text)
	}
}

func (t *Tray) onReady() {
	systray.SetIcon(platformIcon(t.cfg.Icon))
	systray.SetTitle(t.cfg.Title)

	displayMenu := systray.AddMenuItem("Select display", "Choose the display to mirror")
	for _, e := range DisplayEntries(t.cfg.Displays) {
		t.forward(displayMenu.AddSubMenuItem(e.Label, e.Tooltip), e.Event)
	}

	items := make([]*systray.MenuItem, 0, len(ActionEntries()))
	for _, e := range ActionEntries() {
		item := systray.AddMenuItem(e.Label, e.Tooltip)
		t.forward(item, e.Event)
		items = append(items, item)
	}
	systray.AddSeparator()
	t.forward(systray.AddMenuItem("Quit", "Quit the application"), eventloop.Event{Action: eventloop.ActionQuit})

	t.mu.Lock()
	t.start, t.stop = items[0], items[1]
	t.ready = true
	systray.SetTooltip(t.tooltip)
	t.applyRunningLocked()
	t.mu.Unlock()
	log.Printf("Tray ready")
}

func (t *Tray) onExit() {
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

func (t *Tray) forward(item *systray.MenuItem, ev eventloop.Event) {
	go func() {
		for range item.ClickedCh {
			t.cfg.Post(ev)
		}
	}()
}

func (t *Tray) applyRunningLocked() {
	if !t.ready {
		return
	}
	if t.running {
		t.start.Disable()
		t.stop.Enable()
	} else {
		t.start.Enable()
		t.stop.Disable()
	}
}

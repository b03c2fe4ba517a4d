package eventloop

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"screen-mirror/src/render"
	"screen-mirror/src/screenshot"
	"screen-mirror/src/session"
)

type fakeDisplays []image.Rectangle

func (f fakeDisplays) Count() int                   { return len(f) }
func (f fakeDisplays) Bounds(i int) image.Rectangle { return f[i] }

type fakeRenderer struct {
	mu     sync.Mutex
	state  render.State
	starts int
	stops  int
	last   image.Image
}

func (r *fakeRenderer) Start(context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	if r.state == render.Running {
		return false
	}
	r.state = render.Running
	return true
}

func (r *fakeRenderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	r.state = render.Idle
}

func (r *fakeRenderer) State() render.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *fakeRenderer) Last() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

type fakeUI struct {
	mu      sync.Mutex
	shown   int
	quit    bool
	edited  CursorStore
	pick    int
	offered []screenshot.Display
}

func (u *fakeUI) ShowMirror() { u.mu.Lock(); u.shown++; u.mu.Unlock() }

func (u *fakeUI) PickDisplay(d []screenshot.Display, onPick func(int)) {
	u.mu.Lock()
	u.offered = d
	u.mu.Unlock()
	onPick(u.pick)
}

func (u *fakeUI) EditCursor(s CursorStore) { u.mu.Lock(); u.edited = s; u.mu.Unlock() }

func (u *fakeUI) Quit() { u.mu.Lock(); u.quit = true; u.mu.Unlock() }

type fakeTray struct {
	mu      sync.Mutex
	running bool
	tooltip string
}

func (t *fakeTray) SetRunning(r bool)   { t.mu.Lock(); t.running = r; t.mu.Unlock() }
func (t *fakeTray) SetTooltip(s string) { t.mu.Lock(); t.tooltip = s; t.mu.Unlock() }

type harness struct {
	loop     *Loop
	sess     *session.Session
	renderer *fakeRenderer
	ui       *fakeUI
	tray     *fakeTray
	notes    chan string
	copied   chan image.Image
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	displays := fakeDisplays{image.Rect(0, 0, 800, 600), image.Rect(800, 0, 1600, 900)}
	sess, err := session.New(session.Options{Displays: displays, Target: screenshot.MonitorTarget(0)})
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{
		sess:     sess,
		renderer: &fakeRenderer{},
		ui:       &fakeUI{pick: 1},
		tray:     &fakeTray{},
		notes:    make(chan string, 8),
		copied:   make(chan image.Image, 1),
	}
	h.loop, err = New(Options{
		Session:   sess,
		Displays:  displays,
		Renderer:  h.renderer,
		UI:        h.ui,
		Tray:      h.tray,
		CopyImage: func(img image.Image) error { h.copied <- img; return nil },
		Notify:    func(_, msg string) { h.notes <- msg },
	})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// run posts events followed by Quit and waits for Run to return.
func (h *harness) run(t *testing.T, events ...Event) {
	t.Helper()
	for _, ev := range events {
		if !h.loop.Post(ev) {
			t.Fatalf("could not post %v", ev.Action)
		}
	}
	h.loop.Post(Event{Action: ActionQuit})
	done := make(chan error, 1)
	go func() { done <- h.loop.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for empty options")
	}
}

func TestStartStop(t *testing.T) {
	h := newHarness(t)
	h.loop.Post(Event{Action: ActionStart})
	h.loop.Post(Event{Action: ActionStop})
	h.run(t)

	if h.renderer.starts != 1 {
		t.Fatalf("renderer started %d times", h.renderer.starts)
	}
	if h.ui.shown != 1 {
		t.Fatalf("window shown %d times on start", h.ui.shown)
	}
	if h.tray.running {
		t.Fatal("tray still shows running after stop")
	}
	if !h.ui.quit {
		t.Fatal("Quit did not reach the UI")
	}
}

func TestToggle(t *testing.T) {
	h := newHarness(t)
	h.loop.Post(Event{Action: ActionToggle})
	h.loop.Post(Event{Action: ActionToggle})
	h.loop.Post(Event{Action: ActionToggle})
	h.run(t)
	if h.renderer.starts != 2 {
		t.Fatalf("three toggles should start twice, got %d", h.renderer.starts)
	}
}

func TestQuitStopsRenderer(t *testing.T) {
	h := newHarness(t)
	h.run(t, Event{Action: ActionStart})
	if h.renderer.State() != render.Idle {
		t.Fatal("renderer still running after quit")
	}
}

func TestShowWindowKeepsState(t *testing.T) {
	h := newHarness(t)
	h.loop.Post(Event{Action: ActionShowWindow})
	h.run(t)
	if h.ui.shown != 1 {
		t.Fatal("window not shown")
	}
	if h.renderer.starts != 0 {
		t.Fatal("show window started the renderer")
	}
}

func TestPickDisplaySelectsMonitor(t *testing.T) {
	h := newHarness(t)
	h.run(t, Event{Action: ActionPickDisplay})
	if len(h.ui.offered) != 2 {
		t.Fatalf("picker offered %d displays, want 2", len(h.ui.offered))
	}
	if got := h.sess.Target(); got.Monitor != 1 {
		t.Fatalf("target monitor = %d, want 1", got.Monitor)
	}
}

func TestSelectDisplayOutOfRange(t *testing.T) {
	h := newHarness(t)
	h.run(t, Event{Action: ActionSelectDisplay, Display: 7})
	if got := h.sess.Target(); got.Monitor != 0 {
		t.Fatalf("invalid selection changed target to %d", got.Monitor)
	}
	select {
	case <-h.notes:
	default:
		t.Fatal("no notification for unavailable display")
	}
}

func TestCursorSettingsOpensDialogWithSession(t *testing.T) {
	h := newHarness(t)
	h.run(t, Event{Action: ActionCursorSettings})
	if h.ui.edited == nil {
		t.Fatal("cursor dialog not opened")
	}
	if _, err := h.ui.edited.ApplyPreset("disabled"); err != nil {
		t.Fatal(err)
	}
	if h.sess.Cursor().Enabled {
		t.Fatal("dialog store is not the session")
	}
}

func TestCopyFrame(t *testing.T) {
	h := newHarness(t)
	h.run(t, Event{Action: ActionCopyFrame})
	if msg := <-h.notes; msg != "Nothing to copy yet" {
		t.Fatalf("unexpected notification %q", msg)
	}

	h = newHarness(t)
	h.renderer.last = image.NewRGBA(image.Rect(0, 0, 2, 2))
	h.run(t, Event{Action: ActionCopyFrame})
	select {
	case img := <-h.copied:
		if img != h.renderer.last {
			t.Fatal("copied a different image")
		}
	default:
		t.Fatal("frame not copied")
	}
}

func TestRunReturnsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.loop.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}

func TestPostDropsWhenFull(t *testing.T) {
	h := newHarness(t)
	dropped := false
	for i := 0; i < 64; i++ {
		if !h.loop.Post(Event{Action: ActionShowWindow}) {
			dropped = true
			break
		}
	}
	if !dropped {
		t.Fatal("Post never reported a full queue")
	}
}

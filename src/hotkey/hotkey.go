package hotkey

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

var startOnce sync.Once

// Listen starts a global key hook and calls callback each time every key in
// combo (e.g. "Ctrl+Alt+M") is held down together. The hook stops when ctx
// is done. The hook can only be started once per process.
func Listen(ctx context.Context, combo string, callback func()) error {
	m, err := NewMatcher(combo)
	if err != nil {
		return err
	}

	started := false
	startOnce.Do(func() { started = true })
	if !started {
		return fmt.Errorf("hotkey: hook already running")
	}

	evChan := gohook.Start()
	if evChan == nil {
		return fmt.Errorf("hotkey: gohook.Start() returned nil channel")
	}
	log.Printf("Hotkey listener configured for: %s", combo)

	go func() {
		<-ctx.Done()
		gohook.End()
	}()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()
		for ev := range evChan {
			var fired bool
			switch ev.Kind {
			case gohook.KeyDown:
				fired = m.Down(ev.Rawcode)
			case gohook.KeyUp:
				m.Up(ev.Rawcode)
			default:
				continue
			}
			if fired {
				log.Printf("Hotkey activated: %s", combo)
				if callback != nil {
					callback()
				}
			}
		}
		log.Printf("Hotkey event channel closed")
	}()
	return nil
}

// Matcher tracks key state for one combination.
type Matcher struct {
	mu   sync.Mutex
	keys []keyState
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// NewMatcher parses combo. Every key must map to a rawcode.
func NewMatcher(combo string) (*Matcher, error) {
	names := parseHotkey(combo)
	if len(names) == 0 {
		return nil, fmt.Errorf("hotkey: empty combination")
	}
	m := &Matcher{}
	for _, name := range names {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("hotkey: cannot map key %q in %q", name, combo)
		}
		m.keys = append(m.keys, keyState{name: name, rawcodes: codes})
	}
	return m, nil
}

// Down records a key press and reports whether the full combination is now
// held. State resets after a match so holding the keys fires once.
func (m *Matcher) Down(rawcode uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(rawcode, true)
	for i := range m.keys {
		if !m.keys[i].pressed {
			return false
		}
	}
	for i := range m.keys {
		m.keys[i].pressed = false
	}
	return true
}

func (m *Matcher) Up(rawcode uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(rawcode, false)
}

func (m *Matcher) set(rawcode uint16, pressed bool) {
	for i := range m.keys {
		for _, rc := range m.keys[i].rawcodes {
			if rc == rawcode {
				m.keys[i].pressed = pressed
				break
			}
		}
	}
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+m" to normalized key names
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

var namedKeys = map[string][]uint16{
	// Modifiers report left and right variants.
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to Windows virtual key codes.
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if codes, ok := namedKeys[name]; ok {
		return codes
	}
	switch {
	case name == "win" || name == "super":
		return namedKeys["cmd"]
	case len(name) == 1 && name[0] >= 'a' && name[0] <= 'z':
		return []uint16{uint16('A' + name[0] - 'a')}
	case len(name) == 1 && name[0] >= '0' && name[0] <= '9':
		return []uint16{uint16(name[0])}
	case len(name) >= 2 && name[0] == 'f':
		var n int
		if _, err := fmt.Sscanf(name[1:], "%d", &n); err == nil && n >= 1 && n <= 24 && fmt.Sprint(n) == name[1:] {
			return []uint16{uint16(111 + n)} // VK_F1 = 112
		}
	}
	return nil
}

package screenshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"os/exec"
	"sync"
	"time"
)

// ErrOutputUnknown reports that a named output's desktop position could not
// be found.
var ErrOutputUnknown = errors.New("output position unknown")

const outputCacheTTL = 2 * time.Second

// OutputLocator reports the desktop position of a named compositor output.
type OutputLocator func(ctx context.Context, name string) (image.Point, error)

type swayRect struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type swayOutput struct {
	Name   string   `json:"name"`
	Active bool     `json:"active"`
	Rect   swayRect `json:"rect"`
}

// ParseSwayOutputs finds name in the JSON printed by
// "swaymsg -t get_outputs -r".
func ParseSwayOutputs(data []byte, name string) (image.Point, error) {
	var outputs []swayOutput
	if err := json.Unmarshal(data, &outputs); err != nil {
		return image.Point{}, fmt.Errorf("%w: %v", ErrOutputUnknown, err)
	}
	for _, o := range outputs {
		if o.Name == name && o.Active {
			return image.Pt(o.Rect.X, o.Rect.Y), nil
		}
	}
	return image.Point{}, fmt.Errorf("%w: no active output named %q", ErrOutputUnknown, name)
}

// SwayLocator asks swaymsg (or a compatible command) for the output layout.
func SwayLocator(command string) OutputLocator {
	return func(ctx context.Context, name string) (image.Point, error) {
		data, err := exec.CommandContext(ctx, command, "-t", "get_outputs", "-r").Output()
		if err != nil {
			return image.Point{}, fmt.Errorf("%w: %s: %v", ErrOutputUnknown, command, err)
		}
		return ParseSwayOutputs(data, name)
	}
}

type cachedOrigin struct {
	origin image.Point
	err    error
	at     time.Time
}

// originCache remembers lookups, failed ones included, so the render loop does
// not spawn a process every tick.
type originCache struct {
	locate OutputLocator

	mu      sync.Mutex
	entries map[string]cachedOrigin
}

func newOriginCache(locate OutputLocator) *originCache {
	return &originCache{locate: locate, entries: make(map[string]cachedOrigin)}
}

func (c *originCache) origin(ctx context.Context, name string) (image.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[name]; ok && time.Since(e.at) < outputCacheTTL {
		return e.origin, e.err
	}
	origin, err := c.locate(ctx, name)
	if err != nil {
		log.Printf("Output %s: %v", name, err)
	}
	c.entries[name] = cachedOrigin{origin: origin, err: err, at: time.Now()}
	return origin, err
}

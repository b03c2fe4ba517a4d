package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"testing"

	"screen-mirror/src/eventloop"
	"screen-mirror/src/screenshot"
)

func TestIconDecodes(t *testing.T) {
	data, err := Icon()
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("icon is %dx%d, want 32x32", b.Dx(), b.Dy())
	}
}

func TestICOWrapsPNG(t *testing.T) {
	data, err := Icon()
	if err != nil {
		t.Fatal(err)
	}
	ico, err := ICO(data)
	if err != nil {
		t.Fatal(err)
	}
	var dir [3]uint16
	if err := binary.Read(bytes.NewReader(ico[:6]), binary.LittleEndian, &dir); err != nil {
		t.Fatal(err)
	}
	if dir != [3]uint16{0, 1, 1} {
		t.Fatalf("ICONDIR = %v", dir)
	}
	if ico[6] != 32 || ico[7] != 32 {
		t.Fatalf("entry size = %dx%d", ico[6], ico[7])
	}
	size := binary.LittleEndian.Uint32(ico[14:18])
	offset := binary.LittleEndian.Uint32(ico[18:22])
	if int(size) != len(data) || offset != 22 {
		t.Fatalf("size=%d offset=%d", size, offset)
	}
	if !bytes.Equal(ico[22:], data) {
		t.Fatal("payload differs from PNG")
	}
}

func TestICORejectsLargeAndInvalid(t *testing.T) {
	if _, err := ICO([]byte("not a png")); err == nil {
		t.Fatal("expected error for invalid data")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 10))); err != nil {
		t.Fatal(err)
	}
	if _, err := ICO(buf.Bytes()); err == nil {
		t.Fatal("expected error for oversized image")
	}
}

func TestDisplayEntries(t *testing.T) {
	displays := []screenshot.Display{
		{Index: 0, Bounds: image.Rect(0, 0, 1920, 1080)},
		{Index: 1, Bounds: image.Rect(1920, 0, 3840, 1080)},
	}
	entries := DisplayEntries(displays)
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[1].Event != (eventloop.Event{Action: eventloop.ActionSelectDisplay, Display: 1}) {
		t.Fatalf("entry 1 event = %+v", entries[1].Event)
	}
	if entries[1].Label != "Display 2 (1920x1080 at 1920,0)" {
		t.Fatalf("entry 1 label = %q", entries[1].Label)
	}
	if entries[2].Event.Action != eventloop.ActionPickDisplay {
		t.Fatalf("last entry should open the picker, got %v", entries[2].Event.Action)
	}
}

func TestActionEntriesOrder(t *testing.T) {
	entries := ActionEntries()
	if entries[0].Event.Action != eventloop.ActionStart || entries[1].Event.Action != eventloop.ActionStop {
		t.Fatal("start and stop must lead the menu")
	}
	seen := map[eventloop.Action]bool{}
	for _, e := range entries {
		if seen[e.Event.Action] {
			t.Fatalf("duplicate action %v", e.Event.Action)
		}
		seen[e.Event.Action] = true
	}
}

func TestNewRequiresPost(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without Post")
	}
	tr, err := New(Config{Post: func(eventloop.Event) bool { return true }})
	if err != nil {
		t.Fatal(err)
	}
	// Not ready yet: state is only recorded.
	tr.SetRunning(true)
	tr.SetTooltip("mirroring")
	if !tr.running || tr.tooltip != "mirroring" {
		t.Fatalf("state not recorded: running=%v tooltip=%q", tr.running, tr.tooltip)
	}
}

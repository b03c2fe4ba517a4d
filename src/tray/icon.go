package tray

import (
	"bytes"
	_ "embed"
	"encoding/binary"
	"fmt"
	"image/png"
)

//go:embed icon.png
var iconPNG []byte

// Icon returns the embedded tray icon after checking that it decodes.
func Icon() ([]byte, error) {
	if len(iconPNG) == 0 {
		return nil, fmt.Errorf("tray icon is empty")
	}
	if _, err := png.Decode(bytes.NewReader(iconPNG)); err != nil {
		return nil, fmt.Errorf("tray icon is not a valid PNG: %w", err)
	}
	out := make([]byte, len(iconPNG))
	copy(out, iconPNG)
	return out, nil
}

// ICO wraps PNG data in a single-image .ico container. Windows tray icons
// must be ICO; Vista and later accept PNG payloads inside it.
func ICO(data []byte) ([]byte, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ico: %w", err)
	}
	if cfg.Width > 256 || cfg.Height > 256 {
		return nil, fmt.Errorf("ico: image %dx%d exceeds 256x256", cfg.Width, cfg.Height)
	}

	const headerSize = 6 + 16
	var buf bytes.Buffer
	buf.Grow(headerSize + len(data))
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY; 0 encodes 256.
	buf.WriteByte(byte(cfg.Width % 256))
	buf.WriteByte(byte(cfg.Height % 256))
	buf.WriteByte(0)
	buf.WriteByte(0)
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint16{1, 32})
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(len(data)), headerSize})
	buf.Write(data)
	return buf.Bytes(), nil
}

//go:build !windows

package tray

func platformIcon(data []byte) []byte { return data }

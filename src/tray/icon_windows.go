//go:build windows

package tray

import "log"

func platformIcon(data []byte) []byte {
	ico, err := ICO(data)
	if err != nil {
		log.Printf("tray: %v", err)
		return data
	}
	return ico
}

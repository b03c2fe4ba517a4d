package logutil

import "log"

func logf(s string) { log.Print(s) }

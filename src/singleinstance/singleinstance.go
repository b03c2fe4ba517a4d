// Package singleinstance keeps one resident mirror per user session. Later
// launches hand their command to the resident over loopback TCP and exit.
package singleinstance

import (
	"context"
	"fmt"
	"strings"
)

// PortRange is the inclusive range of loopback ports a resident may own.
// The resident binds Start; clients try every port in the range.
type PortRange struct {
	Start int
	End   int
}

// Command is one line of the delegation protocol.
type Command string

const (
	CommandShow   Command = "SHOW"
	CommandStart  Command = "START"
	CommandStop   Command = "STOP"
	CommandToggle Command = "TOGGLE"
	CommandQuit   Command = "QUIT"
)

// ParseCommand accepts the command names case-insensitively.
func ParseCommand(s string) (Command, error) {
	switch c := Command(strings.ToUpper(strings.TrimSpace(s))); c {
	case CommandShow, CommandStart, CommandStop, CommandToggle, CommandQuit:
		return c, nil
	default:
		return "", fmt.Errorf("unknown command %q (want show, start, stop, toggle or quit)", s)
	}
}

// Server owns the TCP endpoint and receives commands from later launches.
type Server interface {
	// Start binds the first port of the configured range. An occupied port
	// means a resident already exists.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn is one delegated command awaiting a reply.
type Conn interface {
	Command() Command
	RespondSuccess() error
	RespondError(msg string) error
	Close() error
}

// Client delegates a command to a resident, if there is one.
type Client interface {
	// Delegate scans the port range. With no resident it returns
	// delegated=false and a nil error.
	Delegate(ctx context.Context, cmd Command) (delegated bool, err error)
}

func NewServer(ports PortRange) Server { return newTcpServer(ports) }

func NewClient(ports PortRange) Client { return newTcpClient(ports) }

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sonorous/internal/server"
	"github.com/desertthunder/sonorous/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionEvent MsgKind = iota
	MsgCallback
)

// eventMsg is the constructor for [MsgSessionEvent]
func eventMsg(ev session.Event) Msg {
	return Msg{kind: MsgSessionEvent, data: ev}
}

// callbackMsg is the constructor for [MsgCallback]
func callbackMsg(cb server.Callback) Msg {
	return Msg{kind: MsgCallback, data: cb}
}

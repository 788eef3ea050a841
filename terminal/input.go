package terminal

import (
	"github.com/gdamore/tcell/v2"
)

// Command is a host action decoded from a terminal event
type Command int

const (
	CmdNone Command = iota
	CmdScrollUp
	CmdScrollDown
	CmdPageUp
	CmdPageDown
	CmdHome
	CmdEnd
	CmdToggleAutoplay
	CmdResize
	CmdQuit
)

var commandNames = [...]string{
	CmdNone:           "none",
	CmdScrollUp:       "scroll-up",
	CmdScrollDown:     "scroll-down",
	CmdPageUp:         "page-up",
	CmdPageDown:       "page-down",
	CmdHome:           "home",
	CmdEnd:            "end",
	CmdToggleAutoplay: "autoplay",
	CmdResize:         "resize",
	CmdQuit:           "quit",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// Translate maps keys, wheel and resize events onto commands
func Translate(ev tcell.Event) Command {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return translateKey(ev)
	case *tcell.EventMouse:
		btn := ev.Buttons()
		switch {
		case btn&tcell.WheelUp != 0:
			return CmdScrollUp
		case btn&tcell.WheelDown != 0:
			return CmdScrollDown
		}
	case *tcell.EventResize:
		return CmdResize
	}
	return CmdNone
}

func translateKey(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit
	case tcell.KeyUp:
		return CmdScrollUp
	case tcell.KeyDown:
		return CmdScrollDown
	case tcell.KeyPgUp:
		return CmdPageUp
	case tcell.KeyPgDn:
		return CmdPageDown
	case tcell.KeyHome:
		return CmdHome
	case tcell.KeyEnd:
		return CmdEnd
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return CmdQuit
		case 'k':
			return CmdScrollUp
		case 'j', ' ':
			return CmdScrollDown
		case 'g':
			return CmdHome
		case 'G':
			return CmdEnd
		case 'a':
			return CmdToggleAutoplay
		}
	}
	return CmdNone
}

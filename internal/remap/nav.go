package remap

import (
	evdev "github.com/holoplot/go-evdev"

	"github.com/oddtangent/keyjoyd/internal/vjoy"
)

// Nav is a unified previous/next/confirm/cancel signal. Keyboard edges
// and the auxiliary joystick's polled axis both reduce to it, so the
// review and browse consumers never care which device drove them.
type Nav int

const (
	NavNone Nav = iota
	NavPrev
	NavNext
	NavConfirm
	NavCancel
)

// keyNav is the keyboard adapter.
func keyNav(code evdev.EvCode) Nav {
	switch code {
	case evdev.KEY_UP:
		return NavPrev
	case evdev.KEY_DOWN:
		return NavNext
	case evdev.KEY_ENTER:
		return NavConfirm
	case evdev.KEY_ESC:
		return NavCancel
	default:
		return NavNone
	}
}

// navThreshold is how far past center the Y axis must travel before a
// navigation edge fires.
const navThreshold = 50

// joyNav is the joystick adapter. An edge fires only when the axis
// crosses the threshold, not on every poll past it.
type joyNav struct {
	prevY int
}

func (n *joyNav) feed(ev evdev.InputEvent) Nav {
	switch {
	case ev.Type == evdev.EV_ABS && ev.Code == evdev.ABS_Y:
		delta := int(ev.Value) - vjoy.AxisCenter
		cur := 0
		if delta < -navThreshold {
			cur = -1
		} else if delta > navThreshold {
			cur = 1
		}
		if cur == n.prevY {
			return NavNone
		}
		n.prevY = cur
		switch cur {
		case -1:
			return NavPrev
		case 1:
			return NavNext
		}
	case ev.Type == evdev.EV_KEY && ev.Code == evdev.BTN_TRIGGER && ev.Value == 1:
		return NavConfirm
	}
	return NavNone
}

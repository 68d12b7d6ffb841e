package device

import (
	"log"

	evdev "github.com/holoplot/go-evdev"
)

// A node counts as a keyboard when it reports key events for both
// reference alphabetic keys. This rejects power buttons, headsets and
// other EV_KEY-capable non-keyboards.
func isKeyboard(dev *evdev.InputDevice) bool {
	hasQ, hasA := false, false
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch code {
		case evdev.KEY_Q:
			hasQ = true
		case evdev.KEY_A:
			hasA = true
		}
	}
	return hasQ && hasA
}

// A navigation joystick reports both principal absolute axes and a
// trigger-class button.
func isNavJoystick(dev *evdev.InputDevice) bool {
	hasX, hasY := false, false
	for _, code := range dev.CapableEvents(evdev.EV_ABS) {
		switch code {
		case evdev.ABS_X:
			hasX = true
		case evdev.ABS_Y:
			hasY = true
		}
	}
	if !hasX || !hasY {
		return false
	}
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		if code == evdev.BTN_TRIGGER {
			return true
		}
	}
	return false
}

// ScanKeyboards enumerates input nodes and opens every device that
// classifies as a keyboard. Nodes that fail to open or classify are
// skipped. An empty result is not an error here; the caller decides
// whether it is fatal.
func ScanKeyboards() []*Keyboard {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		log.Printf("list input devices: %v", err)
		return nil
	}

	var kbds []*Keyboard
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		if !isKeyboard(dev) {
			dev.Close()
			continue
		}
		name, err := dev.Name()
		if err != nil {
			name = "unknown"
		}
		log.Printf("found keyboard: %s (%s)", name, p.Path)
		kbds = append(kbds, &Keyboard{dev: dev, path: p.Path, name: name})
	}
	return kbds
}

// ScanNavJoystick returns the first input node that classifies as a
// navigation joystick and is not the virtual device itself (matched by
// reported name, to avoid a feedback loop). Absence just disables
// joystick navigation.
func ScanNavJoystick(excludeName string) (*NavJoystick, bool) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, false
	}

	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		if !isNavJoystick(dev) {
			dev.Close()
			continue
		}
		name, err := dev.Name()
		if err != nil {
			name = "unknown"
		}
		if name == excludeName {
			dev.Close()
			continue
		}
		log.Printf("found joystick for nav: %s (%s)", name, p.Path)
		return &NavJoystick{dev: dev, name: name}, true
	}
	return nil, false
}

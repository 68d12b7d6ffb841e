// Package device discovers physical input nodes and classifies them by
// capability: keyboards (grabbed and translated) and an optional
// navigation joystick (consulted only while the remap UI is open).
package device

import (
	"context"
	"log"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

// KeyEvent is a single press or release edge from a grabbed keyboard.
// Autorepeat is dropped at the source. Time is the kernel timestamp of
// the transition, which predates delivery for events that sat in the
// device's buffer.
type KeyEvent struct {
	Code    evdev.EvCode
	Pressed bool
	Time    time.Time
}

// Keyboard is an open connection to one physical keyboard.
type Keyboard struct {
	dev     *evdev.InputDevice
	path    string
	name    string
	grabbed bool
}

// Name returns the device's reported name.
func (k *Keyboard) Name() string { return k.name }

// Grab claims exclusive delivery of this keyboard's events.
func (k *Keyboard) Grab() error {
	if err := k.dev.Grab(); err != nil {
		return err
	}
	k.grabbed = true
	return nil
}

// Ungrab releases the exclusive claim. Safe to call when not grabbed.
func (k *Keyboard) Ungrab() error {
	if !k.grabbed {
		return nil
	}
	k.grabbed = false
	return k.dev.Ungrab()
}

// Start launches a reader goroutine forwarding key transitions into ch.
// The goroutine exits when the device becomes unreadable (the keyboard
// is then inert, others are unaffected) or when the device is closed.
func (k *Keyboard) Start(ctx context.Context, ch chan<- KeyEvent) {
	go func() {
		for {
			ev, err := k.dev.ReadOne()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("keyboard %s (%s) unreadable, dropping: %v", k.name, k.path, err)
				}
				return
			}
			if ev.Type != evdev.EV_KEY || ev.Value == 2 {
				continue
			}
			stamp := time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*1000)
			select {
			case ch <- KeyEvent{Code: ev.Code, Pressed: ev.Value == 1, Time: stamp}:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close releases the device node. The exclusive grab, if any, dies with
// the file descriptor.
func (k *Keyboard) Close() error {
	k.grabbed = false
	return k.dev.Close()
}

// NavJoystick is an auxiliary physical joystick used only to navigate
// the remap UI.
type NavJoystick struct {
	dev  *evdev.InputDevice
	name string
}

// Name returns the device's reported name.
func (j *NavJoystick) Name() string { return j.name }

// Start forwards raw events into ch until the device errors or the
// context ends.
func (j *NavJoystick) Start(ctx context.Context, ch chan<- evdev.InputEvent) {
	go func() {
		for {
			ev, err := j.dev.ReadOne()
			if err != nil {
				return
			}
			select {
			case ch <- *ev:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close releases the device node.
func (j *NavJoystick) Close() error { return j.dev.Close() }

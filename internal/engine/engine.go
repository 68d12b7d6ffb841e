// Package engine runs the always-on translation loop: key transitions
// from grabbed keyboards become virtual joystick button and axis
// events. The engine is ACTIVE or SUSPENDED; keyboards are grabbed
// exactly while it is ACTIVE.
package engine

import (
	"context"
	"log"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/oddtangent/keyjoyd/internal/device"
	"github.com/oddtangent/keyjoyd/internal/mapping"
	"github.com/oddtangent/keyjoyd/internal/vjoy"
)

// Output is the virtual joystick surface the engine drives.
type Output interface {
	Button(i int, pressed bool) error
	Axes(x, y int32) error
	Neutral() error
}

// Keyboard is one grabbed physical keyboard.
type Keyboard interface {
	Name() string
	Grab() error
	Ungrab() error
	Start(ctx context.Context, ch chan<- device.KeyEvent)
}

// Reason tells the caller why Run returned.
type Reason int

const (
	// Shutdown means the context was cancelled.
	Shutdown Reason = iota
	// Remap means Ctrl+R was pressed; the caller should run a remap
	// session and then start a fresh engine.
	Remap
)

// Engine owns the held-direction set and the suspend state for one
// activation. It is not reused across remap sessions; the caller
// re-scans keyboards and builds a new one.
type Engine struct {
	out       Output
	table     *mapping.Table
	keyboards []Keyboard

	events      chan device.KeyEvent
	activeSince time.Time
	held        [mapping.NumDirections]bool
	ctrlHeld    bool
	suspended   bool
	axisDirty   bool
}

// New builds an engine over the given keyboards.
func New(out Output, table *mapping.Table, keyboards []Keyboard) *Engine {
	return &Engine{
		out:       out,
		table:     table,
		keyboards: keyboards,
		events:    make(chan device.KeyEvent, 256),
	}
}

// Run grabs the keyboards, drains buffered events and translates until
// the context ends or a remap is requested. Whatever the exit reason,
// outputs are neutralized before every keyboard is released: no path
// leaves a keyboard grabbed or a virtual input stuck.
func (e *Engine) Run(ctx context.Context) Reason {
	e.activeSince = time.Now()
	e.grabAll()
	for _, kb := range e.keyboards {
		kb.Start(ctx, e.events)
	}
	e.drain()

	defer func() {
		if err := e.out.Neutral(); err != nil {
			log.Printf("neutralize outputs: %v", err)
		}
		e.ungrabAll()
	}()

	for {
		select {
		case <-ctx.Done():
			return Shutdown
		case ev := <-e.events:
			if e.handle(ev) {
				return Remap
			}
			// Coalesce the rest of the burst into one axis pass.
		burst:
			for {
				select {
				case <-ctx.Done():
					return Shutdown
				case ev := <-e.events:
					if e.handle(ev) {
						return Remap
					}
				default:
					break burst
				}
			}
			if e.axisDirty {
				e.axisDirty = false
				e.emitAxes()
			}
		}
	}
}

// handle processes one key transition and reports whether a remap was
// requested.
func (e *Engine) handle(ev device.KeyEvent) bool {
	// A transition stamped before this activation was buffered in the
	// device while the keyboard sat ungrabbed. The readers race the
	// channel drain, so staleness is decided on the kernel timestamp,
	// not on delivery order.
	if ev.Time.Before(e.activeSince) {
		return false
	}

	// The physical Control keys are tracked, never forwarded.
	if ev.Code == evdev.KEY_LEFTCTRL || ev.Code == evdev.KEY_RIGHTCTRL {
		e.ctrlHeld = ev.Pressed
		return false
	}

	// Hotkeys are consumed even if the key is also mapped.
	if e.ctrlHeld && ev.Pressed {
		switch ev.Code {
		case evdev.KEY_S:
			e.toggleSuspend()
			return false
		case evdev.KEY_R:
			return true
		}
	}

	if e.suspended {
		return false
	}

	for i := 0; i < mapping.NumDirections; i++ {
		if e.table.Entry(i).Key == ev.Code && e.held[i] != ev.Pressed {
			e.held[i] = ev.Pressed
			e.axisDirty = true
		}
	}
	for i := mapping.NumDirections; i < mapping.NumEntries; i++ {
		ent := e.table.Entry(i)
		if ent.Key == ev.Code {
			if err := e.out.Button(ent.Button, ev.Pressed); err != nil {
				log.Printf("emit button %s: %v", ent.Label, err)
			}
		}
	}
	return false
}

func (e *Engine) toggleSuspend() {
	if !e.suspended {
		if err := e.out.Neutral(); err != nil {
			log.Printf("neutralize outputs: %v", err)
		}
		e.held = [mapping.NumDirections]bool{}
		e.axisDirty = false
		e.ungrabAll()
		e.suspended = true
		log.Println("translation paused (Ctrl+S to resume)")
		return
	}
	e.grabAll()
	e.drain()
	e.suspended = false
	e.ctrlHeld = false
	log.Println("translation resumed (Ctrl+S to pause)")
}

func (e *Engine) emitAxes() {
	dx, dy := e.table.Vector(e.held)
	x, y := vjoy.AxisPair(dx, dy)
	if err := e.out.Axes(x, y); err != nil {
		log.Printf("emit axes: %v", err)
	}
}

// grabAll claims every keyboard. A grab failure is logged and that
// device keeps feeding events unexclusively; losing one keyboard is
// not worth losing them all.
func (e *Engine) grabAll() {
	for _, kb := range e.keyboards {
		if err := kb.Grab(); err != nil {
			log.Printf("warning: failed to grab %s: %v", kb.Name(), err)
		}
	}
}

func (e *Engine) ungrabAll() {
	for _, kb := range e.keyboards {
		if err := kb.Ungrab(); err != nil {
			log.Printf("warning: failed to release %s: %v", kb.Name(), err)
		}
	}
}

// drain sheds whatever already accumulated on the event channel. The
// readers race this, so it is only a shortcut; the timestamp check in
// handle is what actually keeps pre-activation transitions out.
func (e *Engine) drain() {
	for {
		select {
		case <-e.events:
		default:
			return
		}
	}
}

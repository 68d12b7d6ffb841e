// Package remap implements the on-screen remapping session: capture a
// key for every mapping entry, review and correct the result, then
// apply it, discard it, or export it as a launch script.
package remap

import (
	"context"
	"image/color"
	"log"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/oddtangent/keyjoyd/internal/device"
	"github.com/oddtangent/keyjoyd/internal/mapping"
)

// Surface is the drawing target for the session screens.
type Surface interface {
	Size() (int, int)
	Clear(c color.RGBA)
	FillRect(x, y, w, h int, c color.RGBA)
	FillCircle(cx, cy, r int, c color.RGBA)
	FillTriangle(x0, y0, x1, y1, x2, y2 int, c color.RGBA)
	Text(x, y int, s string, c color.RGBA)
	TextCenter(cx, y int, s string, c color.RGBA)
	Present() error
}

type state int

const (
	stateCapture state = iota
	stateReview
	stateBrowse
)

// Review rows: the mapping entries first, then the three actions.
const (
	rowApply   = mapping.NumEntries
	rowQuit    = mapping.NumEntries + 1
	rowSave    = mapping.NumEntries + 2
	reviewRows = mapping.NumEntries + 3
)

// Options sets the session cadence and where exports start.
type Options struct {
	Frame      time.Duration
	Blink      time.Duration
	Debounce   time.Duration
	ExportRoot string
}

// Session owns the remap UI state machine. All mutation happens on the
// Run goroutine; input arrives over channels.
type Session struct {
	table *mapping.Table
	surf  Surface
	keys  <-chan device.KeyEvent
	joy   <-chan evdev.InputEvent
	opts  Options

	st       state
	slot     int
	redoSlot int
	cursor   int
	browser  *browser
	jnav     joyNav

	mapped        [mapping.NumEntries]bool
	savedPath     string
	blinkOn       bool
	nextBlink     time.Time
	debounceUntil time.Time
	applied       bool
	done          bool
}

// New builds a session over the given table. joy may be nil when no
// navigation joystick is present.
func New(table *mapping.Table, surf Surface, keys <-chan device.KeyEvent, joy <-chan evdev.InputEvent, opts Options) *Session {
	return &Session{
		table:    table,
		surf:     surf,
		keys:     keys,
		joy:      joy,
		opts:     opts,
		st:       stateCapture,
		redoSlot: -1,
		blinkOn:  true,
	}
}

// Run drives the session until it ends and reports whether the new
// bindings were applied. On quit or cancellation the table is restored
// to its state at entry; the screen is cleared either way.
func (s *Session) Run(ctx context.Context) bool {
	snap := s.table.Snapshot()
	s.nextBlink = time.Now().Add(s.opts.Blink)

	ticker := time.NewTicker(s.opts.Frame)
	defer ticker.Stop()

	for !s.done {
		select {
		case <-ctx.Done():
			s.done = true
		case now := <-ticker.C:
			if now.After(s.nextBlink) {
				s.blinkOn = !s.blinkOn
				s.nextBlink = now.Add(s.opts.Blink)
			}
			s.step(now)
			if s.done {
				break
			}
			s.render()
			if err := s.surf.Present(); err != nil {
				log.Printf("present: %v", err)
			}
		}
	}

	if !s.applied {
		s.table.Restore(snap)
	}
	s.surf.Clear(colBlack)
	s.surf.Present()
	return s.applied
}

// step consumes everything queued since the last frame.
func (s *Session) step(now time.Time) {
	for !s.done {
		select {
		case ev := <-s.keys:
			if !ev.Pressed || now.Before(s.debounceUntil) {
				continue
			}
			s.handleKey(ev.Code, now)
		case ev := <-s.joy:
			if nav := s.jnav.feed(ev); nav != NavNone {
				s.handleNav(nav)
			}
		default:
			return
		}
	}
}

func (s *Session) handleKey(code evdev.EvCode, now time.Time) {
	if s.st == stateCapture {
		s.bind(code, now)
		return
	}
	if nav := keyNav(code); nav != NavNone {
		s.handleNav(nav)
		return
	}
	switch s.st {
	case stateReview:
		switch code {
		case evdev.KEY_SPACE:
			s.confirmReview()
		case evdev.KEY_1:
			if s.cursor < mapping.NumEntries {
				s.startRedo(s.cursor)
			}
		case evdev.KEY_A:
			s.applied = true
			s.done = true
		case evdev.KEY_Q:
			s.done = true
		case evdev.KEY_S:
			s.enterBrowse()
		}
	case stateBrowse:
		switch code {
		case evdev.KEY_LEFT, evdev.KEY_BACKSPACE:
			s.browser.ascend()
		case evdev.KEY_Q:
			s.st = stateReview
			s.drainKeys()
		}
	}
}

func (s *Session) handleNav(nav Nav) {
	switch s.st {
	case stateReview:
		switch nav {
		case NavPrev:
			s.moveCursor(-1)
		case NavNext:
			s.moveCursor(1)
		case NavConfirm:
			s.confirmReview()
		case NavCancel:
			s.done = true
		}
	case stateBrowse:
		switch nav {
		case NavPrev:
			s.browser.move(-1, s.browseVisible())
		case NavNext:
			s.browser.move(1, s.browseVisible())
		case NavConfirm:
			s.confirmBrowse()
		case NavCancel:
			s.st = stateReview
			s.drainKeys()
		}
	}
}

// bind assigns the pressed key to the active slot and opens the
// debounce window so switch bounce cannot claim the next slot too.
func (s *Session) bind(code evdev.EvCode, now time.Time) {
	s.table.SetKey(s.slot, code)
	s.mapped[s.slot] = true
	s.debounceUntil = now.Add(s.opts.Debounce)

	if s.redoSlot >= 0 {
		s.redoSlot = -1
		s.st = stateReview
		return
	}
	s.slot++
	if s.slot >= mapping.NumEntries {
		s.st = stateReview
		s.cursor = 0
	}
}

func (s *Session) moveCursor(delta int) {
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor >= reviewRows {
		s.cursor = reviewRows - 1
	}
}

func (s *Session) confirmReview() {
	switch {
	case s.cursor < mapping.NumEntries:
		s.startRedo(s.cursor)
	case s.cursor == rowApply:
		s.applied = true
		s.done = true
	case s.cursor == rowQuit:
		s.done = true
	case s.cursor == rowSave:
		s.enterBrowse()
	}
}

// startRedo reopens capture for a single entry; binding it returns
// straight to review.
func (s *Session) startRedo(slot int) {
	s.redoSlot = slot
	s.slot = slot
	s.st = stateCapture
	s.drainKeys()
}

func (s *Session) enterBrowse() {
	root := s.opts.ExportRoot
	if root == "" {
		root = "/"
	}
	s.browser = newBrowser(root)
	s.st = stateBrowse
	s.drainKeys()
}

func (s *Session) confirmBrowse() {
	e := s.browser.current()
	switch {
	case e.name == exportLabel:
		path, err := s.table.WriteScript(s.browser.path)
		if err != nil {
			log.Printf("export script: %v", err)
		} else {
			s.savedPath = path
		}
		s.st = stateReview
		s.drainKeys()
	case e.name == parentLabel:
		s.browser.ascend()
	default:
		s.browser.descend(e.name)
	}
}

// drainKeys discards keystrokes queued before a screen transition so
// they cannot act on the screen they were not typed at.
func (s *Session) drainKeys() {
	for {
		select {
		case <-s.keys:
		default:
			return
		}
	}
}

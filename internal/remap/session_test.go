package remap

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/oddtangent/keyjoyd/internal/device"
	"github.com/oddtangent/keyjoyd/internal/mapping"
)

type nopSurface struct{}

func (nopSurface) Size() (int, int)                                      { return 1280, 720 }
func (nopSurface) Clear(color.RGBA)                                      {}
func (nopSurface) FillRect(x, y, w, h int, c color.RGBA)                 {}
func (nopSurface) FillCircle(cx, cy, r int, c color.RGBA)                {}
func (nopSurface) FillTriangle(x0, y0, x1, y1, x2, y2 int, c color.RGBA) {}
func (nopSurface) Text(x, y int, s string, c color.RGBA)                 {}
func (nopSurface) TextCenter(cx, y int, s string, c color.RGBA)          {}
func (nopSurface) Present() error                                        { return nil }

func testOptions(root string) Options {
	return Options{
		Frame:      time.Millisecond,
		Blink:      10 * time.Millisecond,
		Debounce:   30 * time.Millisecond,
		ExportRoot: root,
	}
}

// driver runs a session in the background and types at it. The pauses
// between keystrokes outlast the debounce window so every deliberate
// press lands.
type driver struct {
	t    *testing.T
	keys chan device.KeyEvent
	done chan bool
}

func startSession(t *testing.T, s *Session, keys chan device.KeyEvent) *driver {
	t.Helper()
	d := &driver{t: t, keys: keys, done: make(chan bool, 1)}
	go func() { d.done <- s.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	return d
}

func (d *driver) press(code evdev.EvCode) {
	d.keys <- device.KeyEvent{Code: code, Pressed: true}
	d.keys <- device.KeyEvent{Code: code}
	time.Sleep(60 * time.Millisecond)
}

// burst sends presses back to back with no settling pause.
func (d *driver) burst(codes ...evdev.EvCode) {
	for _, code := range codes {
		d.keys <- device.KeyEvent{Code: code, Pressed: true}
	}
	time.Sleep(60 * time.Millisecond)
}

func (d *driver) wait() bool {
	d.t.Helper()
	select {
	case applied := <-d.done:
		return applied
	case <-time.After(5 * time.Second):
		d.t.Fatal("session did not finish")
		return false
	}
}

func newTestSession(t *testing.T, root string) (*Session, *mapping.Table, chan device.KeyEvent) {
	t.Helper()
	table := mapping.NewTable()
	keys := make(chan device.KeyEvent, 64)
	s := New(table, nopSurface{}, keys, nil, testOptions(root))
	return s, table, keys
}

func TestQuitRestoresBindings(t *testing.T) {
	s, table, keys := newTestSession(t, t.TempDir())
	s.st = stateReview

	d := startSession(t, s, keys)
	d.press(evdev.KEY_ENTER) // reopen capture for the selected entry
	d.press(evdev.KEY_B)     // rebind it
	d.press(evdev.KEY_Q)     // quit without applying

	if d.wait() {
		t.Fatal("quit reported applied")
	}
	if got := table.Entry(0).Key; got != evdev.KEY_W {
		t.Fatalf("entry 0 = %s after quit, want default w", mapping.KeyName(got))
	}
}

func TestApplyKeepsBindings(t *testing.T) {
	s, table, keys := newTestSession(t, t.TempDir())
	s.st = stateReview

	d := startSession(t, s, keys)
	d.press(evdev.KEY_ENTER)
	d.press(evdev.KEY_B)
	d.press(evdev.KEY_A)

	if !d.wait() {
		t.Fatal("apply reported not applied")
	}
	if got := table.Entry(0).Key; got != evdev.KEY_B {
		t.Fatalf("entry 0 = %s after apply, want b", mapping.KeyName(got))
	}
	for i := 1; i < mapping.NumEntries; i++ {
		e := table.Entry(i)
		if e.Key != e.Default {
			t.Fatalf("entry %d changed to %s", i, mapping.KeyName(e.Key))
		}
	}
}

func TestDebounceBindsExactlyOne(t *testing.T) {
	s, table, keys := newTestSession(t, t.TempDir())
	s.st = stateReview

	d := startSession(t, s, keys)
	d.press(evdev.KEY_ENTER)
	// A bouncing switch: one deliberate press followed by spurious
	// make edges inside the debounce window.
	d.burst(evdev.KEY_B, evdev.KEY_N, evdev.KEY_M)
	d.press(evdev.KEY_A)

	if !d.wait() {
		t.Fatal("apply reported not applied")
	}
	if got := table.Entry(0).Key; got != evdev.KEY_B {
		t.Fatalf("entry 0 = %s, want b", mapping.KeyName(got))
	}
	if got := table.Entry(1).Key; got != evdev.KEY_X {
		t.Fatalf("entry 1 = %s, bounce claimed a slot", mapping.KeyName(got))
	}
}

func TestCaptureAllSixteenThenApply(t *testing.T) {
	s, table, keys := newTestSession(t, t.TempDir())

	codes := []evdev.EvCode{
		evdev.KEY_T, evdev.KEY_G, evdev.KEY_F, evdev.KEY_H,
		evdev.KEY_R, evdev.KEY_Y, evdev.KEY_V, evdev.KEY_N,
		evdev.KEY_1, evdev.KEY_2, evdev.KEY_3, evdev.KEY_4,
		evdev.KEY_5, evdev.KEY_6, evdev.KEY_F1, evdev.KEY_F2,
	}

	d := startSession(t, s, keys)
	for _, code := range codes {
		d.press(code)
	}
	d.press(evdev.KEY_A) // review opens on Apply

	if !d.wait() {
		t.Fatal("apply reported not applied")
	}
	for i, want := range codes {
		if got := table.Entry(i).Key; got != want {
			t.Fatalf("entry %d = %s, want %s",
				i, mapping.KeyName(got), mapping.KeyName(want))
		}
	}
}

func TestReleasesDoNotBind(t *testing.T) {
	s, table, keys := newTestSession(t, t.TempDir())
	s.st = stateReview

	d := startSession(t, s, keys)
	d.press(evdev.KEY_ENTER)
	keys <- device.KeyEvent{Code: evdev.KEY_N} // release only
	time.Sleep(60 * time.Millisecond)
	d.press(evdev.KEY_B)
	d.press(evdev.KEY_A)

	if !d.wait() {
		t.Fatal("apply reported not applied")
	}
	if got := table.Entry(0).Key; got != evdev.KEY_B {
		t.Fatalf("entry 0 = %s, want b", mapping.KeyName(got))
	}
}

func TestExportFromReview(t *testing.T) {
	root := t.TempDir()
	s, table, keys := newTestSession(t, root)
	s.st = stateReview

	d := startSession(t, s, keys)
	d.press(evdev.KEY_S)    // open the directory browser at root
	d.press(evdev.KEY_DOWN) // past ".."
	d.press(evdev.KEY_DOWN) // onto the export row
	d.press(evdev.KEY_ENTER)
	d.press(evdev.KEY_Q) // back in review, quit

	if d.wait() {
		t.Fatal("quit reported applied")
	}

	path := filepath.Join(root, mapping.ScriptName)
	if s.savedPath != path {
		t.Fatalf("savedPath = %q, want %q", s.savedPath, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("exported script: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("script mode = %o, want 755", info.Mode().Perm())
	}
	// Export is independent of apply: quitting afterwards still
	// restored the in-memory table.
	if got := table.Entry(0).Key; got != evdev.KEY_W {
		t.Fatalf("entry 0 = %s after quit", mapping.KeyName(got))
	}
}

func TestBrowseDescendsIntoSubdir(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "games"), 0o755); err != nil {
		t.Fatal(err)
	}
	s, _, keys := newTestSession(t, root)
	s.st = stateReview

	d := startSession(t, s, keys)
	d.press(evdev.KEY_S)
	d.press(evdev.KEY_DOWN) // ".." -> "games"
	d.press(evdev.KEY_ENTER)
	d.press(evdev.KEY_DOWN) // ".." -> export row
	d.press(evdev.KEY_ENTER)
	d.press(evdev.KEY_Q)
	d.wait()

	path := filepath.Join(root, "games", mapping.ScriptName)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("script not written into subdir: %v", err)
	}
}

func TestEscapeQuitsReview(t *testing.T) {
	s, table, keys := newTestSession(t, t.TempDir())
	s.st = stateReview

	d := startSession(t, s, keys)
	d.press(evdev.KEY_ENTER)
	d.press(evdev.KEY_B)
	d.press(evdev.KEY_ESC)

	if d.wait() {
		t.Fatal("escape reported applied")
	}
	if got := table.Entry(0).Key; got != evdev.KEY_W {
		t.Fatalf("entry 0 = %s after escape", mapping.KeyName(got))
	}
}

func TestJoystickNavigatesReview(t *testing.T) {
	table := mapping.NewTable()
	keys := make(chan device.KeyEvent, 64)
	joy := make(chan evdev.InputEvent, 64)
	s := New(table, nopSurface{}, keys, joy, testOptions(t.TempDir()))
	s.st = stateReview
	s.cursor = rowApply - 1

	d := startSession(t, s, keys)
	joy <- absY(200) // down edge: move onto Apply
	joy <- absY(127)
	time.Sleep(60 * time.Millisecond)
	joy <- evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.BTN_TRIGGER, Value: 1}

	if !d.wait() {
		t.Fatal("trigger on Apply did not apply")
	}
}

func TestContextCancelRestores(t *testing.T) {
	table := mapping.NewTable()
	keys := make(chan device.KeyEvent, 64)
	s := New(table, nopSurface{}, keys, nil, testOptions(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	keys <- device.KeyEvent{Code: evdev.KEY_B, Pressed: true}
	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case applied := <-done:
		if applied {
			t.Fatal("cancelled session reported applied")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop on cancel")
	}
	if got := table.Entry(0).Key; got != evdev.KEY_W {
		t.Fatalf("entry 0 = %s after cancel", mapping.KeyName(got))
	}
}

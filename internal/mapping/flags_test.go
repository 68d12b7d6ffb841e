package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/spf13/pflag"
)

func newFlagSet(tbl *Table) *pflag.FlagSet {
	fs := pflag.NewFlagSet("keyjoyd", pflag.ContinueOnError)
	tbl.RegisterFlags(fs)
	return fs
}

func TestApplyFlags(t *testing.T) {
	tbl := NewTable()
	fs := newFlagSet(tbl)

	if err := fs.Parse([]string{"--up", "kp8", "--leftfire", "lshift"}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyFlags(fs); err != nil {
		t.Fatal(err)
	}
	if got := tbl.Entry(0).Key; got != evdev.KEY_KP8 {
		t.Errorf("up = %d, want KEY_KP8", got)
	}
	if got := tbl.Entry(8).Key; got != evdev.KEY_LEFTSHIFT {
		t.Errorf("leftfire = %d, want KEY_LEFTSHIFT", got)
	}
	// Untouched entries stay at defaults.
	if got := tbl.Entry(1).Key; got != evdev.KEY_X {
		t.Errorf("down = %d, want default KEY_X", got)
	}
}

func TestApplyFlagsUnknownToken(t *testing.T) {
	tbl := NewTable()
	fs := newFlagSet(tbl)
	if err := fs.Parse([]string{"--menu1", "warpdrive"}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyFlags(fs); err == nil {
		t.Fatal("unknown key token accepted")
	}
}

func TestParseUnknownFlag(t *testing.T) {
	tbl := NewTable()
	fs := newFlagSet(tbl)
	fs.SetOutput(&strings.Builder{})
	if err := fs.Parse([]string{"--turbo", "x"}); err == nil {
		t.Fatal("unknown flag accepted")
	}
}

// An exported script, reparsed through the CLI parser, must reproduce
// the exact table that was active at export time.
func TestScriptRoundTrip(t *testing.T) {
	tbl := NewTable()
	tbl.SetKey(0, evdev.KEY_UP)
	tbl.SetKey(3, evdev.KEY_RIGHT)
	tbl.SetKey(8, evdev.KEY_RIGHTCTRL)
	tbl.SetKey(15, evdev.KEY_F12)

	dir := t.TempDir()
	path, err := tbl.WriteScript(dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, ScriptName) {
		t.Errorf("script path = %q", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Errorf("script is not executable: %v", info.Mode())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "#!/bin/sh" {
		t.Fatalf("missing shebang, got %q", lines[0])
	}

	// Re-tokenize the exec line into argv and feed it back through the
	// flag parser.
	cmd := strings.Join(lines[1:], " ")
	cmd = strings.ReplaceAll(cmd, "\\", " ")
	args := strings.Fields(cmd)
	if len(args) < 2 || args[0] != "exec" {
		t.Fatalf("unexpected script body: %q", cmd)
	}

	fresh := NewTable()
	fs := newFlagSet(fresh)
	if err := fs.Parse(args[2:]); err != nil {
		t.Fatal(err)
	}
	if err := fresh.ApplyFlags(fs); err != nil {
		t.Fatal(err)
	}
	if fresh.Snapshot() != tbl.Snapshot() {
		t.Fatalf("round trip mismatch:\n got %v\nwant %v", fresh.Snapshot(), tbl.Snapshot())
	}
}

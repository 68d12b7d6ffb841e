package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"
	"github.com/spf13/pflag"

	"github.com/oddtangent/keyjoyd/internal/companion"
	"github.com/oddtangent/keyjoyd/internal/config"
	"github.com/oddtangent/keyjoyd/internal/device"
	"github.com/oddtangent/keyjoyd/internal/engine"
	"github.com/oddtangent/keyjoyd/internal/fbdev"
	"github.com/oddtangent/keyjoyd/internal/mapping"
	"github.com/oddtangent/keyjoyd/internal/remap"
	"github.com/oddtangent/keyjoyd/internal/vjoy"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	table := mapping.NewTable()

	fs := pflag.NewFlagSet("keyjoyd", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { printUsage(table) }
	help := fs.BoolP("help", "h", false, "show this help with current configuration")
	guimap := fs.Bool("guimap", false, "interactive framebuffer mapping mode")
	table.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	if err := table.ApplyFlags(fs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run with --help for a list of key names")
		return 1
	}
	if *help {
		printUsage(table)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	if *guimap {
		return runGuimap(ctx, cfg, table)
	}
	return runTranslate(ctx, cfg, table)
}

// runTranslate is the daemon proper: grab keyboards, create the virtual
// joystick and translate until shutdown, detouring through a remap
// session whenever the engine reports Ctrl+R.
func runTranslate(ctx context.Context, cfg config.Config, table *mapping.Table) int {
	kbds := device.ScanKeyboards()
	if len(kbds) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no USB keyboards found")
		return 1
	}
	log.Printf("found %d keyboard(s)", len(kbds))

	joy, err := vjoy.Create()
	if err != nil {
		log.Printf("create virtual joystick: %v", err)
		closeKeyboards(&kbds)
		return 1
	}
	defer joy.Close()
	defer closeKeyboards(&kbds)

	// Give the kernel and any listeners time to register the new node
	// before the first events land on it.
	time.Sleep(cfg.SettleDelay)

	comp := companion.New(cfg.CompanionCmd)

	logBindings("active key mappings", table)
	log.Println("Ctrl+S pauses/resumes, Ctrl+R remaps, Ctrl+C stops")

	for {
		eng := engine.New(joy, table, engineKeyboards(kbds))
		if eng.Run(ctx) == engine.Shutdown {
			return 0
		}

		// Ctrl+R: the session needs the screen and its own keyboard
		// fds, so everything translation held is released first.
		log.Println("entering remap session")
		closeKeyboards(&kbds)
		comp.Stop()

		runSession(ctx, cfg, table)

		comp.Start()
		select {
		case <-time.After(cfg.RestartGrace):
		case <-ctx.Done():
			return 0
		}

		logBindings("updated key mappings", table)

		kbds = device.ScanKeyboards()
		if len(kbds) == 0 {
			log.Println("no keyboards after remap session; idling until shutdown")
			<-ctx.Done()
			return 0
		}
		log.Println("resuming translation")
	}
}

// runGuimap runs a standalone remap session with no virtual joystick
// and no companion handling. Exit status 0 means the bindings were
// applied.
func runGuimap(ctx context.Context, cfg config.Config, table *mapping.Table) int {
	if runSession(ctx, cfg, table) {
		return 0
	}
	return 1
}

// runSession opens the framebuffer and fresh input devices, runs one
// remap session over the shared table and reports whether it applied.
func runSession(ctx context.Context, cfg config.Config, table *mapping.Table) bool {
	fb, err := fbdev.Open()
	if err != nil {
		log.Printf("framebuffer: %v", err)
		return false
	}
	defer fb.Close()

	kbds := device.ScanKeyboards()
	if len(kbds) == 0 {
		log.Println("no keyboards for remap session")
		return false
	}
	defer closeKeyboards(&kbds)

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := make(chan device.KeyEvent, 64)
	for _, k := range kbds {
		k.Start(sctx, keys)
	}

	var joyCh chan evdev.InputEvent
	if nav, ok := device.ScanNavJoystick(vjoy.DeviceName); ok {
		defer nav.Close()
		log.Printf("navigation joystick: %s", nav.Name())
		joyCh = make(chan evdev.InputEvent, 64)
		nav.Start(sctx, joyCh)
	}

	sess := remap.New(table, fb, keys, joyCh, remap.Options{
		Frame:      cfg.Frame,
		Blink:      cfg.Blink,
		Debounce:   cfg.Debounce,
		ExportRoot: cfg.ExportRoot,
	})
	applied := sess.Run(ctx)
	if applied {
		log.Println("new bindings applied")
	} else {
		log.Println("remap session ended without applying")
	}
	return applied
}

func engineKeyboards(kbds []*device.Keyboard) []engine.Keyboard {
	out := make([]engine.Keyboard, len(kbds))
	for i, k := range kbds {
		out[i] = k
	}
	return out
}

func closeKeyboards(kbds *[]*device.Keyboard) {
	for _, k := range *kbds {
		k.Close()
	}
	*kbds = nil
}

func logBindings(title string, t *mapping.Table) {
	log.Printf("%s:", title)
	for i := 0; i < mapping.NumEntries; i++ {
		e := t.Entry(i)
		log.Printf("  %-12s = %s", e.Label, mapping.KeyName(e.Key))
	}
}

func printUsage(t *mapping.Table) {
	flagName := func(i int) string { return "--" + t.Entry(i).Flag + " KEY" }
	current := func(i int) string { return mapping.KeyName(t.Entry(i).Key) }
	pair := func(l, r int) {
		fmt.Printf("  %-16s (current: %-14s)  %-16s (current: %s)\n",
			flagName(l), current(l), flagName(r), current(r))
	}

	fmt.Printf("Creates a virtual THEC64 joystick via Linux uinput, translating\n")
	fmt.Printf("keyboard input to joystick events.\n\n")
	fmt.Printf("Usage: keyjoyd [OPTIONS]\n\n")

	fmt.Printf("Direction keys:\n")
	pair(0, 4)
	pair(1, 5)
	pair(2, 6)
	pair(3, 7)
	fmt.Printf("\n")

	fmt.Printf("Button keys:\n")
	pair(8, 9)
	pair(10, 11)
	pair(12, 13)
	pair(14, 15)
	fmt.Printf("\n")

	fmt.Printf("Other:\n")
	fmt.Printf("  --help           Show this help with current configuration\n")
	fmt.Printf("  --guimap         Interactive framebuffer mapping mode\n")
	fmt.Printf("\n")

	fmt.Printf("Key names: single chars (a, 7), or names (space, lalt, lctrl,\n")
	fmt.Printf("  lshift, rshift, tab, enter, esc, bracketleft, bracketright,\n")
	fmt.Printf("  f1-f12, up, down, left, right, etc.)\n")
	fmt.Printf("\n")

	fmt.Printf("Direction layout (QWEASDZXC):\n")
	fmt.Printf("  Q=Up-Left    W=Up      E=Up-Right\n")
	fmt.Printf("  A=Left       (S=n/a)   D=Right\n")
	fmt.Printf("  Z=Down-Left  X=Down    C=Down-Right\n")
}

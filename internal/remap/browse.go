package remap

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// exportLabel is the synthetic terminal entry that writes the launch
// script into the directory being viewed.
const exportLabel = ">> Export here <<"

// parentLabel is the synthetic first entry that ascends one level.
const parentLabel = ".."

type browserEntry struct {
	name string
	dir  bool
}

// browser is the directory picker backing the save screen. It lists
// subdirectories only; files and dotfiles are hidden.
type browser struct {
	path     string
	entries  []browserEntry
	selected int
	scroll   int
}

func newBrowser(root string) *browser {
	b := &browser{}
	b.load(root)
	return b
}

func (b *browser) load(path string) {
	b.path = filepath.Clean(path)
	b.entries = b.entries[:0]
	b.selected = 0
	b.scroll = 0

	if b.path != "/" {
		b.entries = append(b.entries, browserEntry{name: parentLabel, dir: true})
	}

	dirs, err := os.ReadDir(b.path)
	if err == nil {
		var names []string
		for _, e := range dirs {
			if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
				names = append(names, e.Name())
			}
		}
		sort.Slice(names, func(i, j int) bool {
			return strings.ToLower(names[i]) < strings.ToLower(names[j])
		})
		for _, n := range names {
			b.entries = append(b.entries, browserEntry{name: n, dir: true})
		}
	}

	b.entries = append(b.entries, browserEntry{name: exportLabel})
}

// move shifts the selection and keeps it inside a window of visible
// rows for rendering.
func (b *browser) move(delta, visible int) {
	b.selected += delta
	if b.selected < 0 {
		b.selected = 0
	}
	if b.selected >= len(b.entries) {
		b.selected = len(b.entries) - 1
	}
	if b.selected < b.scroll {
		b.scroll = b.selected
	}
	if visible > 0 && b.selected >= b.scroll+visible {
		b.scroll = b.selected - visible + 1
	}
}

// ascend moves to the parent directory. A no-op at the filesystem root.
func (b *browser) ascend() {
	if b.path != "/" {
		b.load(filepath.Dir(b.path))
	}
}

func (b *browser) descend(name string) {
	b.load(filepath.Join(b.path, name))
}

func (b *browser) current() browserEntry {
	return b.entries[b.selected]
}

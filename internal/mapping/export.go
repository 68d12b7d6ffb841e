package mapping

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// ScriptName is the file name of the exported launch script.
const ScriptName = "keyjoyd.sh"

// Script renders an executable shell script that re-invokes the program
// with one flag/token pair per entry, reproducing the current bindings.
func (t *Table) Script(invoke string) []byte {
	var buf bytes.Buffer
	buf.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&buf, "exec %s", invoke)
	for i := range t.entries {
		e := &t.entries[i]
		fmt.Fprintf(&buf, " \\\n  --%s %s", e.Flag, KeyName(e.Key))
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

// WriteScript writes the launch script into dir, executable, and
// returns its full path.
func (t *Table) WriteScript(dir string) (string, error) {
	path := filepath.Join(dir, ScriptName)
	if err := os.WriteFile(path, t.Script("./keyjoyd"), 0o755); err != nil {
		return "", fmt.Errorf("write launch script: %w", err)
	}
	return path, nil
}

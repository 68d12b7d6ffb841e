package mapping

import (
	"fmt"

	"github.com/spf13/pflag"
)

// RegisterFlags declares one string flag per mapping entry on fs, with
// the entry's current binding as the default value.
func (t *Table) RegisterFlags(fs *pflag.FlagSet) {
	for i := range t.entries {
		e := &t.entries[i]
		fs.String(e.Flag, KeyName(e.Key), "key for "+e.Label)
	}
}

// ApplyFlags rebinds every entry whose flag was set on the command
// line. An unrecognized key token is an error.
func (t *Table) ApplyFlags(fs *pflag.FlagSet) error {
	for i := range t.entries {
		e := &t.entries[i]
		if !fs.Changed(e.Flag) {
			continue
		}
		val, err := fs.GetString(e.Flag)
		if err != nil {
			return err
		}
		code, ok := ParseKeyName(val)
		if !ok {
			return fmt.Errorf("unknown key name %q for --%s", val, e.Flag)
		}
		e.Key = code
	}
	return nil
}

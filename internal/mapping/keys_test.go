package mapping

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
)

func TestKeyNameRoundTrip(t *testing.T) {
	for _, kn := range keyNames {
		code, ok := ParseKeyName(kn.name)
		if !ok {
			t.Errorf("ParseKeyName(%q) failed", kn.name)
			continue
		}
		if code != kn.code {
			t.Errorf("ParseKeyName(%q) = %d, want %d", kn.name, code, kn.code)
		}
		if got := KeyName(kn.code); got != kn.name {
			t.Errorf("KeyName(%d) = %q, want %q", kn.code, got, kn.name)
		}
	}
}

func TestParseKeyNameCaseInsensitive(t *testing.T) {
	code, ok := ParseKeyName("LShift")
	if !ok || code != evdev.KEY_LEFTSHIFT {
		t.Fatalf("ParseKeyName(LShift) = %d, %v", code, ok)
	}
}

func TestParseKeyNameUnknown(t *testing.T) {
	if _, ok := ParseKeyName("hyperspace"); ok {
		t.Fatal("unknown token accepted")
	}
}

func TestKeyNameUnknownCode(t *testing.T) {
	if got := KeyName(evdev.KEY_MUTE); got != "?" {
		t.Fatalf("KeyName(KEY_MUTE) = %q, want ?", got)
	}
}

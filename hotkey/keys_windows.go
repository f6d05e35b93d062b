//go:build windows

package hotkey

import "golang.design/x/hotkey"

// Win32 virtual key codes.
var windowsKeys = map[string]hotkey.Key{
	"space": hotkey.KeySpace,
	"f13":   0x7C,
	"f14":   0x7D,
	"f15":   0x7E,
	"f16":   0x7F,
	"f17":   0x80,
	"f18":   0x81,
	"f19":   0x82,
	"f20":   0x83,
}

func lookupKey(name string) (hotkey.Key, bool) {
	k, ok := windowsKeys[name]
	return k, ok
}

func mods(b binding) []hotkey.Modifier {
	var m []hotkey.Modifier
	if b.ctrl {
		m = append(m, hotkey.ModCtrl)
	}
	if b.shift {
		m = append(m, hotkey.ModShift)
	}
	if b.alt {
		m = append(m, hotkey.ModAlt)
	}
	if b.cmd {
		m = append(m, hotkey.ModWin)
	}
	return m
}

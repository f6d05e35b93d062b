//go:build darwin

package hotkey

import "golang.design/x/hotkey"

// Carbon virtual key codes.
var darwinKeys = map[string]hotkey.Key{
	"space": hotkey.KeySpace,
	"f13":   0x69,
	"f14":   0x6B,
	"f15":   0x71,
	"f16":   0x6A,
	"f17":   0x40,
	"f18":   0x4F,
	"f19":   0x50,
	"f20":   0x5A,
}

func lookupKey(name string) (hotkey.Key, bool) {
	k, ok := darwinKeys[name]
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
		m = append(m, hotkey.ModOption)
	}
	if b.cmd {
		m = append(m, hotkey.ModCmd)
	}
	return m
}

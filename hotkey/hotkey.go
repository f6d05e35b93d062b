// Package hotkey delivers global push-to-talk key events. The binding
// is configurable; events arrive on the Keydown/Keyup channels and the
// main loop drives the state machine from them.
package hotkey

import (
	"fmt"
	"strings"
)

// DefaultBinding is used when the config names no key.
const DefaultBinding = "ctrl-shift-space"

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

// binding is a parsed key spec: zero or more modifiers plus one key,
// dash separated, e.g. "ctrl-shift-space" or "f18" or "rightalt".
type binding struct {
	ctrl, shift, alt, cmd bool
	key                   string
}

var keyNames = map[string]bool{
	"space": true,
	"f13":   true, "f14": true, "f15": true, "f16": true,
	"f17": true, "f18": true, "f19": true, "f20": true,
	// solitary right-hand modifiers, the classic dictation keys
	"rightctrl": true, "rightalt": true, "rightmeta": true,
}

func parseBinding(s string) (binding, error) {
	var b binding
	tokens := strings.Split(strings.ToLower(strings.TrimSpace(s)), "-")
	if len(tokens) == 0 || tokens[0] == "" {
		return b, fmt.Errorf("empty key binding")
	}
	for _, mod := range tokens[:len(tokens)-1] {
		switch mod {
		case "ctrl":
			b.ctrl = true
		case "shift":
			b.shift = true
		case "alt", "option":
			b.alt = true
		case "cmd", "super", "win":
			b.cmd = true
		default:
			return b, fmt.Errorf("unknown modifier %q in binding %q", mod, s)
		}
	}
	b.key = tokens[len(tokens)-1]
	if !keyNames[b.key] {
		return b, fmt.Errorf("unknown key %q in binding %q", b.key, s)
	}
	if b.isModifierKey() && (b.ctrl || b.shift || b.alt || b.cmd) {
		return b, fmt.Errorf("binding %q combines modifiers with a modifier key", s)
	}
	return b, nil
}

func (b binding) isModifierKey() bool {
	switch b.key {
	case "rightctrl", "rightalt", "rightmeta":
		return true
	}
	return false
}

// Known reports whether s is a valid binding, for config validation.
func Known(s string) error {
	_, err := parseBinding(s)
	return err
}

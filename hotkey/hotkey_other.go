//go:build !linux

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"
)

type xHotkey struct {
	hk      *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
}

func New(spec string) (Hotkey, error) {
	b, err := parseBinding(spec)
	if err != nil {
		return nil, err
	}
	if b.isModifierKey() {
		return nil, fmt.Errorf("binding %q needs a regular key on this platform (try f18 or ctrl-shift-space)", spec)
	}
	key, ok := lookupKey(b.key)
	if !ok {
		return nil, fmt.Errorf("key %q is not available on this platform", b.key)
	}
	return &xHotkey{
		hk:      hotkey.New(mods(b), key),
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}, nil
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	go func() {
		for {
			<-h.hk.Keydown()
			h.keydown <- struct{}{}
		}
	}()
	go func() {
		for {
			<-h.hk.Keyup()
			h.keyup <- struct{}{}
		}
	}()
	return nil
}

func (h *xHotkey) Unregister() {
	h.hk.Unregister()
}

func (h *xHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *xHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func Diagnose(spec string) (string, error) {
	if err := Known(spec); err != nil {
		return "", err
	}
	if _, err := New(spec); err != nil {
		return "", err
	}
	return fmt.Sprintf("hotkey %s available", spec), nil
}

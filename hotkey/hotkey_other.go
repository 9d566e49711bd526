//go:build !linux

package hotkey

import (
	"golang.design/x/hotkey"

	"dictate/config"
)

// The X11/Cocoa/Win32 hotkey APIs cannot express a bare modifier hold,
// so every preset falls back to Ctrl+Shift+Space here. The evdev
// backend on linux honors the preset key codes directly.
type xHotkey struct {
	hk      *hotkey.Hotkey
	esc     *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
	escape  chan struct{}
}

func New(_ config.Preset) Hotkey {
	return &xHotkey{
		hk:      hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace),
		esc:     hotkey.New(nil, hotkey.KeyEscape),
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
		escape:  make(chan struct{}, 1),
	}
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
	// Registering Escape grabs it system-wide on these platforms, which
	// breaks pass-through. Best effort: if the grab fails, cancel/undo
	// via Escape is simply unavailable.
	if err := h.esc.Register(); err == nil {
		go func() {
			for {
				<-h.esc.Keydown()
				select {
				case h.escape <- struct{}{}:
				default:
				}
			}
		}()
	}
	return nil
}

func (h *xHotkey) Unregister() {
	h.hk.Unregister()
	h.esc.Unregister()
}

func (h *xHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *xHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func (h *xHotkey) Escape() <-chan struct{} {
	return h.escape
}

func Diagnose() (string, error) {
	return "hotkey support available (Ctrl+Shift+Space)", nil
}

// Package hotkey turns raw global key events into logical
// press/release/escape signals for the configured hotkey combo.
package hotkey

// Hotkey delivers logical key events for one configured combo.
// Keydown fires when every constituent key of the combo is held,
// Keyup when any constituent releases, Escape on the Escape key.
type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
	Escape() <-chan struct{}
}

type comboEvent int

const (
	comboNone comboEvent = iota
	comboDown
	comboUp
)

// comboTracker tracks held constituent keys of one combo. It is fed
// every key press/release seen on a device and reports when the combo
// as a whole engages or disengages. Key repeats while engaged are
// ignored.
type comboTracker struct {
	target map[uint16]bool
	held   map[uint16]bool
	active bool
}

func newComboTracker(codes []uint16) *comboTracker {
	target := make(map[uint16]bool, len(codes))
	for _, c := range codes {
		target[c] = true
	}
	return &comboTracker{
		target: target,
		held:   make(map[uint16]bool),
	}
}

func (t *comboTracker) handle(code uint16, pressed bool) comboEvent {
	if !t.target[code] {
		return comboNone
	}
	if pressed {
		t.held[code] = true
		if !t.active && len(t.held) == len(t.target) {
			t.active = true
			return comboDown
		}
		return comboNone
	}
	delete(t.held, code)
	if t.active {
		t.active = false
		return comboUp
	}
	return comboNone
}

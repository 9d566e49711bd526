package hotkey

import "testing"

const (
	lctrl = 29
	lalt  = 56
	rmeta = 126
	keyA  = 30
)

func TestComboSingleKey(t *testing.T) {
	tr := newComboTracker([]uint16{rmeta})

	if got := tr.handle(rmeta, true); got != comboDown {
		t.Errorf("press = %v, want comboDown", got)
	}
	if got := tr.handle(rmeta, false); got != comboUp {
		t.Errorf("release = %v, want comboUp", got)
	}
}

func TestComboMultiKeyFiresOnLastConstituent(t *testing.T) {
	tr := newComboTracker([]uint16{lctrl, lalt})

	if got := tr.handle(lctrl, true); got != comboNone {
		t.Errorf("first key = %v, want comboNone", got)
	}
	if got := tr.handle(lalt, true); got != comboDown {
		t.Errorf("second key = %v, want comboDown", got)
	}
	// Any constituent release disengages.
	if got := tr.handle(lctrl, false); got != comboUp {
		t.Errorf("release = %v, want comboUp", got)
	}
	// Releasing the rest does not fire again.
	if got := tr.handle(lalt, false); got != comboNone {
		t.Errorf("second release = %v, want comboNone", got)
	}
}

func TestComboIgnoresOtherKeys(t *testing.T) {
	tr := newComboTracker([]uint16{rmeta})

	if got := tr.handle(keyA, true); got != comboNone {
		t.Errorf("unrelated press = %v, want comboNone", got)
	}
	if got := tr.handle(rmeta, true); got != comboDown {
		t.Errorf("press = %v, want comboDown", got)
	}
	if got := tr.handle(keyA, false); got != comboNone {
		t.Errorf("unrelated release = %v, want comboNone", got)
	}
}

func TestComboRepeatWhileHeld(t *testing.T) {
	tr := newComboTracker([]uint16{rmeta})

	tr.handle(rmeta, true)
	if got := tr.handle(rmeta, true); got != comboNone {
		t.Errorf("repeat press = %v, want comboNone", got)
	}
	if got := tr.handle(rmeta, false); got != comboUp {
		t.Errorf("release = %v, want comboUp", got)
	}
}

func TestComboReleaseOrderIndependent(t *testing.T) {
	tr := newComboTracker([]uint16{lctrl, lalt})

	tr.handle(lalt, true)
	tr.handle(lctrl, true)
	if got := tr.handle(lalt, false); got != comboUp {
		t.Errorf("release = %v, want comboUp", got)
	}
	// Re-engaging requires all constituents down again.
	if got := tr.handle(lalt, true); got != comboDown {
		t.Errorf("re-press = %v, want comboDown", got)
	}
}

func TestFakeChannels(t *testing.T) {
	fk := NewFake()
	fk.SimKeydown()
	select {
	case <-fk.Keydown():
	default:
		t.Fatal("keydown not delivered")
	}
	fk.SimEscape()
	select {
	case <-fk.Escape():
	default:
		t.Fatal("escape not delivered")
	}
}

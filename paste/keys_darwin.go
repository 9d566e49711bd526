//go:build darwin

package paste

import (
	"sync"

	"github.com/micmonay/keybd_event"
)

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
)

func initBonding() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
	})
	return kbErr
}

type macSender struct{}

func NewKeySender() (KeySender, error) {
	if err := initBonding(); err != nil {
		return nil, err
	}
	return macSender{}, nil
}

func (macSender) SendPaste() error {
	kb.SetKeys(keybd_event.VK_V)
	kb.HasSuper(true) // Cmd+V on macOS
	return kb.Launching()
}

func (macSender) SendUndo() error {
	kb.SetKeys(keybd_event.VK_Z)
	kb.HasSuper(true) // Cmd+Z on macOS
	return kb.Launching()
}

// Verify checks that the keyboard event binding is initialized.
func Verify() (string, error) {
	if err := initBonding(); err != nil {
		return "", err
	}
	return "keyboard event binding OK (Cmd+V)", nil
}

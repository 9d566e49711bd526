//go:build !linux && !darwin

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

type ctrlSender struct{}

func NewKeySender() (KeySender, error) {
	if err := initBonding(); err != nil {
		return nil, err
	}
	return ctrlSender{}, nil
}

func (ctrlSender) SendPaste() error {
	kb.SetKeys(keybd_event.VK_V)
	kb.HasCTRL(true)
	return kb.Launching()
}

func (ctrlSender) SendUndo() error {
	kb.SetKeys(keybd_event.VK_Z)
	kb.HasCTRL(true)
	return kb.Launching()
}

func Verify() (string, error) {
	if err := initBonding(); err != nil {
		return "", err
	}
	return "keyboard event binding OK (Ctrl+V)", nil
}

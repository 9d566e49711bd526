// Package paste places transcribed text into the focused application
// through the system clipboard and a synthetic paste keystroke, and
// can undo its own paste shortly afterwards.
package paste

import (
	"fmt"
	"sync"
	"time"

	cb "github.com/atotto/clipboard"

	"dictate/config"
)

// UndoWindow is how long after a paste the undo keystroke is still
// offered. Past it the paste is considered accepted.
const UndoWindow = 5 * time.Second

// restoreDelay gives the focused application time to consume the
// clipboard before the previous content is put back.
const restoreDelay = 600 * time.Millisecond

// KeySender emits synthetic keystrokes into the focused application.
type KeySender interface {
	SendPaste() error
	SendUndo() error
}

// Clipboard abstracts the system clipboard for tests.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

type systemClipboard struct{}

func (systemClipboard) Read() (string, error)   { return cb.ReadAll() }
func (systemClipboard) Write(text string) error { return cb.WriteAll(text) }

type record struct {
	text     string
	pastedAt time.Time
}

// Injector delivers text to the focused application and tracks the
// most recent paste for the undo window.
type Injector struct {
	sender KeySender
	clip   Clipboard
	now    func() time.Time

	mu     sync.Mutex
	method string
	last   *record
}

func NewInjector(sender KeySender, method string) *Injector {
	return &Injector{
		sender: sender,
		clip:   systemClipboard{},
		now:    time.Now,
		method: method,
	}
}

func (inj *Injector) SetMethod(method string) {
	inj.mu.Lock()
	inj.method = method
	inj.mu.Unlock()
}

// Inject places text into the focused application. With the
// clipboard-paste method it saves the clipboard, copies the text,
// sends the paste keystroke, and restores the previous clipboard
// content after a short delay. With the copy-only method it just
// copies and leaves pasting to the user.
func (inj *Injector) Inject(text string, trailingSpace bool) error {
	if trailingSpace {
		text += " "
	}

	inj.mu.Lock()
	method := inj.method
	inj.mu.Unlock()

	saved, savedErr := inj.clip.Read()

	if err := inj.clip.Write(text); err != nil {
		return fmt.Errorf("copying text: %w", err)
	}

	if method == config.MethodCopyOnly || inj.sender == nil {
		return nil
	}

	if err := inj.sender.SendPaste(); err != nil {
		return fmt.Errorf("sending paste keystroke: %w", err)
	}

	inj.mu.Lock()
	inj.last = &record{text: text, pastedAt: inj.now()}
	inj.mu.Unlock()

	if savedErr == nil {
		injected := text
		time.AfterFunc(restoreDelay, func() {
			// Don't clobber anything the user copied in the meantime.
			if current, err := inj.clip.Read(); err == nil && current == injected {
				inj.clip.Write(saved)
			}
		})
	}

	return nil
}

// Undo sends the application-level undo keystroke if the most recent
// paste is still inside the undo window. It reports whether an undo
// was performed.
func (inj *Injector) Undo() (bool, error) {
	if inj.sender == nil {
		return false, nil
	}
	inj.mu.Lock()
	last := inj.last
	if last == nil || inj.now().Sub(last.pastedAt) > UndoWindow {
		inj.last = nil
		inj.mu.Unlock()
		return false, nil
	}
	inj.last = nil
	inj.mu.Unlock()

	if err := inj.sender.SendUndo(); err != nil {
		return false, fmt.Errorf("sending undo keystroke: %w", err)
	}
	return true, nil
}

// HasRecentPaste reports whether an undo is currently possible.
func (inj *Injector) HasRecentPaste() bool {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	return inj.last != nil && inj.now().Sub(inj.last.pastedAt) <= UndoWindow
}

// ClearRecord forgets the most recent paste without undoing it.
func (inj *Injector) ClearRecord() {
	inj.mu.Lock()
	inj.last = nil
	inj.mu.Unlock()
}

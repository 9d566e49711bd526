package paste

import (
	"sync"
	"testing"
	"time"

	"dictate/config"
)

type fakeSender struct {
	mu     sync.Mutex
	pastes int
	undos  int
}

func (f *fakeSender) SendPaste() error {
	f.mu.Lock()
	f.pastes++
	f.mu.Unlock()
	return nil
}

func (f *fakeSender) SendUndo() error {
	f.mu.Lock()
	f.undos++
	f.mu.Unlock()
	return nil
}

func (f *fakeSender) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pastes, f.undos
}

type fakeClipboard struct {
	mu      sync.Mutex
	content string
}

func (f *fakeClipboard) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content, nil
}

func (f *fakeClipboard) Write(text string) error {
	f.mu.Lock()
	f.content = text
	f.mu.Unlock()
	return nil
}

func newTestInjector(method string) (*Injector, *fakeSender, *fakeClipboard, *time.Time) {
	sender := &fakeSender{}
	clip := &fakeClipboard{content: "previous"}
	now := time.Now()
	inj := NewInjector(sender, method)
	inj.clip = clip
	inj.now = func() time.Time { return now }
	return inj, sender, clip, &now
}

func TestInjectPastes(t *testing.T) {
	inj, sender, clip, _ := newTestInjector(config.MethodClipboardPaste)

	if err := inj.Inject("hello", true); err != nil {
		t.Fatalf("Inject: %v", err)
	}

	if got, _ := clip.Read(); got != "hello " {
		t.Errorf("clipboard = %q, want %q", got, "hello ")
	}
	if pastes, _ := sender.counts(); pastes != 1 {
		t.Errorf("pastes = %d, want 1", pastes)
	}
	if !inj.HasRecentPaste() {
		t.Error("expected a recent paste record")
	}
}

func TestInjectWithoutTrailingSpace(t *testing.T) {
	inj, _, clip, _ := newTestInjector(config.MethodClipboardPaste)

	if err := inj.Inject("hello", false); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if got, _ := clip.Read(); got != "hello" {
		t.Errorf("clipboard = %q, want %q", got, "hello")
	}
}

func TestInjectCopyOnly(t *testing.T) {
	inj, sender, clip, _ := newTestInjector(config.MethodCopyOnly)

	if err := inj.Inject("hello", false); err != nil {
		t.Fatalf("Inject: %v", err)
	}

	if got, _ := clip.Read(); got != "hello" {
		t.Errorf("clipboard = %q, want %q", got, "hello")
	}
	if pastes, _ := sender.counts(); pastes != 0 {
		t.Errorf("pastes = %d, want 0 for copy-only", pastes)
	}
	if inj.HasRecentPaste() {
		t.Error("copy-only must not record an undoable paste")
	}
}

func TestUndoInsideWindow(t *testing.T) {
	inj, sender, _, now := newTestInjector(config.MethodClipboardPaste)

	if err := inj.Inject("hello", false); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	*now = now.Add(UndoWindow - 100*time.Millisecond)

	done, err := inj.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !done {
		t.Fatal("Undo inside the window did nothing")
	}
	if _, undos := sender.counts(); undos != 1 {
		t.Errorf("undos = %d, want 1", undos)
	}
	if inj.HasRecentPaste() {
		t.Error("record must be cleared after undo")
	}
}

func TestUndoPastWindow(t *testing.T) {
	inj, sender, _, now := newTestInjector(config.MethodClipboardPaste)

	if err := inj.Inject("hello", false); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	*now = now.Add(UndoWindow + 100*time.Millisecond)

	done, err := inj.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if done {
		t.Fatal("Undo past the window must be a no-op")
	}
	if _, undos := sender.counts(); undos != 0 {
		t.Errorf("undos = %d, want 0", undos)
	}
}

func TestUndoWithoutPaste(t *testing.T) {
	inj, sender, _, _ := newTestInjector(config.MethodClipboardPaste)

	done, err := inj.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if done {
		t.Fatal("Undo with no paste must be a no-op")
	}
	if _, undos := sender.counts(); undos != 0 {
		t.Errorf("undos = %d, want 0", undos)
	}
}

func TestUndoOnlyOnce(t *testing.T) {
	inj, sender, _, _ := newTestInjector(config.MethodClipboardPaste)

	if err := inj.Inject("hello", false); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if done, _ := inj.Undo(); !done {
		t.Fatal("first Undo did nothing")
	}
	if done, _ := inj.Undo(); done {
		t.Fatal("second Undo must be a no-op")
	}
	if _, undos := sender.counts(); undos != 1 {
		t.Errorf("undos = %d, want 1", undos)
	}
}

func TestClearRecord(t *testing.T) {
	inj, _, _, _ := newTestInjector(config.MethodClipboardPaste)

	if err := inj.Inject("hello", false); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	inj.ClearRecord()
	if done, _ := inj.Undo(); done {
		t.Fatal("Undo after ClearRecord must be a no-op")
	}
}

func TestClipboardRestore(t *testing.T) {
	sender := &fakeSender{}
	clip := &fakeClipboard{content: "previous"}
	inj := NewInjector(sender, config.MethodClipboardPaste)
	inj.clip = clip

	if err := inj.Inject("hello", false); err != nil {
		t.Fatalf("Inject: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if got, _ := clip.Read(); got == "previous" {
			return
		}
		if time.Now().After(deadline) {
			got, _ := clip.Read()
			t.Fatalf("clipboard = %q, want restored %q", got, "previous")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

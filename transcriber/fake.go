package transcriber

import (
	"context"
	"sync/atomic"
	"time"
)

// FakeTranscriber returns a fixed text or error, optionally after a
// delay, and counts how many times it was called.
type FakeTranscriber struct {
	Text  string
	Err   error
	Delay time.Duration

	lang  string
	calls atomic.Int64
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{Text: text, Err: err}
}

func (f *FakeTranscriber) Name() string            { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }
func (f *FakeTranscriber) Language() string        { return f.lang }

func (f *FakeTranscriber) Calls() int64 { return f.calls.Load() }

func (f *FakeTranscriber) Transcribe(ctx context.Context, _ []int16) (string, error) {
	f.calls.Add(1)
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

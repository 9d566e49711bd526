package transcriber

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"dictate/encoder"
)

func waitResult(t *testing.T, d *Dispatcher) JobResult {
	t.Helper()
	select {
	case res := <-d.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatcher result")
		return JobResult{}
	}
}

func speechSamples(seconds float64) []int16 {
	n := int(seconds * encoder.SampleRate)
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16((i % 200) * 50)
	}
	return samples
}

func TestDispatcherRejectsShortAudio(t *testing.T) {
	fake := NewFake("hello", nil)
	d := NewDispatcher(fake)
	defer d.Close()

	d.Submit(Job{Session: 7, Samples: speechSamples(0.1)})
	res := waitResult(t, d)

	if !errors.Is(res.Err, ErrEmptyAudio) {
		t.Fatalf("err = %v, want ErrEmptyAudio", res.Err)
	}
	if res.Session != 7 {
		t.Errorf("session = %d, want 7", res.Session)
	}
	if fake.Calls() != 0 {
		t.Errorf("provider called %d times for short audio, want 0", fake.Calls())
	}
}

func TestDispatcherTranscribes(t *testing.T) {
	fake := NewFake("hello world", nil)
	d := NewDispatcher(fake)
	d.gate = nil // exercise the provider path regardless of voice content
	defer d.Close()

	d.Submit(Job{Session: 3, Samples: speechSamples(1.0)})
	res := waitResult(t, d)

	if res.Err != nil {
		t.Fatalf("err = %v", res.Err)
	}
	if res.Text != "hello world" {
		t.Errorf("text = %q", res.Text)
	}
	if res.Session != 3 {
		t.Errorf("session = %d, want 3", res.Session)
	}
	if res.AudioSeconds < 0.99 || res.AudioSeconds > 1.01 {
		t.Errorf("audio seconds = %f, want ~1.0", res.AudioSeconds)
	}
}

func TestDispatcherPreservesOrder(t *testing.T) {
	fake := NewFake("", nil)
	fake.Delay = 10 * time.Millisecond
	d := NewDispatcher(fake)
	d.gate = nil
	defer d.Close()

	for i := 1; i <= 5; i++ {
		d.Submit(Job{Session: uint64(i), Samples: speechSamples(0.5)})
	}

	for i := 1; i <= 5; i++ {
		res := waitResult(t, d)
		if res.Session != uint64(i) {
			t.Fatalf("result %d has session %d, want %d", i, res.Session, i)
		}
	}
}

func TestDispatcherProviderError(t *testing.T) {
	wantErr := fmt.Errorf("%w: server down", ErrNotReady)
	fake := NewFake("", wantErr)
	d := NewDispatcher(fake)
	d.gate = nil
	defer d.Close()

	d.Submit(Job{Session: 1, Samples: speechSamples(0.5)})
	res := waitResult(t, d)

	if !errors.Is(res.Err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", res.Err)
	}
}

func TestDispatcherSubmitAfterClose(t *testing.T) {
	fake := NewFake("hello", nil)
	d := NewDispatcher(fake)
	d.Close()

	// Must not block or panic.
	d.Submit(Job{Session: 1, Samples: speechSamples(0.5)})
}

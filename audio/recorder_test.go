package audio

import (
	"encoding/binary"
	"testing"
)

func pcmBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func newTestRecorder(t *testing.T, samples []int16, level LevelFunc) (*Recorder, *FakeCapture) {
	t.Helper()
	ctx := NewFakeContextFromPCM(pcmBytes(samples), false)
	dev, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: SampleRate, Channels: Channels})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}
	return NewRecorder(dev, level), dev.(*FakeCapture)
}

func TestRecorderCapturesSamples(t *testing.T) {
	want := []int16{100, -200, 300, -400, 500}
	rec, _ := newTestRecorder(t, want, nil)

	if err := rec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	got := rec.Stop()
	if len(got) < len(want) {
		t.Fatalf("got %d samples, want at least %d", len(got), len(want))
	}
	for i, s := range want {
		if got[i] != s {
			t.Errorf("sample %d = %d, want %d", i, got[i], s)
		}
	}
}

func TestRecorderStopBeforeStart(t *testing.T) {
	rec, _ := newTestRecorder(t, []int16{1, 2, 3}, nil)
	if got := rec.Stop(); got != nil {
		t.Errorf("Stop before Start returned %d samples, want none", len(got))
	}
}

func TestRecorderStopIdempotent(t *testing.T) {
	rec, _ := newTestRecorder(t, []int16{1, 2, 3}, nil)
	if err := rec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first := rec.Stop()
	if len(first) == 0 {
		t.Fatal("first Stop returned no samples")
	}
	if second := rec.Stop(); second != nil {
		t.Errorf("second Stop returned %d samples, want none", len(second))
	}
}

func TestRecorderDoubleStart(t *testing.T) {
	rec, _ := newTestRecorder(t, []int16{1, 2, 3}, nil)
	if err := rec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rec.Start(); err != ErrBusy {
		t.Errorf("second Start = %v, want ErrBusy", err)
	}
	rec.Stop()
}

func TestRecorderDiscard(t *testing.T) {
	rec, _ := newTestRecorder(t, []int16{1, 2, 3}, nil)
	if err := rec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec.Discard()
	if got := rec.Stop(); got != nil {
		t.Errorf("Stop after Discard returned %d samples, want none", len(got))
	}
	// Discarding frees the device for recording again.
	if err := rec.Start(); err != nil {
		t.Fatalf("Start after Discard: %v", err)
	}
	rec.Stop()
}

func TestRecorderLevelsInRange(t *testing.T) {
	loud := make([]int16, 2048)
	for i := range loud {
		loud[i] = 20000
	}
	var levels []float64
	rec, _ := newTestRecorder(t, loud, func(l float64) { levels = append(levels, l) })

	if err := rec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec.Stop()

	if len(levels) == 0 {
		t.Fatal("no level readings delivered")
	}
	for i, l := range levels {
		if l < 0 || l > 1 {
			t.Errorf("level %d = %f, outside [0,1]", i, l)
		}
	}
	if levels[0] < 0.3 {
		t.Errorf("loud chunk level = %f, expected well above silence", levels[0])
	}
}

func TestChunkLevelSilence(t *testing.T) {
	if l := chunkLevel(make([]byte, 512)); l != 0 {
		t.Errorf("silence level = %f, want 0", l)
	}
	if l := chunkLevel(nil); l != 0 {
		t.Errorf("empty chunk level = %f, want 0", l)
	}
}

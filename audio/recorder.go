package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
)

// ErrBusy is returned when Start is called while a recording is
// already in progress.
var ErrBusy = errors.New("audio: capture already active")

// LevelFunc receives one level reading in [0,1] per captured chunk.
type LevelFunc func(level float64)

// Recorder owns the capture device for the duration of one recording:
// Start begins appending frames to an internal buffer, Stop halts
// capture and returns the buffered samples, Discard halts and drops
// them. Stop and Discard are no-ops when nothing is recording.
type Recorder struct {
	capture CaptureDevice
	level   LevelFunc

	mu     sync.Mutex
	active bool
	buf    []int16
}

func NewRecorder(capture CaptureDevice, level LevelFunc) *Recorder {
	return &Recorder{capture: capture, level: level}
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return ErrBusy
	}
	r.active = true
	r.buf = nil
	r.mu.Unlock()

	r.capture.SetCallback(func(data []byte, _ uint32) {
		if len(data) < 2 {
			return
		}
		r.mu.Lock()
		if !r.active {
			r.mu.Unlock()
			return
		}
		for i := 0; i+1 < len(data); i += 2 {
			r.buf = append(r.buf, int16(binary.LittleEndian.Uint16(data[i:])))
		}
		r.mu.Unlock()

		if r.level != nil {
			r.level(chunkLevel(data))
		}
	})

	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
		return err
	}
	return nil
}

// Stop halts capture and returns the recorded samples. Calling Stop
// before Start, or twice, returns an empty buffer.
func (r *Recorder) Stop() []int16 {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil
	}
	r.active = false
	r.mu.Unlock()

	r.capture.Stop()
	r.capture.ClearCallback()

	r.mu.Lock()
	buf := r.buf
	r.buf = nil
	r.mu.Unlock()
	return buf
}

// Discard halts capture without returning audio.
func (r *Recorder) Discard() {
	r.Stop()
}

// DeviceName reports the underlying capture device's name.
func (r *Recorder) DeviceName() string {
	return r.capture.DeviceName()
}

// chunkLevel computes the RMS of one chunk of little-endian int16
// samples, normalized to [0,1].
func chunkLevel(data []byte) float64 {
	var sumSquares float64
	n := 0
	for i := 0; i+1 < len(data); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(data[i:]))
		normalized := float64(sample) / 32768.0
		sumSquares += normalized * normalized
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Min(1, math.Sqrt(sumSquares/float64(n)))
}

package transcriber

import (
	"encoding/binary"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"dictate/encoder"
)

const (
	vadMode         = 3
	vadFrameMs      = 20
	vadFrameSamples = encoder.SampleRate * vadFrameMs / 1000
	// Fraction of frames that must carry voice for the recording to
	// count as speech.
	speechThreshold = 0.05
)

type speechGate struct {
	vad *webrtcvad.VAD
}

func newSpeechGate() (*speechGate, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(vadMode); err != nil {
		return nil, err
	}
	return &speechGate{vad: v}, nil
}

// HasSpeech runs the recording through the voice activity detector and
// reports whether enough frames carried voice.
func (g *speechGate) HasSpeech(samples []int16) bool {
	frame := make([]byte, vadFrameSamples*2)
	total, speech := 0, 0
	for i := 0; i+vadFrameSamples <= len(samples); i += vadFrameSamples {
		for j, s := range samples[i : i+vadFrameSamples] {
			binary.LittleEndian.PutUint16(frame[j*2:], uint16(s))
		}
		active, err := g.vad.Process(encoder.SampleRate, frame)
		if err != nil {
			continue
		}
		total++
		if active {
			speech++
		}
	}
	if total == 0 {
		return false
	}
	return float64(speech)/float64(total) >= speechThreshold
}

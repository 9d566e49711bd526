package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrEmptyAudio means the recording was too short to carry speech.
	ErrEmptyAudio = errors.New("transcriber: audio too short")
	// ErrNoSpeech means the recording contained no detectable voice.
	ErrNoSpeech = errors.New("transcriber: no speech detected")
	// ErrNotReady means the provider rejected the request for a
	// non-audio reason (auth, rate limit, network).
	ErrNotReady = errors.New("transcriber: provider unavailable")
)

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	Language() string
	Transcribe(ctx context.Context, samples []int16) (string, error)
}

// New picks a provider from the environment.
func New() (Transcriber, error) {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return NewGroq(key), nil
	}
	return nil, fmt.Errorf("set GROQ_API_KEY environment variable")
}

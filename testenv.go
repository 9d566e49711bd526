package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dictate/audio"
	"dictate/beep"
	"dictate/config"
	"dictate/encoder"
	"dictate/engine"
	"dictate/hotkey"
	"dictate/log"
	"dictate/paste"
	"dictate/transcriber"
)

// settleSink signals when a dictation attempt has reached a terminal
// outcome so the stdin driver can WAIT on it.
type settleSink struct {
	inner   engine.Sink
	settled chan struct{}
}

func (s *settleSink) signal() {
	select {
	case s.settled <- struct{}{}:
	default:
	}
}

func (s *settleSink) StateChanged(st engine.State) { s.inner.StateChanged(st) }
func (s *settleSink) RecordingStarted(id uint64)   { s.inner.RecordingStarted(id) }
func (s *settleSink) RecordingStopped(id uint64, seconds float64) {
	s.inner.RecordingStopped(id, seconds)
}
func (s *settleSink) RecordingCancelled(id uint64) {
	s.inner.RecordingCancelled(id)
	s.signal()
}
func (s *settleSink) TranscriptionDone(id uint64, text string, seconds float64) {
	s.inner.TranscriptionDone(id, text, seconds)
	fmt.Printf("TEXT %s\n", text)
	s.signal()
}
func (s *settleSink) TranscriptionFailed(id uint64, err error) {
	s.inner.TranscriptionFailed(id, err)
	fmt.Printf("ERROR %v\n", err)
	s.signal()
}
func (s *settleSink) PasteUndone() {
	s.inner.PasteUndone()
	fmt.Println("UNDONE")
}

// runTestMode drives the engine from stdin commands against a WAV
// file instead of a live microphone. One command per line: KEYDOWN,
// KEYUP, ESC, WAIT, SLEEP <ms>, QUIT.
func runTestMode(wavPath string, cfg config.Config, trans transcriber.Transcriber) {
	beep.Disable()
	defer log.Close()

	fakeCtx, err := audio.NewFakeContext(wavPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}

	capture, err := fakeCtx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate, Channels: encoder.Channels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	recorder := audio.NewRecorder(capture, nil)

	sender, err := paste.NewKeySender()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: paste init failed: %v (copy_only mode)\n", err)
		sender = nil
	}
	injector := paste.NewInjector(sender, cfg.AutoTypeMethod)

	dispatcher := transcriber.NewDispatcher(trans)
	defer dispatcher.Close()

	hk := hotkey.NewFake()
	base := &appSink{provider: trans.Name()}
	sink := &settleSink{inner: base, settled: make(chan struct{}, 1)}

	eng := engine.New(hk, recorder, dispatcher, injector, sink, engine.Options{
		Settings: func() engine.Settings {
			return engine.Settings{TrailingSpace: cfg.AddTrailingSpace}
		},
	})
	eng.Run()
	defer eng.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "", "#":
		case "KEYDOWN":
			hk.SimKeydown()
		case "KEYUP":
			hk.SimKeyup()
		case "ESC":
			hk.SimEscape()
		case "WAIT":
			<-sink.settled
		case "QUIT":
			log.SessionEnd(base.total())
			return
		default:
			if strings.HasPrefix(cmd, "SLEEP ") {
				if ms, err := strconv.Atoi(cmd[6:]); err == nil {
					time.Sleep(time.Duration(ms) * time.Millisecond)
				}
			} else {
				fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
			}
		}
	}
}

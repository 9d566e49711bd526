package main

import (
	"errors"
	"fmt"
	"sync/atomic"

	"dictate/beep"
	"dictate/engine"
	"dictate/history"
	"dictate/log"
	"dictate/transcriber"
)

// appSink fans engine events out to the TUI, the logs, the feedback
// tones, and the history store.
type appSink struct {
	store    *history.Store
	provider string
	count    atomic.Int64
}

func (s *appSink) StateChanged(st engine.State) {
	tuiSend(StateMsg{State: st})
}

func (s *appSink) RecordingStarted(session uint64) {
	log.RecordingStart(session, activeDeviceName())
	go beep.PlayStart()
}

func (s *appSink) RecordingStopped(session uint64, audioSeconds float64) {
	log.RecordingStop(session, audioSeconds)
	go beep.PlayEnd()
}

func (s *appSink) RecordingCancelled(session uint64) {
	log.RecordingCancel(session)
	go beep.PlayError()
}

func (s *appSink) TranscriptionDone(session uint64, text string, audioSeconds float64) {
	n := s.count.Add(1)
	log.Transcription(session, audioSeconds, len(text), s.provider)
	log.TranscriptionText(text)
	tuiSend(TranscriptionMsg{Text: text, Count: int(n)})
	go beep.PlayDone()

	if s.store != nil {
		if err := s.store.Add(text, audioSeconds, s.provider); err != nil {
			log.Warnf("history write failed: %v", err)
		}
	}
}

func (s *appSink) TranscriptionFailed(session uint64, err error) {
	if errors.Is(err, transcriber.ErrEmptyAudio) || errors.Is(err, transcriber.ErrNoSpeech) {
		log.Infof("session %d: %v", session, err)
		tuiSend(ErrorMsg{Text: "(no speech)"})
		return
	}
	log.Errorf("session %d: %v", session, err)
	tuiSend(ErrorMsg{Text: fmt.Sprintf("Error: %v", err)})
	go beep.PlayError()
}

func (s *appSink) PasteUndone() {
	log.PasteUndo()
	tuiSend(UndoneMsg{})
}

func (s *appSink) total() int {
	return int(s.count.Load())
}

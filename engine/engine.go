// Package engine drives the hold-to-dictate flow: a hotkey press
// starts recording, releasing it sends the audio for transcription,
// and the resulting text is injected into the focused application.
// Escape cancels a recording in progress or undoes a just-finished
// paste.
package engine

import (
	"sync"
	"time"

	"dictate/paste"
	"dictate/transcriber"
)

type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// KeySource delivers hotkey and Escape events.
type KeySource interface {
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
	Escape() <-chan struct{}
}

// Recorder owns microphone capture for one recording at a time.
type Recorder interface {
	Start() error
	Stop() []int16
	Discard()
}

// Dispatcher runs transcription jobs and reports results.
type Dispatcher interface {
	Submit(transcriber.Job)
	Results() <-chan transcriber.JobResult
}

// Injector places text into the focused application and can undo its
// most recent paste.
type Injector interface {
	Inject(text string, trailingSpace bool) error
	Undo() (bool, error)
	ClearRecord()
}

// Sink receives engine events for display and logging. Implementations
// must not block.
type Sink interface {
	StateChanged(s State)
	RecordingStarted(session uint64)
	RecordingStopped(session uint64, audioSeconds float64)
	RecordingCancelled(session uint64)
	TranscriptionDone(session uint64, text string, audioSeconds float64)
	TranscriptionFailed(session uint64, err error)
	PasteUndone()
}

// Settings is read fresh on every hotkey press so config edits take
// effect without a restart.
type Settings struct {
	TrailingSpace bool
}

type Options struct {
	// UndoWindow overrides how long a finished paste stays undoable.
	UndoWindow time.Duration
	// Settings supplies per-press options. Nil means defaults.
	Settings func() Settings
}

type Engine struct {
	keys KeySource
	rec  Recorder
	disp Dispatcher
	inj  Injector
	sink Sink

	undoWindow time.Duration
	settings   func() Settings

	// All state below is owned by the run goroutine.
	state       State
	session     uint64
	cancelled   bool
	cooldownSeq int
	timerCh     chan int

	closeOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
}

func New(keys KeySource, rec Recorder, disp Dispatcher, inj Injector, sink Sink, opts Options) *Engine {
	if sink == nil {
		sink = nopSink{}
	}
	if opts.UndoWindow == 0 {
		opts.UndoWindow = paste.UndoWindow
	}
	if opts.Settings == nil {
		opts.Settings = func() Settings { return Settings{TrailingSpace: true} }
	}
	return &Engine{
		keys:       keys,
		rec:        rec,
		disp:       disp,
		inj:        inj,
		sink:       sink,
		undoWindow: opts.UndoWindow,
		settings:   opts.Settings,
		state:      StateIdle,
		timerCh:    make(chan int, 4),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run starts the control loop. It returns immediately.
func (e *Engine) Run() {
	go e.loop()
}

// Close stops the control loop. A recording in progress is discarded.
func (e *Engine) Close() {
	e.closeOnce.Do(func() { close(e.done) })
	<-e.stopped
}

// State is only safe to call from Sink callbacks or after Close; the
// loop owns it.
func (e *Engine) State() State { return e.state }

func (e *Engine) loop() {
	defer close(e.stopped)
	for {
		select {
		case <-e.done:
			if e.state == StateRecording {
				e.rec.Discard()
			}
			return
		case <-e.keys.Keydown():
			e.handleKeydown()
		case <-e.keys.Keyup():
			e.handleKeyup()
		case <-e.keys.Escape():
			e.handleEscape()
		case res := <-e.disp.Results():
			e.handleResult(res)
		case seq := <-e.timerCh:
			e.handleCooldownExpired(seq)
		}
	}
}

func (e *Engine) setState(s State) {
	if e.state == s {
		return
	}
	e.state = s
	e.sink.StateChanged(s)
}

func (e *Engine) handleKeydown() {
	switch e.state {
	case StateIdle, StateCooldown:
		// A new recording abandons any pending undo window.
		if e.state == StateCooldown {
			e.cooldownSeq++
			e.inj.ClearRecord()
		}
		e.session++
		e.cancelled = false
		if err := e.rec.Start(); err != nil {
			e.sink.TranscriptionFailed(e.session, err)
			e.setState(StateIdle)
			return
		}
		e.setState(StateRecording)
		e.sink.RecordingStarted(e.session)
	default:
		// Repeat keydown while held, or a press mid-transcription.
	}
}

func (e *Engine) handleKeyup() {
	if e.state != StateRecording || e.cancelled {
		return
	}
	samples := e.rec.Stop()
	seconds := float64(len(samples)) / 16000
	e.sink.RecordingStopped(e.session, seconds)
	e.setState(StateTranscribing)
	e.disp.Submit(transcriber.Job{Session: e.session, Samples: samples})
}

func (e *Engine) handleEscape() {
	switch e.state {
	case StateRecording:
		e.cancelled = true
		e.rec.Discard()
		e.sink.RecordingCancelled(e.session)
		e.setState(StateIdle)
	case StateCooldown:
		e.cooldownSeq++
		if done, err := e.inj.Undo(); err == nil && done {
			e.sink.PasteUndone()
		}
		e.setState(StateIdle)
	default:
		// Idle and Transcribing: the key belongs to the focused app.
	}
}

func (e *Engine) handleResult(res transcriber.JobResult) {
	if res.Session != e.session || e.state != StateTranscribing || e.cancelled {
		// Stale result from an abandoned session.
		return
	}
	if res.Err != nil {
		e.sink.TranscriptionFailed(res.Session, res.Err)
		e.setState(StateIdle)
		return
	}

	s := e.settings()
	if err := e.inj.Inject(res.Text, s.TrailingSpace); err != nil {
		e.sink.TranscriptionFailed(res.Session, err)
		e.setState(StateIdle)
		return
	}

	e.sink.TranscriptionDone(res.Session, res.Text, res.AudioSeconds)
	e.setState(StateCooldown)

	e.cooldownSeq++
	seq := e.cooldownSeq
	time.AfterFunc(e.undoWindow, func() {
		select {
		case e.timerCh <- seq:
		case <-e.done:
		}
	})
}

func (e *Engine) handleCooldownExpired(seq int) {
	if e.state != StateCooldown || seq != e.cooldownSeq {
		return
	}
	e.inj.ClearRecord()
	e.setState(StateIdle)
}

type nopSink struct{}

func (nopSink) StateChanged(State)                        {}
func (nopSink) RecordingStarted(uint64)                   {}
func (nopSink) RecordingStopped(uint64, float64)          {}
func (nopSink) RecordingCancelled(uint64)                 {}
func (nopSink) TranscriptionDone(uint64, string, float64) {}
func (nopSink) TranscriptionFailed(uint64, error)         {}
func (nopSink) PasteUndone()                              {}

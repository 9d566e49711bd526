package transcriber

import (
	"context"
	"sync"
	"time"

	"dictate/encoder"
)

// MinAudio is the shortest recording worth sending to a provider.
// Anything shorter fails immediately with ErrEmptyAudio.
const MinAudio = 200 * time.Millisecond

const minSamples = int(MinAudio * encoder.SampleRate / time.Second)

type Job struct {
	Session uint64
	Samples []int16
}

type JobResult struct {
	Session      uint64
	Text         string
	AudioSeconds float64
	Err          error
}

// Dispatcher runs transcription jobs one at a time in submission
// order. Short and silent recordings are rejected without touching
// the provider.
type Dispatcher struct {
	t       Transcriber
	gate    *speechGate
	jobs    chan Job
	results chan JobResult

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(t Transcriber) *Dispatcher {
	d := &Dispatcher{
		t:       t,
		jobs:    make(chan Job, 8),
		results: make(chan JobResult, 8),
		done:    make(chan struct{}),
	}
	// A failed detector init just disables the silence gate.
	d.gate, _ = newSpeechGate()
	go d.run()
	return d
}

// Submit queues a job. It never blocks the caller for long: the queue
// is buffered and the worker drains it serially.
func (d *Dispatcher) Submit(job Job) {
	select {
	case d.jobs <- job:
	case <-d.done:
	}
}

func (d *Dispatcher) Results() <-chan JobResult { return d.results }

func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.done) })
}

func (d *Dispatcher) run() {
	for {
		select {
		case <-d.done:
			return
		case job := <-d.jobs:
			res := d.process(job)
			select {
			case d.results <- res:
			case <-d.done:
				return
			}
		}
	}
}

func (d *Dispatcher) process(job Job) JobResult {
	res := JobResult{
		Session:      job.Session,
		AudioSeconds: float64(len(job.Samples)) / encoder.SampleRate,
	}

	if len(job.Samples) < minSamples {
		res.Err = ErrEmptyAudio
		return res
	}
	if d.gate != nil && !d.gate.HasSpeech(job.Samples) {
		res.Err = ErrNoSpeech
		return res
	}

	text, err := d.t.Transcribe(context.Background(), job.Samples)
	res.Text = text
	res.Err = err
	return res
}

// Package shutdown registers the signals that should end a dictation
// session cleanly.
package shutdown

import (
	"os"
	"os/signal"
)

// Signals returns a channel that receives the first termination signal.
func Signals() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, terminationSignals()...)
	return ch
}

// Notify registers termination signals on a caller-owned channel.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, terminationSignals()...)
}

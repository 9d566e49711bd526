// Package beep plays short feedback tones for recording start, stop,
// completion, and errors.
package beep

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start beep: high pitch, short
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// End beep: medium pitch, slightly longer
	endFreq   = 900
	endVolume = 0.5
	endDecay  = 40

	// Done tick: bright and very short, played after text lands
	doneFreq   = 1500
	doneVolume = 0.4
	doneDecay  = 80

	// Error beep: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

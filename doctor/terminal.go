package doctor

import (
	"os"

	"dictate/shutdown"
)

// setupInterruptHandler restores the terminal before exiting, since the
// hotkey check may leave it in raw mode when interrupted.
func setupInterruptHandler() {
	ch := make(chan os.Signal, 1)
	shutdown.Notify(ch)
	go func() {
		<-ch
		resetTerminal()
		println("\ninterrupted")
		os.Exit(1)
	}()
}

//go:build windows

package shutdown

import "os"

func terminationSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

//go:build windows

package shutdown

import (
	"os"
	"os/signal"
)

// Notify registers ch for the signals that should end a dictation
// session cleanly. SIGTERM does not exist on Windows.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt)
}

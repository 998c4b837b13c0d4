package eval

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// IgnoreJobSignals makes the shell survive interrupt and quit from the
// terminal. The signals are swallowed through a notification channel rather
// than SIG_IGN, so spawned children still start with the default
// dispositions: an inherited SIG_IGN would survive spawn, a handler does
// not.
func IgnoreJobSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGINT, unix.SIGQUIT)
	go func() {
		for range ch {
		}
	}()
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context derived from parent that is
// cancelled on SIGINT or SIGTERM. A second signal is left to the default
// handler, so it terminates the process. Call stop to release the handler.
func SetupSignalHandler(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ReloadSignal returns a channel receiving SIGHUP, the conventional
// request to reload configuration. Call stop to release the handler.
func ReloadSignal() (ch <-chan os.Signal, stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	return sigChan, func() { signal.Stop(sigChan) }
}

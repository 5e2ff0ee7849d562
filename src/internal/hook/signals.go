package hook

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// WatchSignals forwards process signals to the bridge until ctx is
// done. SIGINT and SIGTERM report an Exit with the conventional
// 128+signal code; SIGHUP reports a Warning. Signals are reported, not
// acted on; termination stays with the host application.
func (b *Bridge) WatchSignals(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				switch sig {
				case syscall.SIGHUP:
					b.Warning(fmt.Sprintf("Received signal: %s", sig))
				case syscall.SIGINT, syscall.SIGTERM:
					if s, ok := sig.(syscall.Signal); ok {
						b.Exit(128 + int(s))
					}
				}
			}
		}
	}()
}

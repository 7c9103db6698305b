package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Alia5/KEYPER/engine"
	"github.com/Alia5/KEYPER/internal/log"
	"github.com/Alia5/KEYPER/keycode"
)

// Capture prints every key event as it is typed: device, scan code, virtual
// key and name. Strokes pass through unchanged, so the keyboard stays usable
// while capturing.
type Capture struct {
	Count   int           `help:"Stop after this many events (0 = until interrupted)." default:"0"`
	Timeout time.Duration `help:"Stop after this duration (0 = until interrupted)." default:"0"`
	Ups     bool          `help:"Also print key-up events."`
}

func (c *Capture) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	eng := engine.New(engine.Config{}, logger, rawLogger)
	events := make(chan engine.KeyEvent, 64)
	eng.SetMonitor(events)
	if err := eng.Start(); err != nil {
		return err
	}
	defer func() { _ = eng.Stop() }()

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println("press keys to identify them, Ctrl+C to stop")
	}

	seen := 0
	for {
		select {
		case <-ctx.Done():
			return eng.Stop()
		case ev := <-events:
			if ev.KeyUp && !c.Ups {
				continue
			}
			transition := "down"
			if ev.KeyUp {
				transition = "up  "
			}
			fmt.Printf("kbd%d  %s  scan=0x%02X  vk=0x%02X  %s\n",
				ev.Device, transition, ev.ScanCode, ev.VKCode, keycode.Name(ev.VKCode))
			seen++
			if c.Count > 0 && seen >= c.Count {
				return eng.Stop()
			}
		}
	}
}

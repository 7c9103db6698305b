package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/KEYPER/driver"
	"github.com/Alia5/KEYPER/engine"
	"github.com/Alia5/KEYPER/internal/configpaths"
	"github.com/Alia5/KEYPER/internal/log"
	"github.com/Alia5/KEYPER/internal/profile"
)

// Run is the main command: load the profile, start the interception engine,
// and remap until interrupted.
type Run struct {
	Profile     string        `help:"Path to the remap profile (defaults to the per-user profile)." env:"KEYPER_PROFILE"`
	NoWatch     bool          `help:"Do not reload the profile when the file changes." env:"KEYPER_NO_WATCH"`
	StopTimeout time.Duration `help:"How long to wait for the dispatch loop on shutdown." default:"2s" env:"KEYPER_STOP_TIMEOUT"`
}

// Run is called by kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.runEngine(ctx, logger, rawLogger)
}

func (r *Run) runEngine(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	profilePath, err := r.profilePath()
	if err != nil {
		return err
	}
	prof, err := profile.Load(profilePath)
	if err != nil {
		return err
	}
	logger.Info("profile loaded", "path", profilePath, "mappings", len(prof.Mappings))

	eng := engine.New(engine.Config{StopTimeout: r.StopTimeout}, logger, rawLogger)
	if err := prof.Apply(eng); err != nil {
		return fmt.Errorf("invalid profile %s: %w", profilePath, err)
	}

	if err := eng.Start(); err != nil {
		if errors.Is(err, driver.ErrDriverMissing) {
			logger.Error("the Interception driver is not installed; install it and reboot")
		}
		return err
	}
	defer func() { _ = eng.Stop() }()

	for _, d := range eng.Devices() {
		logger.Info("keyboard attached", "device", d.Index, "name", d.DisplayName())
	}

	var updates <-chan profile.Profile
	if !r.NoWatch {
		updates, err = profile.Watch(ctx, profilePath, logger)
		if err != nil {
			// Live reload is a convenience; remapping still works without it.
			logger.Warn("profile watching unavailable", "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return eng.Stop()
		case p, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if err := p.Apply(eng); err != nil {
				logger.Warn("reloaded profile rejected, keeping previous mappings", "error", err)
				continue
			}
			logger.Info("profile applied", "mappings", len(p.Mappings), "enabled", p.Enabled)
		}
	}
}

func (r *Run) profilePath() (string, error) {
	if r.Profile != "" {
		return r.Profile, nil
	}
	path, err := configpaths.DefaultProfilePath()
	if err != nil {
		return "", fmt.Errorf("resolve profile path: %w", err)
	}
	return path, nil
}

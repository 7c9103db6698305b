package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Alia5/KEYPER/driver"
	"github.com/Alia5/KEYPER/engine"
	"github.com/Alia5/KEYPER/internal/log"
)

// Devices lists attached keyboards. Enumeration only probes device metadata;
// no filter is installed, so no keystroke is intercepted.
type Devices struct {
	JSON bool `help:"Emit the device list as JSON."`
}

func (d *Devices) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	eng := engine.New(engine.Config{}, logger, rawLogger)
	if err := eng.RefreshDevices(); err != nil {
		if errors.Is(err, driver.ErrDriverMissing) {
			logger.Error("the Interception driver is not installed; install it and reboot")
		}
		return err
	}
	defer func() { _ = eng.Stop() }()

	devices := eng.Devices()
	if d.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	}

	if len(devices) == 0 {
		fmt.Println("no keyboards found")
		return nil
	}
	for _, dev := range devices {
		fmt.Printf("%2d  %-40s  %s\n", dev.Index, dev.DisplayName(), dev.HardwareID)
	}
	return nil
}

// Package config defines the command-line surface parsed by kong.
package config

import (
	"github.com/Alia5/KEYPER/internal/cmd"
)

// LogConfig groups the logging flags shared by all commands.
type LogConfig struct {
	Level   string `help:"Log level (trace|debug|info|warn|error). Trace dumps raw stroke traffic to stdout." enum:"trace,debug,info,warn,error" default:"info" env:"KEYPER_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of the console." env:"KEYPER_LOG_FILE"`
	RawFile string `help:"Write raw stroke traffic (hex, one line per stroke) to this file." env:"KEYPER_RAW_LOG_FILE"`
}

// CLI is the root command. Values come from flags, environment, or a
// JSON/YAML/TOML config file, in that priority order.
type CLI struct {
	Log        LogConfig `embed:"" prefix:"log."`
	ConfigPath string    `name:"config" help:"Path to a configuration file." env:"KEYPER_CONFIG"`

	Run     cmd.Run           `cmd:"" default:"withargs" help:"Run the remapping engine (default)."`
	Devices cmd.Devices       `cmd:"" help:"List attached keyboards with their device index and hardware id."`
	Capture cmd.Capture       `cmd:"" help:"Print key events as they are typed, for identifying keys and devices."`
	Config  cmd.ConfigCommand `cmd:"" help:"Configuration and profile utilities."`
}

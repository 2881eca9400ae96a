/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared helpers for the commands: configuration loading, logger setup and
coloured console output.
*/

package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/kleascm/akaylee-boundary/pkg/config"
	"github.com/kleascm/akaylee-boundary/pkg/logging"
	"github.com/spf13/viper"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
	labelColor = color.New(color.FgCyan)
)

// LoadConfig resolves the configuration from file, environment and flags
func LoadConfig(v *viper.Viper) (config.Config, error) {
	cfg, err := config.Load(v, v.GetString("config"))
	if err != nil {
		return config.Config{}, err
	}
	if v.GetBool("no_color") {
		cfg.Log.Colors = false
		color.NoColor = true
	}
	return cfg, nil
}

// SetupLogging creates the logger described by cfg, writing console output to w
func SetupLogging(cfg config.Config, w io.Writer) (*logging.Logger, error) {
	logger, err := logging.NewLogger(cfg.Log, w)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

func printField(w io.Writer, label string, value interface{}) {
	fmt.Fprintf(w, "  %s %v\n", labelColor.Sprintf("%-12s", label+":"), value)
}

package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/pranayvarade/livefolio/internal/config"
	"github.com/pranayvarade/livefolio/pkg/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "livefolio",
	Short: "Interactive portfolio server",
	Long: `livefolio serves a single-page portfolio whose interaction state
(scroll tracking, navigation, theme, menu, project filter and contact form)
lives on the server and is kept in sync with the browser over a WebSocket.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the config file and environment. --verbose forces
// debug logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*logging.SlogLogger, error) {
	logger, err := logging.New(cfg.Level, cfg.JSON, w)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}

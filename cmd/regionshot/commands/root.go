package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/regionshot/internal/config"
	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	savePath string
	rootCmd  = &cobra.Command{
		Use:   "regionshot",
		Short: "regionshot - Select a screen region and capture it",
		Long: `regionshot freezes every monitor, lets you drag a rectangle across one or
more of them, and saves the selected pixels.

Features:
  • Multi-monitor selection in global logical coordinates
  • Native-resolution crops from a single monitor
  • X11, cross-platform and XDG portal capture backends
  • Save to a file or directory, pipe to stdout, copy to the clipboard
  • Persistent configuration`,
		Example: `  # Save the selection to a file
  regionshot --save-path shot.png

  # Save into a directory with a timestamped name and copy it
  regionshot --save-dir ~/Pictures --copy

  # Pipe the selection to another program
  regionshot --stdout | feh -`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// flagKeys maps root flags onto configuration keys
var flagKeys = map[string]string{
	"log-level": "log_level",
	"save-dir":  "output.save_dir",
	"stdout":    "output.stdout",
	"copy":      "output.copy",
	"format":    "output.format",
	"backend":   "capture.backend",
}

func init() {
	rootCmd.RunE = runCapture

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/regionshot/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	rootCmd.Flags().StringVarP(&savePath, "save-path", "o", "", "save the capture to this file")
	rootCmd.Flags().StringP("save-dir", "d", "", "save the capture into this directory with a timestamped name")
	rootCmd.Flags().Bool("stdout", false, "write the capture to stdout as PNG")
	rootCmd.Flags().BoolP("copy", "c", false, "copy the capture to the clipboard")
	rootCmd.Flags().StringP("format", "f", "", "image format when the path has no extension (png, jpeg, bmp, tiff)")
	rootCmd.Flags().String("backend", "", "capture backend (auto, x11, screenshot, portal)")
}

// loadConfig loads the config file and lets flags set on cmd override it
func loadConfig(cmd *cobra.Command) (*config.Manager, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := bindFlags(cmd, configMgr.GetViper()); err != nil {
		return nil, err
	}
	if err := configMgr.Get().Validate(); err != nil {
		return nil, err
	}
	return configMgr, nil
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for flag, key := range flagKeys {
		// Subcommands reuse names like --format for their own flags
		f := cmd.Flags().Lookup(flag)
		if f == nil || (f != rootCmd.Flags().Lookup(flag) && f != rootCmd.PersistentFlags().Lookup(flag)) {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func initLogging(cfg *config.Config) {
	logger.Init(cfg.LogLevel, cfg.LogPretty)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

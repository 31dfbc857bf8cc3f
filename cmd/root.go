// Package cmd is the relocation engine's cobra CLI: a "relocate" root
// command with "multi" and "single" subcommands driving the two data-flow
// modes the engine supports.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/logging"
)

var (
	configPath string
	rootDebug  bool
	settings   *conf.Settings
)

// RootCommand creates and returns the root command.
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "relocate",
		Short: "double-difference earthquake relocation engine",
	}

	if err := setupFlags(root); err != nil {
		panic(err) // flag binding only fails on a programming error
	}

	root.AddCommand(multiCommand(), singleCommand())

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}

		s, err := conf.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if rootDebug {
			s.Debug = true
		}
		conf.SetSetting(s)
		settings = s

		logging.Init()
		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
		return nil
	}

	return root
}

// setupFlags defines flags global to the command line interface.
func setupFlags(root *cobra.Command) error {
	root.PersistentFlags().StringVar(&configPath, "config", viper.GetString("config"), "path to a YAML settings file")
	root.PersistentFlags().BoolVarP(&rootDebug, "debug", "d", viper.GetBool("debug"), "enable debug logging")

	if err := viper.BindPFlags(root.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rickgao/botrelay/internal/version"
)

const defaultConfigPath = "configs/botrelay.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var debug bool

	root := &cobra.Command{
		Use:           "botrelay",
		Short:         "Message router for chat-bot relays",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			// Set up structured logging
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)
		},
	}
	root.Version = version.String()
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(routesCmd(&configPath))
	root.AddCommand(formatsCmd(&configPath))
	root.AddCommand(colorsCmd(&configPath))
	root.AddCommand(versionCmd())
	return root
}

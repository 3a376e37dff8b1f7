package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use: "protocolcontrol",
	Long: `
	protocolcontrol serves a chat protocol with every connection's messages
	open to ordered, cancellable subscribers
`,
	Example: `  $ protocolcontrol run --config protocolcontrol.json
  $ protocolcontrol serve --listen :25565 --filter creeper
  $ protocolcontrol inspect`,

	SilenceUsage: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
	rootCmd.AddCommand(runCmd, serveCmd, inspectCmd)
}

func logger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return config.Build()
}

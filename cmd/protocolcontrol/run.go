package main

import (
	"os"

	"github.com/caddyserver/caddy/v2"
	"github.com/spf13/cobra"

	"gfx.cafe/gfx/protocolcontrol/lib/util/beforeexit"
)

var runConfig string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs a caddy JSON config holding the protocolcontrol app",
	Long: `
	Loads a caddy JSON config, for example

	{"apps": {"protocolcontrol": {"listen": [":25565"], "chat": {"log": true}}}}

	and runs it until interrupted.
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := os.ReadFile(runConfig)
		if err != nil {
			return err
		}
		if err = caddy.Load(data, true); err != nil {
			return err
		}
		beforeexit.Run(func() {
			_ = caddy.Stop()
		})

		select {}
	},
}

func init() {
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "protocolcontrol.json", "caddy JSON config file")
}

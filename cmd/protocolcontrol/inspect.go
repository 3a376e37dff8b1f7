package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/packets"
	"gfx.cafe/gfx/protocolcontrol/lib/structure"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Prints the fields of every message kind with the ordinals used to access them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, kind := range packets.Catalog().Kinds() {
			for _, direction := range [...]catalog.Direction{catalog.Incoming, catalog.Outgoing} {
				typ := kind.Type(direction)
				if typ == nil {
					continue
				}
				s, skipped, err := structure.Build(typ.Elem())
				if err != nil {
					return err
				}

				fmt.Fprintf(w, "%s\t%s\t%s\n", kind.Name, direction, typ)
				for _, h := range s.Fields() {
					fmt.Fprintf(w, "\t%s\t%s\t#%d\n", h.Name, h.Type, h.Ordinal)
				}
				for _, skip := range skipped {
					fmt.Fprintf(w, "\t%s\tskipped\t%s\n", skip.Field, skip.Reason)
				}
			}
		}
		return w.Flush()
	},
}

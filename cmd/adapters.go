package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diskforge/diskforge/registry"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List every registered format adapter",
	Run: func(cmd *cobra.Command, args []string) {
		for _, a := range registry.Default.All() {
			c := a.Capability()
			fmt.Printf("%-14s rw=%v%v create=%v  %s\n", c.Name, boolChar(c.CanRead), boolChar(c.CanWrite), c.CanCreate, c.Description)
		}
	},
}

func init() {
	RootCmd.AddCommand(adaptersCmd)
}

func boolChar(b bool) string {
	if b {
		return "x"
	}
	return "-"
}

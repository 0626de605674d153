package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diskforge/diskforge/registry"
)

var probeCmd = &cobra.Command{
	Use:   "probe <image-file>",
	Short: "Identify a disk image's format and print every scored candidate",
	Long: `Probe reads a file and reports every registered format adapter's
score against it, highest first, the same ranking registry.Open uses
to pick a format automatically.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runProbe(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	RootCmd.AddCommand(probeCmd)
}

func runProbe(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	candidates := registry.Default.DetectAll(data, filename)
	if len(candidates) == 0 {
		fmt.Printf("%s: no adapter matched (all scores below %d)\n", filename, registry.DetectionThreshold)
		return nil
	}
	for _, c := range candidates {
		capability := c.Adapter.Capability()
		fmt.Printf("%-14s score=%-3d %s\n", capability.Name, c.Score.Total, capability.Description)
		for _, m := range c.Score.Matches {
			sign := "+"
			if !m.Positive {
				sign = "-"
			}
			fmt.Printf("    %s %-8s %-6v %s\n", sign, m.Field, m.Weight, m.Evidence)
		}
	}
	return nil
}

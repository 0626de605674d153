package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "diskforge",
	Short: "Identify, inspect, and convert disk and flux image formats",
	Long: `diskforge is a commandline tool for working with vintage disk
and flux image formats: raw sectors, GCR/MFM bitstreams, and
KryoFlux/SuperCardPro-class flux captures, across the Apple II,
Commodore, Atari, Amiga, and PC families.`,
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

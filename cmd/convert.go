package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diskforge/diskforge/registry"
)

var convertDebug bool

var convertCmd = &cobra.Command{
	Use:   "convert <src-image> <target-format> <dst-image>",
	Short: "Convert a disk image from one format to another",
	Long: `Convert probes src-image to find its format, reads every track, and
re-encodes it as target-format (an adapter name, as printed by
"diskforge adapters"), writing the result to dst-image. Information the
target format can't represent (flux timing, per-sector controller
status) is reported as a warning rather than failing the conversion.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runConvert(args[0], args[1], args[2]); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	convertCmd.Flags().BoolVar(&convertDebug, "debug", false, "enable verbose adapter diagnostics")
	RootCmd.AddCommand(convertCmd)
}

func runConvert(srcPath, targetFormat, dstPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	result, err := registry.Default.Convert(data, srcPath, targetFormat, convertDebug)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dstPath, result.Bytes, 0644); err != nil {
		return err
	}
	if result.Lossy {
		fmt.Fprintln(os.Stderr, "warning: conversion lost information:")
		for _, n := range result.Notices {
			fmt.Fprintf(os.Stderr, "  - %s\n", n)
		}
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diskforge/diskforge/dos3"
	"github.com/diskforge/diskforge/types"
)

// filesystemFactories is tried in order against a raw disk-sector image
// to find an operator, mirroring zellyn/diskii's OperatorFactory-list
// dispatch (lib/disk.go's operatorFactories, now local to the command
// layer since registry.Adapter absorbed the container-format half of
// that job).
var filesystemFactories = []types.OperatorFactory{
	dos3.OperatorFactory{},
}

var catalogDebug bool

var catalogCmd = &cobra.Command{
	Use:     "catalog <disk-image> [subdir]",
	Aliases: []string{"cat", "ls"},
	Short:   "Print a list of files on a DOS 3.3 disk image",
	Args:    cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCatalog(args); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogDebug, "debug", false, "enable verbose operator diagnostics")
	RootCmd.AddCommand(catalogCmd)
}

func operatorFor(diskbytes []byte, debug bool) (types.Operator, error) {
	for _, factory := range filesystemFactories {
		if factory.SeemsToMatch(diskbytes, debug) {
			return factory.Operator(diskbytes, debug)
		}
	}
	return nil, fmt.Errorf("no filesystem operator recognized this disk image")
}

func runCatalog(args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	op, err := operatorFor(data, catalogDebug)
	if err != nil {
		return err
	}
	subdir := ""
	if len(args) == 2 {
		if !op.HasSubdirs() {
			return fmt.Errorf("disks of type %q cannot have subdirectories", op.Name())
		}
		subdir = args[1]
	}
	descriptors, err := op.Catalog(subdir)
	if err != nil {
		return err
	}
	for _, d := range descriptors {
		fmt.Printf("%-30s %-4s %6d blocks  %d bytes\n", d.Name, d.Type, d.Blocks, d.Length)
	}
	return nil
}

package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/relicfs/relicfs/vfs"
)

// NewInfoCmd creates and returns the info subcommand for the relicfs
// CLI. It lists the supported archive formats.
func NewInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "List supported archive formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runInfo()
		},
	}
}

func runInfo() {
	fsys, err := vfs.New()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer fsys.Close()

	fmt.Println("Supported archive types:")
	for _, info := range fsys.SupportedArchiveTypes() {
		fmt.Printf(" * %s: %s\n", info.Extension, info.Description)
		fmt.Printf("   %s\n", info.URL)
		if info.SupportsSymlinks {
			fmt.Println("   Supports symbolic links.")
		} else {
			fmt.Println("   Does not support symbolic links.")
		}
	}
	fmt.Println(" * (directories are mounted natively, no archiver needed)")
}

package cmd

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// NewCatCmd creates and returns the cat subcommand for the relicfs CLI.
// It streams one virtual file to stdout.
func NewCatCmd() *cobra.Command {
	var (
		sources       []string
		bufferSize    int
		allowSymlinks bool
	)

	cmd := &cobra.Command{
		Use:   "cat PATH",
		Short: "Write a virtual file to standard output",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runCat(sources, args[0], bufferSize, allowSymlinks)
		},
	}

	cmd.Flags().StringArrayVarP(&sources, "archive", "a", nil, "Source to mount, repeatable; first wins (required)")
	cmd.Flags().IntVarP(&bufferSize, "buffer", "b", 0, "Read-ahead buffer size in bytes (0 disables buffering)")
	cmd.Flags().BoolVarP(&allowSymlinks, "symlinks", "s", false, "Permit symbolic link traversal in directory mounts")

	cmd.MarkFlagRequired("archive")

	return cmd
}

func runCat(sources []string, name string, bufferSize int, allowSymlinks bool) {
	fsys, err := buildStack(sources, "/", allowSymlinks)
	if err != nil {
		log.Fatalf("Failed to assemble mount stack: %v", err)
	}
	defer fsys.Close()

	f, err := fsys.OpenRead(name)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", name, err)
	}
	defer f.Close()

	if bufferSize > 0 {
		if err := f.SetBuffer(bufferSize); err != nil {
			log.Fatalf("Failed to set buffer: %v", err)
		}
	}

	if _, err := io.Copy(os.Stdout, f); err != nil {
		log.Fatalf("Failed to read %s: %v", name, err)
	}
}

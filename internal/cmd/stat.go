package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// NewStatCmd creates and returns the stat subcommand for the relicfs
// CLI. It describes one virtual path.
func NewStatCmd() *cobra.Command {
	var (
		sources       []string
		allowSymlinks bool
	)

	cmd := &cobra.Command{
		Use:   "stat PATH",
		Short: "Describe a virtual path",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runStat(sources, args[0], allowSymlinks)
		},
	}

	cmd.Flags().StringArrayVarP(&sources, "archive", "a", nil, "Source to mount, repeatable; first wins (required)")
	cmd.Flags().BoolVarP(&allowSymlinks, "symlinks", "s", false, "Permit symbolic link traversal in directory mounts")

	cmd.MarkFlagRequired("archive")

	return cmd
}

func runStat(sources []string, name string, allowSymlinks bool) {
	fsys, err := buildStack(sources, "/", allowSymlinks)
	if err != nil {
		log.Fatalf("Failed to assemble mount stack: %v", err)
	}
	defer fsys.Close()

	st, err := fsys.Stat(name)
	if err != nil {
		log.Fatalf("Failed to stat %s: %v (code %v)", name, err, fsys.LastErrorCode())
	}

	fmt.Printf("Path:      %s\n", name)
	fmt.Printf("Type:      %s\n", st.Type)
	fmt.Printf("Size:      %d\n", st.Size)
	fmt.Printf("ReadOnly:  %v\n", st.ReadOnly)
	if !st.ModTime.IsZero() {
		fmt.Printf("Modified:  %s\n", st.ModTime)
	}
	if !st.CreateTime.IsZero() {
		fmt.Printf("Created:   %s\n", st.CreateTime)
	}
	if source, err := fsys.RealDir(name); err == nil {
		fmt.Printf("Source:    %s\n", source)
	}
}

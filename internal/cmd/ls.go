package cmd

import (
	"fmt"
	"log"
	"path"

	"github.com/spf13/cobra"
	"github.com/taigrr/colorhash"

	"github.com/relicfs/relicfs/archive"
)

// NewLsCmd creates and returns the ls subcommand for the relicfs CLI.
// It lists a virtual directory merged across the mount stack.
func NewLsCmd() *cobra.Command {
	var (
		sources       []string
		longFormat    bool
		noColor       bool
		allowSymlinks bool
	)

	cmd := &cobra.Command{
		Use:   "ls [PATH]",
		Short: "List a virtual directory across all mounted sources",
		Long: `List the contents of a virtual directory. Entries from every source
are merged, sorted, and de-duplicated; each row is colored by the
source that wins the lookup so overlay provenance is visible.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dir := "/"
			if len(args) == 1 {
				dir = args[0]
			}
			runLs(sources, dir, longFormat, noColor, allowSymlinks)
		},
	}

	cmd.Flags().StringArrayVarP(&sources, "archive", "a", nil, "Source to mount, repeatable; first wins (required)")
	cmd.Flags().BoolVarP(&longFormat, "long", "l", false, "Show type, size, and winning source")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable source-based row coloring")
	cmd.Flags().BoolVarP(&allowSymlinks, "symlinks", "s", false, "Permit symbolic link traversal in directory mounts")

	cmd.MarkFlagRequired("archive")

	return cmd
}

// sourceColor picks a stable ANSI 256 color for a mount source name.
func sourceColor(source string) int {
	// Avoid the first 16 palette slots; several are unreadable on
	// common terminal themes.
	h := colorhash.HashString(source) % 216
	if h < 0 {
		h += 216
	}
	return 16 + h
}

func runLs(sources []string, dir string, longFormat, noColor, allowSymlinks bool) {
	fsys, err := buildStack(sources, "/", allowSymlinks)
	if err != nil {
		log.Fatalf("Failed to assemble mount stack: %v", err)
	}
	defer fsys.Close()

	names, err := fsys.EnumerateNames(dir)
	if err != nil {
		log.Fatalf("Failed to list %s: %v", dir, err)
	}

	for _, name := range names {
		full := path.Join(dir, name)
		source, err := fsys.RealDir(full)
		if err != nil {
			source = "?"
		}

		line := name
		if longFormat {
			st, err := fsys.Stat(full)
			switch {
			case err != nil:
				line = fmt.Sprintf("?          ? %s", name)
			case st.Type == archive.TypeDirectory:
				line = fmt.Sprintf("dir        - %s/ (%s)", name, source)
			default:
				line = fmt.Sprintf("%-4s %8d %s (%s)", st.Type, st.Size, name, source)
			}
		}

		if noColor {
			fmt.Println(line)
		} else {
			fmt.Printf("\x1b[38;5;%dm%s\x1b[0m\n", sourceColor(source), line)
		}
	}
}

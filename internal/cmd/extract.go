package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relicfs/relicfs/vfs"
)

// NewExtractCmd creates and returns the extract subcommand for the
// relicfs CLI. It copies the virtual tree out to a host directory.
func NewExtractCmd() *cobra.Command {
	var (
		sources       []string
		subtree       string
		allowSymlinks bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "extract DEST",
		Short: "Copy the virtual tree to a host directory",
		Long: `Walk the assembled virtual tree and copy every file into DEST,
recreating the directory structure. Use --path to extract a subtree
instead of the whole tree.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runExtract(sources, subtree, args[0], allowSymlinks, verbose)
		},
	}

	cmd.Flags().StringArrayVarP(&sources, "archive", "a", nil, "Source to mount, repeatable; first wins (required)")
	cmd.Flags().StringVarP(&subtree, "path", "p", "/", "Virtual subtree to extract")
	cmd.Flags().BoolVarP(&allowSymlinks, "symlinks", "s", false, "Permit symbolic link traversal in directory mounts")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print each file as it is extracted")

	cmd.MarkFlagRequired("archive")

	return cmd
}

func runExtract(sources []string, subtree, dest string, allowSymlinks, verbose bool) {
	fsys, err := buildStack(sources, "/", allowSymlinks)
	if err != nil {
		log.Fatalf("Failed to assemble mount stack: %v", err)
	}
	defer fsys.Close()

	count, err := extractTree(fsys, subtree, dest, verbose)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	fmt.Printf("Extracted %d files to %s\n", count, dest)
}

func extractTree(fsys *vfs.FS, dir, dest string, verbose bool) (int, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, err
	}
	names, err := fsys.EnumerateNames(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, name := range names {
		virt := path.Join(dir, name)
		host := filepath.Join(dest, name)
		if fsys.IsDirectory(virt) {
			n, err := extractTree(fsys, virt, host, verbose)
			count += n
			if err != nil {
				return count, err
			}
			continue
		}
		if err := extractFile(fsys, virt, host); err != nil {
			return count, fmt.Errorf("%s: %w", virt, err)
		}
		if verbose {
			fmt.Println(virt)
		}
		count++
	}
	return count, nil
}

func extractFile(fsys *vfs.FS, virt, host string) error {
	src, err := fsys.OpenRead(virt)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(host)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

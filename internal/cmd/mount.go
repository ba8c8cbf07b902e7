package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	_ "bazil.org/fuse/fs/fstestutil"
	"github.com/spf13/cobra"

	"github.com/relicfs/relicfs/relicfuse"
	"github.com/relicfs/relicfs/version"
)

// NewMountCmd creates and returns the mount subcommand for the relicfs
// CLI. It serves an assembled mount stack as a read-only FUSE
// filesystem.
func NewMountCmd() *cobra.Command {
	var (
		mountPoint    string
		allowSymlinks bool
	)

	cmd := &cobra.Command{
		Use:   "mount SOURCE... MOUNTPOINT",
		Short: "Serve archives and directories as one FUSE filesystem",
		Long: `Mount one or more sources (archive files or host directories) into a
single virtual tree and serve it at MOUNTPOINT over FUSE.

Sources are mounted in the order given; the first source listed wins
when the same virtual path exists in several of them.`,
		Args: cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runMount(args[:len(args)-1], args[len(args)-1], mountPoint, allowSymlinks)
		},
	}

	cmd.Flags().StringVarP(&mountPoint, "point", "p", "/", "Virtual mount point for the sources")
	cmd.Flags().BoolVarP(&allowSymlinks, "symlinks", "s", false, "Permit symbolic link traversal in directory mounts")

	return cmd
}

func runMount(sources []string, mountpoint, virtualPoint string, allowSymlinks bool) {
	fmt.Printf("relicfs %s starting...\n", version.GetFullVersion())

	fsys, err := buildStack(sources, virtualPoint, allowSymlinks)
	if err != nil {
		log.Fatalf("Failed to assemble mount stack: %v", err)
	}
	defer fsys.Close()

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("relicfs"),
		fuse.Subtype("relicfs"),
		fuse.ReadOnly(),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, shutting down...")

		fuse.Unmount(mountpoint)
		c.Close()
		fsys.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()

	log.Printf("relicfs %s mounted at %s (%d sources)", version.GetVersion(), mountpoint, len(sources))
	err = fs.Serve(c, relicfuse.New(fsys))
	if err != nil {
		log.Fatal(err)
	}
}

package cmd

import (
	"github.com/relicfs/relicfs/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the relicfs
// CLI. It sets up all subcommands, command groups, and basic
// configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relicfs",
		Short: "relicfs - a stacked virtual filesystem over legacy archive formats",
		Long: `relicfs assembles archive files (GRP, PAK, HOG, MVL, WAD) and host
directories into a single virtual tree. Mounts stack in priority order,
so a file present in several sources resolves to the frontmost one.

Use subcommands to work with the virtual tree:
  - mount: serve an assembled tree as a read-only FUSE filesystem
  - ls/cat/stat: inspect the virtual tree from the command line
  - extract: copy the virtual tree out to a host directory
  - info: list the supported archive formats
  - seed: generate sample archives for experimentation`,
		Version: version.GetFullVersion(),
	}

	groupFilesystem := "filesystem"
	groupUtilities := "utilities"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	mountCmd := NewMountCmd()
	lsCmd := NewLsCmd()
	catCmd := NewCatCmd()
	statCmd := NewStatCmd()
	extractCmd := NewExtractCmd()
	infoCmd := NewInfoCmd()
	seedCmd := NewSeedCmd()

	mountCmd.GroupID = groupFilesystem
	lsCmd.GroupID = groupFilesystem
	catCmd.GroupID = groupFilesystem
	statCmd.GroupID = groupFilesystem
	extractCmd.GroupID = groupUtilities
	infoCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities

	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(seedCmd)

	return rootCmd
}

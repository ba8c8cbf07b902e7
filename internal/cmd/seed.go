package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates and returns the seed subcommand for the relicfs
// CLI. It generates small sample archives for experimentation.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath string
		fileCount  int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate sample archives for experimentation",
		Long: `Generate one sample archive in each of three formats (GRP, PAK,
WAD) in the output directory. Each archive member holds a UUID line, so
mounting the archives gives distinguishable content to poke at with
ls, cat, and stat.`,
		Run: func(cmd *cobra.Command, args []string) {
			runSeed(outputPath, fileCount, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&fileCount, "count", "c", 8, "Number of members per archive")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

// seedEntry is one member of a generated archive.
type seedEntry struct {
	name string
	data []byte
}

func runSeed(outputPath string, fileCount int, verbose bool) {
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	entries := make([]seedEntry, fileCount)
	for i := range entries {
		entries[i] = seedEntry{
			name: fmt.Sprintf("FILE%d.TXT", i),
			data: []byte(uuid.New().String() + "\n"),
		}
	}

	archives := []struct {
		name  string
		build func([]seedEntry) []byte
	}{
		{"sample.grp", buildGRP},
		{"sample.pak", buildPAK},
		{"sample.wad", buildWAD},
	}
	for _, a := range archives {
		target := filepath.Join(outputPath, a.name)
		if err := os.WriteFile(target, a.build(entries), 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", target, err)
		}
		if verbose {
			fmt.Printf("Wrote %s (%d members)\n", target, len(entries))
		}
	}
	fmt.Printf("Generated %d archives in %s\n", len(archives), outputPath)
}

// buildGRP assembles a Build engine groupfile image: "KenSilverman",
// member count, then name[12]/size[4] records followed by the packed
// member data.
func buildGRP(entries []seedEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString("KenSilverman")
	le32(&buf, uint32(len(entries)))
	for _, e := range entries {
		writeFixed(&buf, e.name, 12)
		le32(&buf, uint32(len(e.data)))
	}
	for _, e := range entries {
		buf.Write(e.data)
	}
	return buf.Bytes()
}

// buildPAK assembles a Quake PAK image: header pointing at a trailing
// directory of name[56]/pos[4]/size[4] records with absolute positions.
func buildPAK(entries []seedEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString("PACK")
	dataStart := 12
	dataLen := 0
	for _, e := range entries {
		dataLen += len(e.data)
	}
	le32(&buf, uint32(dataStart+dataLen)) // directory offset
	le32(&buf, uint32(64*len(entries)))   // directory length
	for _, e := range entries {
		buf.Write(e.data)
	}
	pos := dataStart
	for _, e := range entries {
		writeFixed(&buf, e.name, 56)
		le32(&buf, uint32(pos))
		le32(&buf, uint32(len(e.data)))
		pos += len(e.data)
	}
	return buf.Bytes()
}

// buildWAD assembles a Doom PWAD image: header pointing at a trailing
// directory of pos[4]/size[4]/name[8] records. WAD lump names are at
// most 8 bytes, so member names are truncated.
func buildWAD(entries []seedEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString("PWAD")
	dataStart := 12
	dataLen := 0
	for _, e := range entries {
		dataLen += len(e.data)
	}
	le32(&buf, uint32(len(entries)))
	le32(&buf, uint32(dataStart+dataLen)) // directory offset
	for _, e := range entries {
		buf.Write(e.data)
	}
	pos := dataStart
	for _, e := range entries {
		le32(&buf, uint32(pos))
		le32(&buf, uint32(len(e.data)))
		writeFixed(&buf, e.name, 8)
		pos += len(e.data)
	}
	return buf.Bytes()
}

func le32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// writeFixed writes name into a NUL-padded field of the given width,
// truncating if necessary.
func writeFixed(buf *bytes.Buffer, name string, width int) {
	field := make([]byte, width)
	copy(field, name)
	buf.Write(field)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"

	"bytescope/internal/analysis"
	"bytescope/internal/mapfile"
	"bytescope/internal/signatures"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Summarize a file: type, digest, byte statistics",
	Long: `Info prints the detected file type, a BLAKE3 digest, and byte-distribution
statistics including overall entropy and heuristics for encrypted or text
content.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		f, err := mapfile.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		scanner, logger := newScanner()
		defer logger.Close()

		var hist analysis.ByteHistogram
		for chunk := range scanner.Histogram(cmd.Context(), path) {
			hist.Merge(&chunk.Hist)
		}
		if hist.Total != f.Len() {
			return fmt.Errorf("histogram incomplete: %d of %d bytes", hist.Total, f.Len())
		}

		digest := blake3.Sum256(f.Bytes())
		stats := hist.Stats()

		fmt.Println(headerStyle.Render(path))
		printField("size", fmt.Sprintf("%d bytes", f.Len()))
		printField("blake3", fmt.Sprintf("%x", digest))

		header := f.Slice(analysis.NewRegion(0, 64<<10))
		if hits := signatures.Detect(header, len(header)); len(hits) > 0 {
			printField("type", hits[0].Name)
		} else {
			printField("type", "unknown")
		}

		printField("entropy", fmt.Sprintf("%.3f bits/byte", stats.Entropy))
		printField("unique bytes", fmt.Sprintf("%d", stats.UniqueValues))
		printField("most common", fmt.Sprintf("0x%02x (%d times)", stats.MostCommon, stats.MostCommonCount))
		printField("flatness", fmt.Sprintf("%.3f", stats.Flatness))

		switch {
		case hist.LooksEncrypted():
			fmt.Println(warnStyle.Render("  likely encrypted or compressed"))
		case hist.LooksASCII():
			fmt.Println(labelStyle.Render("  mostly printable text"))
		}
		return nil
	},
}

func printField(name, value string) {
	fmt.Printf("  %s %s\n",
		labelStyle.Render(fmt.Sprintf("%-14s", name)),
		valueStyle.Render(value))
}

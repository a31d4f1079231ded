package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bytescope/internal/analysis"
	"bytescope/internal/mapfile"
	"bytescope/internal/signatures"
)

// quickScanLen bounds the fast header scan; the deep scan covers the rest.
const quickScanLen = 1 << 20

var signaturesCmd = &cobra.Command{
	Use:   "signatures [file]",
	Short: "Detect embedded file signatures",
	Long: `Signatures looks for known file-format magic bytes. By default only the
first megabyte is scanned; --deep streams a multi-pattern scan over the whole
file. --carve adds a size estimate for each hit so embedded files can be
extracted.`,
	Example: `
# Quick header scan
bytescope signatures disk.img

# Full-file scan with carve size estimates
bytescope signatures --deep --carve disk.img
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deep, _ := cmd.Flags().GetBool("deep")
		carve, _ := cmd.Flags().GetBool("carve")
		path := args[0]

		if !deep {
			return quickSignatureScan(path, carve)
		}

		scanner, logger := newScanner()
		defer logger.Close()

		f, err := mapfile.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		total := 0
		for chunk := range scanner.DeepScan(cmd.Context(), path) {
			for _, hit := range chunk.Hits {
				printSignatureHit(f, hit.Offset, hit.Name, carve)
				total++
			}
			if chunk.IsFinal {
				fmt.Printf("%s %s\n",
					headerStyle.Render(fmt.Sprintf("%d signatures", total)),
					labelStyle.Render(fmt.Sprintf("(%.1fms, %d bytes)", chunk.DurationMS, chunk.TotalBytes)))
			}
		}
		return nil
	},
}

func quickSignatureScan(path string, carve bool) error {
	f, err := mapfile.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data := f.Slice(analysis.NewRegion(0, quickScanLen))
	hits := signatures.Detect(f.Bytes(), len(data))
	for _, hit := range hits {
		printSignatureHit(f, hit.Offset, hit.Name, carve)
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("%d signatures", len(hits))))
	return nil
}

func printSignatureHit(f *mapfile.File, offset uint64, name string, carve bool) {
	line := fmt.Sprintf("  %s  %s",
		offsetStyle.Render(fmt.Sprintf("%#010x", offset)),
		valueStyle.Render(name))
	if carve {
		rest := f.Slice(analysis.NewRegion(offset, f.Len()-offset))
		info := signatures.AnalyzeCarveSize(name, rest, uint64(len(rest)))
		switch {
		case info.HasSize && info.SizeExact:
			line += labelStyle.Render(fmt.Sprintf("  %d bytes -> .%s", info.Size, info.Extension))
		case info.HasSize:
			line += labelStyle.Render(fmt.Sprintf("  ~%d bytes -> .%s", info.Size, info.Extension))
		default:
			line += warnStyle.Render("  size unknown")
		}
	}
	fmt.Println(line)
}

func init() {
	signaturesCmd.Flags().Bool("deep", false, "Scan the whole file")
	signaturesCmd.Flags().Bool("carve", false, "Estimate embedded file sizes")
}

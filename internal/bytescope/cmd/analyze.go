package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bytescope/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Classify file contents block by block",
	Long: `Analyze splits the file into blocks (block size adapts to file size) and
computes Shannon entropy and a content class for each: zeros, ASCII text,
UTF-8 text, binary, or high entropy (compressed/encrypted).`,
	Example: `
# Summary of content classes
bytescope analyze firmware.bin

# Print every block
bytescope analyze --blocks firmware.bin
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showBlocks, _ := cmd.Flags().GetBool("blocks")

		scanner, logger := newScanner()
		defer logger.Close()

		entropyCh, classifyCh := scanner.Analyze(cmd.Context(), args[0])

		var entropy []float32
		var totalBlocks uint64
		for chunk := range entropyCh {
			entropy = append(entropy, chunk.Values...)
			totalBlocks = chunk.TotalBlocks
		}
		var classes []analysis.BlockClass
		for chunk := range classifyCh {
			classes = append(classes, chunk.Values...)
		}
		if uint64(len(classes)) != totalBlocks {
			return fmt.Errorf("analysis incomplete: %d of %d blocks", len(classes), totalBlocks)
		}
		if totalBlocks == 0 {
			fmt.Println(labelStyle.Render("empty file"))
			return nil
		}

		if showBlocks {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			blockSize := analysis.BlockSizeFor(uint64(info.Size()))
			for i, class := range classes {
				offset := uint64(i) * blockSize
				fmt.Printf("%s  %-12s  %s\n",
					offsetStyle.Render(fmt.Sprintf("%#010x", offset)),
					class.Label(),
					valueStyle.Render(fmt.Sprintf("%.2f bits", entropy[i])))
			}
			return nil
		}

		var counts [5]uint64
		var sum float64
		for i, class := range classes {
			counts[class]++
			sum += float64(entropy[i])
		}

		fmt.Println(headerStyle.Render("Content classes"))
		for class := analysis.ClassZeros; class <= analysis.ClassHighEntropy; class++ {
			if counts[class] == 0 {
				continue
			}
			pct := float64(counts[class]) * 100 / float64(totalBlocks)
			fmt.Printf("  %s %s\n",
				labelStyle.Render(fmt.Sprintf("%-12s", class.Label())),
				valueStyle.Render(fmt.Sprintf("%6d blocks (%.1f%%)", counts[class], pct)))
		}
		fmt.Printf("  %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-12s", "mean entropy")),
			valueStyle.Render(fmt.Sprintf("%.2f bits", sum/float64(len(entropy)))))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("blocks", false, "Print per-block detail")
}

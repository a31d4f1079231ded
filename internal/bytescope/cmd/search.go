package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [file]",
	Short: "Find every occurrence of a byte pattern",
	Long: `Search scans the whole file with the parallel scanner and prints every
offset where the pattern occurs, including overlapping matches.`,
	Example: `
# Hex pattern (spaces optional)
bytescope search --hex "7f 45 4c 46" disk.img

# Text pattern
bytescope search --text "-----BEGIN" dump.bin
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexPat, _ := cmd.Flags().GetString("hex")
		textPat, _ := cmd.Flags().GetString("text")
		limit, _ := cmd.Flags().GetInt("limit")

		pat, err := parsePattern(hexPat, textPat)
		if err != nil {
			return err
		}

		scanner, logger := newScanner()
		defer logger.Close()

		res, ok := <-scanner.Search(cmd.Context(), args[0], pat)
		if !ok {
			return fmt.Errorf("search failed; see log output")
		}

		fmt.Printf("%s %s\n",
			headerStyle.Render(fmt.Sprintf("%d matches", len(res.Offsets))),
			labelStyle.Render(fmt.Sprintf("(%.1fms)", res.DurationMS)))
		for i, off := range res.Offsets {
			if limit > 0 && i == limit {
				fmt.Println(warnStyle.Render(fmt.Sprintf("  ... %d more", len(res.Offsets)-limit)))
				break
			}
			fmt.Printf("  %s\n", offsetStyle.Render(fmt.Sprintf("%#010x", off)))
		}
		return nil
	},
}

// parsePattern builds the search bytes from exactly one of a hex string or a
// literal text string.
func parsePattern(hexPat, textPat string) ([]byte, error) {
	switch {
	case hexPat != "" && textPat != "":
		return nil, fmt.Errorf("--hex and --text are mutually exclusive")
	case hexPat != "":
		cleaned := strings.NewReplacer(" ", "", "\t", "", ":", "").Replace(hexPat)
		pat, err := hex.DecodeString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("invalid hex pattern: %w", err)
		}
		if len(pat) == 0 {
			return nil, fmt.Errorf("empty pattern")
		}
		return pat, nil
	case textPat != "":
		return []byte(textPat), nil
	default:
		return nil, fmt.Errorf("one of --hex or --text is required")
	}
}

func init() {
	searchCmd.Flags().String("hex", "", "Pattern as hex bytes")
	searchCmd.Flags().String("text", "", "Pattern as literal text")
	searchCmd.Flags().Int("limit", 50, "Maximum offsets to print (0 = all)")
}

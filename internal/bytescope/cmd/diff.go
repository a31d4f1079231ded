package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff [file-a] [file-b]",
	Short: "Compare two files byte by byte",
	Long: `Diff reports every offset where the two files differ, compared over the
length of the shorter file. The result is capped at --max differences.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxDiffs, _ := cmd.Flags().GetInt("max")
		limit, _ := cmd.Flags().GetInt("limit")

		scanner, logger := newScanner()
		defer logger.Close()

		res, ok := <-scanner.Diff(cmd.Context(), args[0], args[1], maxDiffs)
		if !ok {
			return fmt.Errorf("diff failed; see log output")
		}

		if len(res.Offsets) == 0 {
			fmt.Println(headerStyle.Render("Files are identical over the compared range"))
			return nil
		}

		header := fmt.Sprintf("%d differences", len(res.Offsets))
		if len(res.Offsets) == maxDiffs {
			header += " (capped)"
		}
		fmt.Printf("%s %s\n",
			headerStyle.Render(header),
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

func init() {
	diffCmd.Flags().Int("max", 100000, "Maximum differences to collect")
	diffCmd.Flags().Int("limit", 50, "Maximum offsets to print (0 = all)")
}

// Package cmd implements the bytescope command line interface.
package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"bytescope/internal/compute"
	"bytescope/internal/logging"
	"bytescope/internal/scan"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	offsetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var rootCmd = &cobra.Command{
	Use:   "bytescope",
	Short: "Binary content analysis tool",
	Long: `Bytescope analyzes arbitrarily large binary files: per-block entropy and
content classification, pattern search, file signature detection and carving
hints, binary diffing, byte statistics, and Hilbert-curve visualizations.`,
	Example: `
# Classify the contents of a firmware image
bytescope analyze firmware.bin

# Find every occurrence of a byte pattern
bytescope search --hex "7f 45 4c 46" disk.img

# Render an entropy map as a PNG
bytescope map --mode entropy --out map.png disk.img
  `,
	SilenceUsage: true,
}

// newScanner builds the background scanner all commands share.
func newScanner() (*scan.Scanner, *logging.LoggerCloser) {
	logger := logging.NewLogger()
	return scan.New(compute.NewCPUDevice(), logger.Logger), logger
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(signaturesCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(disasmCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bytescope/internal/analysis"
	"bytescope/internal/disasm"
	"bytescope/internal/mapfile"
	"bytescope/internal/ui/colorize"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [file]",
	Short: "Disassemble raw bytes at a file offset",
	Long: `Disasm decodes machine instructions starting at --offset, treating the
bytes as x86-64 or ARM64 code. Useful for inspecting code regions found by
analyze or signatures.`,
	Example: `
# First 32 ARM64 instructions at offset 0x1000
bytescope disasm --arch arm64 --offset 0x1000 --count 32 firmware.bin
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archName, _ := cmd.Flags().GetString("arch")
		offset, _ := cmd.Flags().GetUint64("offset")
		count, _ := cmd.Flags().GetInt("count")

		var arch disasm.Arch
		switch archName {
		case "x86", "x86_64", "amd64":
			arch = disasm.ArchX86_64
		case "arm64", "aarch64":
			arch = disasm.ArchARM64
		default:
			return fmt.Errorf("unknown arch %q (x86_64, arm64)", archName)
		}

		f, err := mapfile.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		// Read enough bytes for count instructions at worst-case length.
		code := f.Slice(analysis.NewRegion(offset, uint64(count)*16))
		if len(code) == 0 {
			return fmt.Errorf("offset %#x is past the end of the file", offset)
		}

		for _, inst := range disasm.Decode(arch, code, offset, count) {
			fmt.Printf("%s  %s\n",
				offsetStyle.Render(fmt.Sprintf("%#010x", inst.VA)),
				colorize.Assembly(inst.Text))
		}
		return nil
	},
}

func init() {
	disasmCmd.Flags().String("arch", "x86_64", "Instruction set: x86_64 or arm64")
	disasmCmd.Flags().Uint64("offset", 0, "File offset to start decoding at")
	disasmCmd.Flags().Int("count", 32, "Maximum instructions to decode")
}

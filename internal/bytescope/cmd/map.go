package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"bytescope/internal/compute"
)

var textureModes = map[string]compute.TextureMode{
	"entropy": compute.TextureEntropy,
	"class":   compute.TextureClassification,
	"bytes":   compute.TextureByteValue,
	"bits":    compute.TextureBitDensity,
}

var mapCmd = &cobra.Command{
	Use:   "map [file]",
	Short: "Render a Hilbert-curve map of the file as PNG",
	Long: `Map paints the file onto a square image along the Hilbert space-filling
curve, so bytes that are close in the file stay close in the image. Modes:
entropy, class (content classification), bytes (raw byte values), bits
(individual bits).`,
	Example: `
# 512x512 entropy map
bytescope map --mode entropy --size 512 --out map.png firmware.bin
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modeName, _ := cmd.Flags().GetString("mode")
		size, _ := cmd.Flags().GetUint32("size")
		out, _ := cmd.Flags().GetString("out")

		mode, ok := textureModes[modeName]
		if !ok {
			return fmt.Errorf("unknown mode %q (entropy, class, bytes, bits)", modeName)
		}

		scanner, logger := newScanner()
		defer logger.Close()

		res, okRes := <-scanner.Texture(cmd.Context(), args[0], size, mode)
		if !okRes {
			return fmt.Errorf("texture computation failed; see log output")
		}

		img := image.NewNRGBA(image.Rect(0, 0, int(res.Size), int(res.Size)))
		for y := 0; y < int(res.Size); y++ {
			for x := 0; x < int(res.Size); x++ {
				p := res.Pixels[y*int(res.Size)+x]
				img.SetNRGBA(x, y, color.NRGBA{
					R: uint8(p),
					G: uint8(p >> 8),
					B: uint8(p >> 16),
					A: uint8(p >> 24),
				})
			}
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			return err
		}

		fmt.Printf("%s %s\n",
			headerStyle.Render(fmt.Sprintf("Wrote %s", out)),
			labelStyle.Render(fmt.Sprintf("(%dx%d, %.1fms)", res.Size, res.Size, res.DurationMS)))
		return nil
	},
}

func init() {
	mapCmd.Flags().String("mode", "entropy", "Color mode: entropy, class, bytes, bits")
	mapCmd.Flags().Uint32("size", 512, "Image size (power of two, 64-2048)")
	mapCmd.Flags().String("out", "map.png", "Output PNG path")
}

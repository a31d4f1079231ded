package compute

import (
	"math/bits"

	"bytescope/internal/analysis"
	"bytescope/internal/hilbert"
)

// Classification palette, indexed by analysis.BlockClass.
var classColors = [5]uint32{
	packRGBA(51, 64, 89, 255),   // zeros
	packRGBA(77, 179, 77, 255),  // ascii
	packRGBA(77, 128, 204, 255), // utf-8
	packRGBA(204, 153, 77, 255), // binary
	packRGBA(204, 51, 51, 255),  // high entropy
}

// Entropy gradient stops, evenly spaced over [0,8] bits.
var entropyStops = [4][3]float64{
	{0, 128, 90},
	{77, 204, 77},
	{204, 153, 77},
	{255, 51, 26},
}

func (d *CPUDevice) ComputeHilbertTexture(fileSize uint64, entropy []float32, classification []analysis.BlockClass, sampledBytes []byte, size uint32, mode TextureMode) ([]uint32, error) {
	if size < MinTextureSize || size > MaxTextureSize || bits.OnesCount32(size) != 1 {
		return nil, &ComputeError{Op: "hilbert", Err: ErrTextureSize}
	}
	if mode > TextureBitDensity {
		return nil, &ComputeError{Op: "hilbert", Err: ErrTextureMode}
	}

	totalPixels := uint64(size) * uint64(size)
	bytesPerPixel := max(fileSize/totalPixels, 1)
	blockSize := analysis.BlockSizeFor(fileSize)

	pixels := make([]uint32, totalPixels)
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			pixelIdx := uint64(y)*uint64(size) + uint64(x)
			hilbertIdx := hilbert.XYToD(size, x, y)
			fileOffset := hilbertIdx * bytesPerPixel
			if fileOffset >= fileSize {
				continue // transparent: past end of file
			}

			switch mode {
			case TextureEntropy:
				var e float32
				if blockIdx := fileOffset / blockSize; blockIdx < uint64(len(entropy)) {
					e = entropy[blockIdx]
				}
				pixels[pixelIdx] = entropyColor(e)
			case TextureClassification:
				class := analysis.ClassBinary
				if blockIdx := fileOffset / blockSize; blockIdx < uint64(len(classification)) {
					class = classification[blockIdx]
				}
				pixels[pixelIdx] = classColors[class]
			case TextureByteValue:
				var v byte
				if pixelIdx < uint64(len(sampledBytes)) {
					v = sampledBytes[pixelIdx]
				}
				pixels[pixelIdx] = byteValueColor(v)
			case TextureBitDensity:
				var bit byte
				if byteIdx := pixelIdx / 8; byteIdx < uint64(len(sampledBytes)) {
					bit = (sampledBytes[byteIdx] >> (7 - pixelIdx%8)) & 1
				}
				if bit == 1 {
					pixels[pixelIdx] = packRGBA(0, 255, 128, 255)
				} else {
					pixels[pixelIdx] = packRGBA(10, 10, 20, 255)
				}
			}
		}
	}
	return pixels, nil
}

// entropyColor maps entropy in [0,8] onto a green-to-red gradient.
func entropyColor(e float32) uint32 {
	t := float64(e) / 8.0
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	// Piecewise-linear interpolation across the gradient stops.
	seg := t * float64(len(entropyStops)-1)
	i := int(seg)
	if i >= len(entropyStops)-1 {
		i = len(entropyStops) - 2
	}
	f := seg - float64(i)
	lo, hi := entropyStops[i], entropyStops[i+1]
	r := uint8(lo[0] + (hi[0]-lo[0])*f)
	g := uint8(lo[1] + (hi[1]-lo[1])*f)
	b := uint8(lo[2] + (hi[2]-lo[2])*f)
	return packRGBA(r, g, b, 255)
}

// byteValueColor renders nulls near-black, 0xFF near-white, printable ASCII
// with a green tint, and everything else as grayscale.
func byteValueColor(v byte) uint32 {
	switch {
	case v == 0x00:
		return packRGBA(13, 13, 26, 255)
	case v == 0xFF:
		return packRGBA(255, 255, 230, 255)
	case v >= 0x20 && v <= 0x7E:
		return packRGBA(uint8(uint32(v)*4/5), v, uint8(uint32(v)*4/5), 255)
	default:
		return packRGBA(v, v, v, 255)
	}
}

func packRGBA(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

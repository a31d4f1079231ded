// Package compute defines the chunked analysis backend: per-block entropy
// and classification, single- and multi-pattern scanning, byte-wise diff,
// and Hilbert-curve texture generation. The Device interface describes the
// capability; CPUDevice is the reference implementation. All implementations
// share one chunking protocol so results are identical regardless of where
// dispatch limits force a chunk boundary.
package compute

import (
	"errors"
	"fmt"

	"bytescope/internal/analysis"
)

// Dispatch and buffer capacity limits shared by all backends.
const (
	// MaxScanMatches is the fixed capacity of a scan result buffer per
	// chunk. Matches beyond it are dropped and the result is flagged
	// truncated.
	MaxScanMatches = 65536

	// MaxPatternLen bounds scan patterns.
	MaxPatternLen = 16
)

// Limits describes a device's dispatch geometry. Chunk sizes are derived
// from it so a single dispatch never exceeds the workgroup-count limit.
type Limits struct {
	MaxWorkgroups uint32
	WorkgroupSize uint32
}

// BlockChunkBytes returns the largest byte range a block-wise operation
// (entropy, classification) may process in one dispatch.
func (l Limits) BlockChunkBytes(blockSize uint32) int {
	return int(l.MaxWorkgroups) * int(blockSize)
}

// ByteChunkBytes returns the largest byte range a byte-wise operation
// (scan, diff) may process in one dispatch.
func (l Limits) ByteChunkBytes() int {
	return int(l.MaxWorkgroups-1) * int(l.WorkgroupSize)
}

// ScanResult holds single-pattern scan output.
type ScanResult struct {
	// Offsets is sorted and unique.
	Offsets []uint64
	// Truncated reports that at least one chunk hit the result-buffer
	// capacity and dropped matches.
	Truncated bool
}

// MultiPatternMatch tags a match with the index of the pattern that
// produced it.
type MultiPatternMatch struct {
	PatternIdx uint32
	Offset     uint64
}

// MultiScanResult holds multi-pattern scan output, sorted by
// (offset, pattern index).
type MultiScanResult struct {
	Matches   []MultiPatternMatch
	Truncated bool
}

// TextureMode selects how ComputeHilbertTexture colors pixels.
type TextureMode uint32

const (
	TextureEntropy        TextureMode = 0
	TextureClassification TextureMode = 1
	TextureByteValue      TextureMode = 2
	TextureBitDensity     TextureMode = 3
)

// Texture size bounds. Sizes must be powers of two.
const (
	MinTextureSize = 64
	MaxTextureSize = 2048
)

var (
	ErrPatternSize = errors.New("pattern must be 1-16 bytes")
	ErrBlockSize   = errors.New("block size must be a positive multiple of 256")
	ErrTextureSize = errors.New("texture size must be a power of two between 64 and 2048")
	ErrTextureMode = errors.New("unknown texture mode")
)

// ComputeError reports a failure inside one chunk of a request. The
// remaining chunks of that request are aborted; results already delivered
// stand.
type ComputeError struct {
	// Op names the failing operation.
	Op string
	// Offset is the byte offset of the chunk that failed.
	Offset uint64
	Err    error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

// Device is the analysis backend capability. Implementations must produce
// identical results for the discrete operations (classification, scan,
// diff) and tolerance-equal results for entropy, independent of chunking.
type Device interface {
	// ComputeEntropy returns per-block Shannon entropy in [0,8].
	// blockSize must be a positive multiple of 256.
	ComputeEntropy(data []byte, blockSize uint32) ([]float32, error)

	// ComputeClassification returns per-block content labels.
	ComputeClassification(data []byte, blockSize uint32) ([]analysis.BlockClass, error)

	// ScanPattern finds all occurrences of pattern (1 to MaxPatternLen
	// bytes), including ones straddling internal chunk boundaries.
	ScanPattern(data, pattern []byte) (ScanResult, error)

	// ScanMultiPattern checks every pattern at every position in one
	// pass over the data. Patterns must be non-empty and may be longer
	// than MaxPatternLen.
	ScanMultiPattern(data []byte, patterns [][]byte) (MultiScanResult, error)

	// ComputeDiff returns sorted offsets where a and b differ, compared
	// over min(len(a), len(b)) bytes, capped at maxDiffs.
	ComputeDiff(a, b []byte, maxDiffs int) ([]uint64, error)

	// ComputeHilbertTexture renders a size-by-size RGBA grid where each
	// pixel encodes the analysis value at the file offset its Hilbert
	// index covers. Byte-value and bit-density modes read sampledBytes,
	// which the caller must have filled with one byte (or one packed
	// bit) per pixel in Hilbert order.
	ComputeHilbertTexture(fileSize uint64, entropy []float32, classification []analysis.BlockClass, sampledBytes []byte, size uint32, mode TextureMode) ([]uint32, error)

	// Limits reports the device's dispatch geometry.
	Limits() Limits
}

package compute

import (
	"bytes"
	"slices"

	"bytescope/internal/analysis"
)

// CPUDevice implements Device on the host CPU. It follows the same chunking
// protocol as hardware backends so result shapes and edge behavior match,
// which also makes it the test oracle for other implementations.
type CPUDevice struct {
	limits Limits
}

// NewCPUDevice returns a CPU backend with the standard dispatch geometry.
func NewCPUDevice() *CPUDevice {
	return &CPUDevice{limits: Limits{MaxWorkgroups: 65535, WorkgroupSize: 256}}
}

func (d *CPUDevice) Limits() Limits { return d.limits }

func (d *CPUDevice) ComputeEntropy(data []byte, blockSize uint32) ([]float32, error) {
	if blockSize == 0 || blockSize%256 != 0 {
		return nil, &ComputeError{Op: "entropy", Err: ErrBlockSize}
	}
	if len(data) == 0 {
		return nil, nil
	}

	chunkBytes := d.limits.BlockChunkBytes(blockSize)
	var results []float32
	for start := 0; start < len(data); start += chunkBytes {
		end := min(start+chunkBytes, len(data))
		results = append(results, analysis.BlockEntropy(data[start:end], int(blockSize))...)
	}
	return results, nil
}

func (d *CPUDevice) ComputeClassification(data []byte, blockSize uint32) ([]analysis.BlockClass, error) {
	if blockSize == 0 || blockSize%256 != 0 {
		return nil, &ComputeError{Op: "classify", Err: ErrBlockSize}
	}
	if len(data) == 0 {
		return nil, nil
	}

	chunkBytes := d.limits.BlockChunkBytes(blockSize)
	var results []analysis.BlockClass
	for start := 0; start < len(data); start += chunkBytes {
		end := min(start+chunkBytes, len(data))
		results = append(results, analysis.ClassifyBlocks(data[start:end], int(blockSize))...)
	}
	return results, nil
}

func (d *CPUDevice) ScanPattern(data, pattern []byte) (ScanResult, error) {
	if len(pattern) == 0 || len(pattern) > MaxPatternLen {
		return ScanResult{}, &ComputeError{Op: "scan", Err: ErrPatternSize}
	}
	if len(data) < len(pattern) {
		return ScanResult{}, nil
	}

	chunkSize := d.limits.ByteChunkBytes()
	var result ScanResult
	for chunkStart := 0; chunkStart < len(data); chunkStart += chunkSize {
		// Reach back so a match straddling the previous boundary is
		// seen by this chunk. The previous chunk cannot report those
		// matches (their tails lie past its end), so the overlap region
		// belongs to this chunk; the final sort+dedupe removes any
		// double reports.
		actualStart := chunkStart
		if chunkStart > 0 {
			actualStart = chunkStart - (len(pattern) - 1)
		}
		chunkEnd := min(chunkStart+chunkSize, len(data))
		chunk := data[actualStart:chunkEnd]

		offsets, truncated := scanChunk(chunk, pattern)
		if truncated {
			result.Truncated = true
		}
		for _, off := range offsets {
			result.Offsets = append(result.Offsets, uint64(actualStart)+off)
		}
	}
	slices.Sort(result.Offsets)
	result.Offsets = slices.Compact(result.Offsets)
	return result, nil
}

// scanChunk finds pattern occurrences within one chunk, capped at
// MaxScanMatches.
func scanChunk(chunk, pattern []byte) (offsets []uint64, truncated bool) {
	base := 0
	for {
		idx := bytes.Index(chunk[base:], pattern)
		if idx < 0 {
			return offsets, false
		}
		if len(offsets) == MaxScanMatches {
			return offsets, true
		}
		offsets = append(offsets, uint64(base+idx))
		base += idx + 1
	}
}

func (d *CPUDevice) ScanMultiPattern(data []byte, patterns [][]byte) (MultiScanResult, error) {
	if len(patterns) == 0 || len(data) == 0 {
		return MultiScanResult{}, nil
	}
	maxPatternLen := 0
	for _, p := range patterns {
		if len(p) == 0 {
			return MultiScanResult{}, &ComputeError{Op: "multi-scan", Err: ErrPatternSize}
		}
		maxPatternLen = max(maxPatternLen, len(p))
	}
	if len(data) < maxPatternLen {
		return MultiScanResult{}, nil
	}

	packed, meta := packPatterns(patterns)

	chunkSize := d.limits.ByteChunkBytes()
	var result MultiScanResult
	for chunkStart := 0; chunkStart < len(data); chunkStart += chunkSize {
		actualStart := chunkStart
		if chunkStart > 0 {
			actualStart = chunkStart - (maxPatternLen - 1)
		}
		chunkEnd := min(chunkStart+chunkSize, len(data))
		chunk := data[actualStart:chunkEnd]

		matches, truncated := multiScanChunk(chunk, packed, meta)
		if truncated {
			result.Truncated = true
		}
		for _, m := range matches {
			result.Matches = append(result.Matches, MultiPatternMatch{PatternIdx: m.PatternIdx, Offset: uint64(actualStart) + m.Offset})
		}
	}

	slices.SortFunc(result.Matches, func(a, b MultiPatternMatch) int {
		if a.Offset != b.Offset {
			if a.Offset < b.Offset {
				return -1
			}
			return 1
		}
		return int(a.PatternIdx) - int(b.PatternIdx)
	})
	result.Matches = slices.Compact(result.Matches)
	return result, nil
}

// packPatterns concatenates all patterns into one buffer with each pattern
// padded to 4-byte alignment, plus an (offset, len) metadata pair per
// pattern. All patterns are then checked per byte position from the single
// buffer, amortizing the transfer cost.
func packPatterns(patterns [][]byte) (packed []byte, meta []uint32) {
	for _, p := range patterns {
		meta = append(meta, uint32(len(packed)), uint32(len(p)))
		packed = append(packed, p...)
		for len(packed)%4 != 0 {
			packed = append(packed, 0)
		}
	}
	return packed, meta
}

// multiScanChunk checks every packed pattern at every position of chunk,
// capped at MaxScanMatches matches.
func multiScanChunk(chunk, packed []byte, meta []uint32) (matches []MultiPatternMatch, truncated bool) {
	numPatterns := len(meta) / 2
	for pos := 0; pos < len(chunk); pos++ {
		for p := 0; p < numPatterns; p++ {
			off, plen := int(meta[2*p]), int(meta[2*p+1])
			if pos+plen > len(chunk) {
				continue
			}
			if !bytes.Equal(chunk[pos:pos+plen], packed[off:off+plen]) {
				continue
			}
			if len(matches) == MaxScanMatches {
				return matches, true
			}
			matches = append(matches, MultiPatternMatch{PatternIdx: uint32(p), Offset: uint64(pos)})
		}
	}
	return matches, false
}

func (d *CPUDevice) ComputeDiff(a, b []byte, maxDiffs int) ([]uint64, error) {
	compareLen := min(len(a), len(b))
	if compareLen == 0 || maxDiffs <= 0 {
		return nil, nil
	}

	chunkSize := d.limits.ByteChunkBytes()
	var offsets []uint64
	for chunkStart := 0; chunkStart < compareLen; chunkStart += chunkSize {
		chunkEnd := min(chunkStart+chunkSize, compareLen)
		for i := chunkStart; i < chunkEnd; i++ {
			if a[i] != b[i] {
				offsets = append(offsets, uint64(i))
				if len(offsets) == maxDiffs {
					return offsets, nil
				}
			}
		}
	}
	return offsets, nil
}

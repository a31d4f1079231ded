// Package analysis provides the per-block statistical primitives used by the
// content-analysis engine: byte-range arithmetic, content classification,
// Shannon entropy, and byte-value histograms. All functions are pure and
// operate on raw byte slices; file access and scheduling live elsewhere.
package analysis

import "math/bits"

// FileRegion is a byte range within a file, defined by offset and length.
type FileRegion struct {
	Offset uint64
	Length uint64
}

// NewRegion returns a FileRegion covering [offset, offset+length).
func NewRegion(offset, length uint64) FileRegion {
	return FileRegion{Offset: offset, Length: length}
}

// End returns the exclusive end offset of the region, saturating at the
// maximum uint64 instead of wrapping.
func (r FileRegion) End() uint64 {
	end, carry := bits.Add64(r.Offset, r.Length, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return end
}

// Overlaps reports whether the two regions share at least one byte.
// Zero-length regions overlap nothing.
func (r FileRegion) Overlaps(other FileRegion) bool {
	return r.Offset < other.End() && other.Offset < r.End()
}

// Contains reports whether other lies entirely within r.
func (r FileRegion) Contains(other FileRegion) bool {
	return r.Offset <= other.Offset && other.End() <= r.End()
}

// BlockClass labels the dominant content type of a fixed-size block.
type BlockClass uint8

const (
	ClassZeros       BlockClass = 0 // nearly all zero bytes (>95%)
	ClassASCII       BlockClass = 1 // printable ASCII text (>90% in 0x20-0x7E + whitespace)
	ClassUTF8        BlockClass = 2 // UTF-8 multi-byte text (lead bytes present, moderate entropy)
	ClassBinary      BlockClass = 3 // structured binary data
	ClassHighEntropy BlockClass = 4 // compressed or encrypted (Shannon entropy > 7.0)
)

// BlockClassFromByte maps a backend output byte to a BlockClass.
// Out-of-range values fall back to ClassBinary.
func BlockClassFromByte(v byte) BlockClass {
	if v > byte(ClassHighEntropy) {
		return ClassBinary
	}
	return BlockClass(v)
}

// Label returns a human-readable name for the class.
func (c BlockClass) Label() string {
	switch c {
	case ClassZeros:
		return "Zeros"
	case ClassASCII:
		return "ASCII Text"
	case ClassUTF8:
		return "UTF-8 Text"
	case ClassBinary:
		return "Binary/Structured"
	case ClassHighEntropy:
		return "Compressed/Encrypted"
	default:
		return "Unknown"
	}
}

// BlockSizeFor picks a per-block granularity adapted to the file size, keeping
// the total block count near one million regardless of file size.
func BlockSizeFor(fileLen uint64) uint64 {
	switch {
	case fileLen < 64<<20:
		return 256
	case fileLen < 1<<30:
		return 1024
	case fileLen < 4<<30:
		return 4096
	default:
		return 16384
	}
}

// Viewport describes the byte range a consumer is currently displaying.
type Viewport struct {
	Start        uint64
	VisibleBytes uint64
}

// Clamp bounds the viewport to [0, fileLen). If the file is smaller than the
// viewport, Start becomes 0 and VisibleBytes is capped to fileLen.
func (v Viewport) Clamp(fileLen uint64) Viewport {
	if fileLen == 0 {
		return Viewport{}
	}
	visible := min(v.VisibleBytes, fileLen)
	maxStart := fileLen - visible
	return Viewport{Start: min(v.Start, maxStart), VisibleBytes: visible}
}

// Region converts the viewport to a FileRegion.
func (v Viewport) Region() FileRegion {
	return NewRegion(v.Start, v.VisibleBytes)
}

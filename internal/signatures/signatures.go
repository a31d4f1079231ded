// Package signatures holds a database of known file-format magic bytes and
// utilities for detecting embedded files and estimating their size for
// carving.
package signatures

import (
	"bytes"
	"encoding/binary"
	"io"
	"slices"

	"github.com/klauspost/compress/gzip"
)

// Signature describes one known file format.
type Signature struct {
	Name string
	// Magic is the byte sequence identifying the format.
	Magic []byte
	// FixedOffset is the only file offset the magic may appear at, or -1
	// when the signature can appear anywhere.
	FixedOffset int64
	// Extension is the suggested file extension for carving.
	Extension string
}

// AnywhereOffset marks a signature that can appear at any offset.
const AnywhereOffset int64 = -1

// Match is one signature occurrence found in scanned data.
type Match struct {
	Offset   uint64
	Name     string
	MagicLen int
}

// CarveInfo is the result of carve-size analysis for an embedded file.
type CarveInfo struct {
	// Size is the detected or estimated size in bytes; only meaningful
	// when HasSize is true.
	Size      uint64
	HasSize   bool
	Extension string
	// SizeExact reports whether Size came from the format's own structure
	// rather than a heuristic.
	SizeExact bool
}

// Registry is the built-in signature database.
var Registry = []Signature{
	// Executables
	{Name: "ELF", Magic: []byte("\x7fELF"), FixedOffset: 0, Extension: "elf"},
	{Name: "PE/COFF (MZ)", Magic: []byte("MZ"), FixedOffset: 0, Extension: "exe"},
	{Name: "Mach-O (64-bit)", Magic: []byte{0xCF, 0xFA, 0xED, 0xFE}, FixedOffset: 0, Extension: "macho"},
	{Name: "Mach-O (32-bit)", Magic: []byte{0xCE, 0xFA, 0xED, 0xFE}, FixedOffset: 0, Extension: "macho"},
	{Name: "Java class", Magic: []byte{0xCA, 0xFE, 0xBA, 0xBE}, FixedOffset: 0, Extension: "class"},
	{Name: "DEX (Dalvik)", Magic: []byte("dex\n"), FixedOffset: 0, Extension: "dex"},

	// Archives & compressed
	{Name: "ZIP/JAR/APK/DOCX", Magic: []byte("PK\x03\x04"), FixedOffset: AnywhereOffset, Extension: "zip"},
	{Name: "RAR", Magic: []byte("Rar!\x1a\x07"), FixedOffset: AnywhereOffset, Extension: "rar"},
	{Name: "7z", Magic: []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, FixedOffset: AnywhereOffset, Extension: "7z"},
	{Name: "gzip", Magic: []byte{0x1F, 0x8B}, FixedOffset: AnywhereOffset, Extension: "gz"},
	{Name: "bzip2", Magic: []byte("BZh"), FixedOffset: AnywhereOffset, Extension: "bz2"},
	{Name: "XZ", Magic: []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, FixedOffset: AnywhereOffset, Extension: "xz"},
	{Name: "Zstandard", Magic: []byte{0x28, 0xB5, 0x2F, 0xFD}, FixedOffset: AnywhereOffset, Extension: "zst"},
	{Name: "LZ4 frame", Magic: []byte{0x04, 0x22, 0x4D, 0x18}, FixedOffset: AnywhereOffset, Extension: "lz4"},

	// Images
	{Name: "PNG", Magic: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, FixedOffset: AnywhereOffset, Extension: "png"},
	{Name: "JPEG", Magic: []byte{0xFF, 0xD8, 0xFF}, FixedOffset: AnywhereOffset, Extension: "jpg"},
	{Name: "GIF87a", Magic: []byte("GIF87a"), FixedOffset: AnywhereOffset, Extension: "gif"},
	{Name: "GIF89a", Magic: []byte("GIF89a"), FixedOffset: AnywhereOffset, Extension: "gif"},
	{Name: "BMP", Magic: []byte("BM"), FixedOffset: 0, Extension: "bmp"},
	{Name: "TIFF (LE)", Magic: []byte{0x49, 0x49, 0x2A, 0x00}, FixedOffset: AnywhereOffset, Extension: "tiff"},
	{Name: "TIFF (BE)", Magic: []byte{0x4D, 0x4D, 0x00, 0x2A}, FixedOffset: AnywhereOffset, Extension: "tiff"},
	{Name: "WebP", Magic: []byte("RIFF"), FixedOffset: AnywhereOffset, Extension: "webp"},

	// Documents
	{Name: "PDF", Magic: []byte("%PDF"), FixedOffset: AnywhereOffset, Extension: "pdf"},
	{Name: "OLE2 (DOC/XLS/PPT)", Magic: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, FixedOffset: AnywhereOffset, Extension: "doc"},

	// Databases
	{Name: "SQLite", Magic: []byte("SQLite format 3\x00"), FixedOffset: 0, Extension: "sqlite"},

	// Crypto / keys
	{Name: "PGP public key", Magic: []byte{0x99, 0x01}, FixedOffset: AnywhereOffset, Extension: "pgp"},
	{Name: "SSH private key", Magic: []byte("-----BEGIN OPENSSH"), FixedOffset: AnywhereOffset, Extension: "key"},
	{Name: "PEM certificate", Magic: []byte("-----BEGIN CERTIFICATE"), FixedOffset: AnywhereOffset, Extension: "pem"},

	// Disk / filesystem
	{Name: "ISO 9660", Magic: []byte("CD001"), FixedOffset: 0x8001, Extension: "iso"},
	{Name: "LUKS", Magic: []byte("LUKS\xba\xbe"), FixedOffset: 0, Extension: "luks"},

	// Multimedia
	{Name: "OGG", Magic: []byte("OggS"), FixedOffset: AnywhereOffset, Extension: "ogg"},
	{Name: "FLAC", Magic: []byte("fLaC"), FixedOffset: AnywhereOffset, Extension: "flac"},
	{Name: "MP3 (ID3v2)", Magic: []byte("ID3"), FixedOffset: 0, Extension: "mp3"},
	{Name: "WAV", Magic: []byte("RIFF"), FixedOffset: 0, Extension: "wav"},
	{Name: "AVI", Magic: []byte("RIFF"), FixedOffset: 0, Extension: "avi"},

	// Misc
	{Name: "WASM", Magic: []byte{0x00, 0x61, 0x73, 0x6D}, FixedOffset: 0, Extension: "wasm"},
	{Name: "tar (ustar)", Magic: []byte("ustar"), FixedOffset: 257, Extension: "tar"},
}

// ExtensionFor returns the carving extension for a signature name, or "bin"
// when the name is unknown.
func ExtensionFor(name string) string {
	for i := range Registry {
		if Registry[i].Name == name {
			return Registry[i].Extension
		}
	}
	return "bin"
}

// Detect scans the first scanLen bytes of data for known signatures.
// Fixed-offset signatures are checked only at their offset; floating ones are
// matched at every position. Results are sorted by offset and deduplicated
// on (offset, name).
func Detect(data []byte, scanLen int) []Match {
	scanEnd := min(len(data), scanLen)
	var matches []Match

	for i := range Registry {
		sig := &Registry[i]
		if len(sig.Magic) > scanEnd {
			continue
		}

		if sig.FixedOffset >= 0 {
			off := int(sig.FixedOffset)
			if off+len(sig.Magic) <= len(data) && bytes.Equal(data[off:off+len(sig.Magic)], sig.Magic) {
				matches = append(matches, Match{
					Offset:   uint64(sig.FixedOffset),
					Name:     sig.Name,
					MagicLen: len(sig.Magic),
				})
			}
			continue
		}

		base := 0
		region := data[:scanEnd]
		for {
			idx := bytes.Index(region[base:], sig.Magic)
			if idx < 0 {
				break
			}
			matches = append(matches, Match{
				Offset:   uint64(base + idx),
				Name:     sig.Name,
				MagicLen: len(sig.Magic),
			})
			base += idx + 1
		}
	}

	slices.SortFunc(matches, func(a, b Match) int {
		if a.Offset != b.Offset {
			if a.Offset < b.Offset {
				return -1
			}
			return 1
		}
		return bytes.Compare([]byte(a.Name), []byte(b.Name))
	})
	return slices.CompactFunc(matches, func(a, b Match) bool {
		return a.Offset == b.Offset && a.Name == b.Name
	})
}

// AnalyzeCarveSize estimates the size of an embedded file whose signature
// was detected. data must start at the signature offset; maxSize bounds how
// far end-marker searches may look.
func AnalyzeCarveSize(name string, data []byte, maxSize uint64) CarveInfo {
	ext := ExtensionFor(name)
	maxLen := len(data)
	if uint64(maxLen) > maxSize {
		maxLen = int(maxSize)
	}

	switch name {
	case "PNG":
		// The IEND chunk tag plus its CRC terminate the stream.
		iend := []byte{0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82}
		if pos := bytes.Index(data[:maxLen], iend); pos >= 0 {
			return CarveInfo{Size: uint64(pos + 8), HasSize: true, Extension: ext, SizeExact: true}
		}
	case "JPEG":
		if pos := bytes.Index(data[:maxLen], []byte{0xFF, 0xD9}); pos >= 0 {
			return CarveInfo{Size: uint64(pos + 2), HasSize: true, Extension: ext, SizeExact: true}
		}
	case "GIF87a", "GIF89a":
		if pos := bytes.LastIndexByte(data[:maxLen], 0x3B); pos >= 0 {
			return CarveInfo{Size: uint64(pos + 1), HasSize: true, Extension: ext, SizeExact: true}
		}
	case "PDF":
		if pos := bytes.Index(data[:maxLen], []byte("%%EOF")); pos >= 0 {
			// Allow for trailing newlines after %%EOF.
			end := min(pos+10, maxLen)
			return CarveInfo{Size: uint64(end), HasSize: true, Extension: ext, SizeExact: true}
		}
	case "ZIP/JAR/APK/DOCX":
		if pos := bytes.LastIndex(data[:maxLen], []byte("PK\x05\x06")); pos >= 0 {
			// EOCD record is 22 bytes minimum, comment length at offset 20.
			if pos+22 <= maxLen {
				commentLen := int(binary.LittleEndian.Uint16(data[pos+20 : pos+22]))
				return CarveInfo{Size: uint64(pos + 22 + commentLen), HasSize: true, Extension: ext, SizeExact: true}
			}
			return CarveInfo{Size: uint64(pos + 22), HasSize: true, Extension: ext, SizeExact: false}
		}
	case "BMP":
		if len(data) >= 6 {
			size := uint64(binary.LittleEndian.Uint32(data[2:6]))
			return CarveInfo{Size: size, HasSize: true, Extension: ext, SizeExact: true}
		}
	case "PE/COFF (MZ)":
		if size, ok := parsePESize(data); ok {
			return CarveInfo{Size: size, HasSize: true, Extension: ext, SizeExact: true}
		}
	case "ELF":
		if size, ok := parseELFSize(data); ok {
			return CarveInfo{Size: size, HasSize: true, Extension: ext, SizeExact: true}
		}
	case "WAV", "AVI", "WebP":
		// RIFF chunk size at offset 4, plus the 8-byte header.
		if len(data) >= 8 {
			size := uint64(binary.LittleEndian.Uint32(data[4:8])) + 8
			return CarveInfo{Size: size, HasSize: true, Extension: ext, SizeExact: true}
		}
	case "gzip":
		if size, ok := measureGzipStream(data[:maxLen]); ok {
			return CarveInfo{Size: size, HasSize: true, Extension: ext, SizeExact: true}
		}
		return CarveInfo{Size: min(maxSize, 1<<20), HasSize: true, Extension: ext, SizeExact: false}
	case "SQLite":
		// Page size (big-endian) at offset 16, page count at offset 28.
		if len(data) >= 100 {
			pageSize := uint64(binary.BigEndian.Uint16(data[16:18]))
			pageCount := uint64(binary.BigEndian.Uint32(data[28:32]))
			if pageSize > 0 && pageCount > 0 {
				return CarveInfo{Size: pageSize * pageCount, HasSize: true, Extension: ext, SizeExact: true}
			}
		}
	}
	return CarveInfo{Extension: ext}
}

// measureGzipStream decompresses a single gzip member and reports how many
// compressed bytes it occupied.
func measureGzipStream(data []byte) (uint64, bool) {
	br := bytes.NewReader(data)
	zr, err := gzip.NewReader(br)
	if err != nil {
		return 0, false
	}
	defer zr.Close()
	zr.Multistream(false)
	if _, err := io.Copy(io.Discard, zr); err != nil {
		return 0, false
	}
	// bytes.Reader implements io.ByteReader, so the gzip reader consumes
	// exactly the member's bytes with no readahead.
	return uint64(len(data) - br.Len()), true
}

// parsePESize walks the PE section table and returns the highest raw-data
// end offset.
func parsePESize(data []byte) (uint64, bool) {
	if len(data) < 0x40 {
		return 0, false
	}
	peOffset := int(binary.LittleEndian.Uint32(data[0x3C:0x40]))
	if peOffset < 0 || peOffset+0x18 > len(data) {
		return 0, false
	}
	if !bytes.Equal(data[peOffset:peOffset+4], []byte("PE\x00\x00")) {
		return 0, false
	}

	numSections := int(binary.LittleEndian.Uint16(data[peOffset+6 : peOffset+8]))
	optHeaderSize := int(binary.LittleEndian.Uint16(data[peOffset+20 : peOffset+22]))
	sectionTable := peOffset + 24 + optHeaderSize

	var maxEnd uint64
	for i := 0; i < numSections; i++ {
		sec := sectionTable + i*40
		if sec+40 > len(data) {
			break
		}
		sizeOfRaw := uint64(binary.LittleEndian.Uint32(data[sec+16 : sec+20]))
		ptrToRaw := uint64(binary.LittleEndian.Uint32(data[sec+20 : sec+24]))
		if end := ptrToRaw + sizeOfRaw; end > maxEnd {
			maxEnd = end
		}
	}
	if maxEnd == 0 {
		return 0, false
	}
	return maxEnd, true
}

// parseELFSize computes the file extent from the section header table
// location in the ELF header.
func parseELFSize(data []byte) (uint64, bool) {
	if len(data) < 52 {
		return 0, false
	}
	if !bytes.Equal(data[0:4], []byte("\x7fELF")) {
		return 0, false
	}

	if data[4] == 2 { // 64-bit
		if len(data) < 64 {
			return 0, false
		}
		shOff := binary.LittleEndian.Uint64(data[0x28:0x30])
		shEntSize := uint64(binary.LittleEndian.Uint16(data[0x3A:0x3C]))
		shNum := uint64(binary.LittleEndian.Uint16(data[0x3C:0x3E]))
		return shOff + shEntSize*shNum, true
	}

	shOff := uint64(binary.LittleEndian.Uint32(data[0x20:0x24]))
	shEntSize := uint64(binary.LittleEndian.Uint16(data[0x2E:0x30]))
	shNum := uint64(binary.LittleEndian.Uint16(data[0x30:0x32]))
	return shOff + shEntSize*shNum, true
}

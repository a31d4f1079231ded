package analysis

import "math"

// Classification thresholds. Rules are evaluated in a fixed order; the first
// rule that fires decides the block's class.
const (
	zerosRatio       = 0.95
	highEntropyBits  = 7.0
	asciiRatio       = 0.90
	utf8EntropyLimit = 5.0
)

// ClassifyBlocks labels each blockSize-byte block of data. The last block may
// be shorter. Returns one class per block: ceil(len(data)/blockSize) entries.
// Empty data or a zero block size yields nil.
func ClassifyBlocks(data []byte, blockSize int) []BlockClass {
	if len(data) == 0 || blockSize <= 0 {
		return nil
	}

	n := (len(data) + blockSize - 1) / blockSize
	classes := make([]BlockClass, 0, n)

	for start := 0; start < len(data); start += blockSize {
		end := min(start+blockSize, len(data))
		classes = append(classes, ClassifyBlock(data[start:end]))
	}

	return classes
}

// ClassifyBlock applies the classification rules to a single block,
// in this order:
//
//  1. Zeros — more than 95% of bytes are 0x00
//  2. HighEntropy — Shannon entropy > 7.0 (compressed/encrypted)
//  3. ASCII — more than 90% printable (0x20-0x7E) or tab/CR/LF
//  4. UTF-8 — at least one lead byte in 0xC0-0xF7 and entropy < 5.0
//  5. Binary — everything else
func ClassifyBlock(block []byte) BlockClass {
	if len(block) == 0 {
		return ClassBinary
	}

	var freq [256]uint32
	for _, b := range block {
		freq[b]++
	}
	total := float64(len(block))

	if float64(freq[0])/total > zerosRatio {
		return ClassZeros
	}

	entropy := entropyFromCounts(&freq, total)
	if entropy > highEntropyBits {
		return ClassHighEntropy
	}

	ascii := uint32(0)
	for b := 0x20; b <= 0x7E; b++ {
		ascii += freq[b]
	}
	ascii += freq['\t'] + freq['\n'] + freq['\r']
	if float64(ascii)/total > asciiRatio {
		return ClassASCII
	}

	utf8Leads := uint32(0)
	for b := 0xC0; b <= 0xF7; b++ {
		utf8Leads += freq[b]
	}
	if utf8Leads > 0 && entropy < utf8EntropyLimit {
		return ClassUTF8
	}

	return ClassBinary
}

// entropyFromCounts computes Shannon entropy in bits from a byte-frequency
// table. Ranges from 0 (single value) to 8 (uniform over all 256 values).
func entropyFromCounts(freq *[256]uint32, total float64) float64 {
	entropy := 0.0
	for _, f := range freq {
		if f == 0 {
			continue
		}
		p := float64(f) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

package analysis

// BlockEntropy computes per-block Shannon entropy. Returns one float32 per
// blockSize-byte block (the last block may be shorter), each in [0, 8].
// Empty data or a zero block size yields nil.
func BlockEntropy(data []byte, blockSize int) []float32 {
	if len(data) == 0 || blockSize <= 0 {
		return nil
	}

	n := (len(data) + blockSize - 1) / blockSize
	values := make([]float32, 0, n)

	for start := 0; start < len(data); start += blockSize {
		end := min(start+blockSize, len(data))
		block := data[start:end]

		var freq [256]uint32
		for _, b := range block {
			freq[b]++
		}
		values = append(values, float32(entropyFromCounts(&freq, float64(len(block)))))
	}

	return values
}

package analysis

import "math"

// ByteHistogram counts occurrences of each byte value over some data.
// The zero value is an empty histogram ready for use.
type ByteHistogram struct {
	Counts [256]uint64
	Total  uint64
}

// HistogramOf builds a histogram from data in one pass.
func HistogramOf(data []byte) ByteHistogram {
	var h ByteHistogram
	h.Observe(data)
	return h
}

// Observe adds every byte of data to the histogram.
func (h *ByteHistogram) Observe(data []byte) {
	for _, b := range data {
		h.Counts[b]++
	}
	h.Total += uint64(len(data))
}

// Merge folds other into h. Merge is commutative and associative over both
// the per-value counts and the total.
func (h *ByteHistogram) Merge(other *ByteHistogram) {
	for i := range h.Counts {
		h.Counts[i] += other.Counts[i]
	}
	h.Total += other.Total
}

// Frequency returns the observed probability of a byte value, or 0 for an
// empty histogram.
func (h *ByteHistogram) Frequency(b byte) float64 {
	if h.Total == 0 {
		return 0
	}
	return float64(h.Counts[b]) / float64(h.Total)
}

// MaxCount returns the count of the most common byte value.
func (h *ByteHistogram) MaxCount() uint64 {
	var maxC uint64
	for _, c := range h.Counts {
		if c > maxC {
			maxC = c
		}
	}
	return maxC
}

// Entropy computes Shannon entropy in bits over the distribution, in [0, 8].
func (h *ByteHistogram) Entropy() float64 {
	if h.Total == 0 {
		return 0
	}
	total := float64(h.Total)
	entropy := 0.0
	for _, c := range h.Counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// HistogramStats summarizes the shape of a byte distribution.
type HistogramStats struct {
	Total           uint64
	UniqueValues    int
	MostCommon      byte
	MostCommonCount uint64
	LeastCommon     uint64 // count of the rarest value (including absent values)
	Entropy         float64
	Flatness        float64 // 0 = one value dominates, 1 = perfectly uniform
}

// Stats derives summary statistics from the histogram. Flatness compares the
// distribution's standard deviation against the worst case: 1 minus
// clamp(stddev / expected-per-bin, 0, 1).
func (h *ByteHistogram) Stats() HistogramStats {
	stats := HistogramStats{
		Total:   h.Total,
		Entropy: h.Entropy(),
	}

	leastCommon := ^uint64(0)
	for i, c := range h.Counts {
		if c > 0 {
			stats.UniqueValues++
		}
		if c > stats.MostCommonCount {
			stats.MostCommonCount = c
			stats.MostCommon = byte(i)
		}
		if c < leastCommon {
			leastCommon = c
		}
	}
	stats.LeastCommon = leastCommon

	if h.Total > 0 {
		expected := float64(h.Total) / 256.0
		variance := 0.0
		for _, c := range h.Counts {
			d := float64(c) - expected
			variance += d * d
		}
		variance /= 256.0
		stdDev := math.Sqrt(variance)
		stats.Flatness = 1.0 - math.Min(stdDev/expected, 1.0)
	}

	return stats
}

// LooksEncrypted reports whether the distribution resembles encrypted or
// well-compressed data: very high entropy with a near-uniform spread.
func (h *ByteHistogram) LooksEncrypted() bool {
	stats := h.Stats()
	return stats.Entropy > 7.5 && stats.Flatness > 0.8
}

// LooksASCII reports whether the distribution resembles ASCII text: over 85%
// of bytes printable or tab/LF/CR.
func (h *ByteHistogram) LooksASCII() bool {
	if h.Total == 0 {
		return false
	}
	var printable uint64
	for b := 0x20; b <= 0x7E; b++ {
		printable += h.Counts[b]
	}
	printable += h.Counts['\t'] + h.Counts['\n'] + h.Counts['\r']
	return float64(printable)/float64(h.Total) > 0.85
}

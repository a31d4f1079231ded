// Package scan runs analysis operations on background goroutines and streams
// their results over channels. Every operation gets its own goroutine and its
// own memory mapping of the input file, so concurrent scans share no state;
// the consumer owns only the receiving end of a channel. Results arrive as
// ordered chunk messages in increasing file offset; a closed channel means
// the operation finished (or failed after logging). Cancelling the context
// stops a worker at its next chunk boundary.
package scan

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"bytescope/internal/analysis"
	"bytescope/internal/compute"
	"bytescope/internal/hilbert"
	"bytescope/internal/mapfile"
	"bytescope/internal/pattern"
	"bytescope/internal/signatures"
)

// FileChunkBytes is the file-level granularity for progressive operations.
const FileChunkBytes = 64 << 20

// EntropyChunk carries per-block entropy for one contiguous block range.
type EntropyChunk struct {
	StartBlock  uint64
	Values      []float32
	TotalBlocks uint64
}

// ClassifyChunk carries per-block classification for one contiguous block
// range.
type ClassifyChunk struct {
	StartBlock  uint64
	Values      []analysis.BlockClass
	TotalBlocks uint64
}

// SearchResult is the complete output of a pattern search.
type SearchResult struct {
	Offsets    []uint64
	DurationMS float64
}

// SignatureHit is one detected file signature.
type SignatureHit struct {
	Offset uint64
	Name   string
	Magic  []byte
}

// DeepScanChunk carries signature hits found in one file chunk, plus
// progress. DurationMS is set only on the final chunk.
type DeepScanChunk struct {
	Hits         []SignatureHit
	BytesScanned uint64
	TotalBytes   uint64
	IsFinal      bool
	DurationMS   float64
}

// DiffResult is the complete output of a two-file comparison.
type DiffResult struct {
	Offsets    []uint64
	DurationMS float64
}

// TextureResult is a rendered Hilbert-curve texture.
type TextureResult struct {
	Pixels     []uint32
	Size       uint32
	DurationMS float64
}

// HistogramChunk carries the byte histogram of one file chunk; the consumer
// merges chunks as they arrive.
type HistogramChunk struct {
	Hist         analysis.ByteHistogram
	BytesScanned uint64
	TotalBytes   uint64
	IsFinal      bool
}

// Scanner launches background analysis operations against a compute device.
type Scanner struct {
	dev compute.Device
	log *log.Logger
}

// New returns a Scanner using dev for chunked compute work.
func New(dev compute.Device, logger *log.Logger) *Scanner {
	return &Scanner{dev: dev, log: logger}
}

// recoverWorker converts a worker panic into a logged error so a crashing
// backend cannot take the consumer down with it.
func (s *Scanner) recoverWorker(op string) {
	if r := recover(); r != nil {
		s.log.Error("analysis worker panicked", "op", op, "panic", r)
	}
}

// Analyze streams per-block entropy and classification for the file at path.
// Both channels deliver chunks in increasing block order and close when the
// whole file has been processed. The two streams are produced by independent
// workers, so the consumer may drain them in any order, including one to
// completion before the other.
func (s *Scanner) Analyze(ctx context.Context, path string) (<-chan EntropyChunk, <-chan ClassifyChunk) {
	entropyCh := make(chan EntropyChunk, 4)
	classifyCh := make(chan ClassifyChunk, 4)

	go func() {
		defer close(entropyCh)
		defer s.recoverWorker("entropy")
		s.analyzeBlocks(ctx, path, "entropy", func(chunk []byte, blockSize uint32, blockOffset, totalBlocks uint64) (int, error) {
			values, err := s.dev.ComputeEntropy(chunk, blockSize)
			if err != nil {
				return 0, err
			}
			select {
			case entropyCh <- EntropyChunk{StartBlock: blockOffset, Values: values, TotalBlocks: totalBlocks}:
				return len(values), nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		})
	}()

	go func() {
		defer close(classifyCh)
		defer s.recoverWorker("classify")
		s.analyzeBlocks(ctx, path, "classify", func(chunk []byte, blockSize uint32, blockOffset, totalBlocks uint64) (int, error) {
			classes, err := s.dev.ComputeClassification(chunk, blockSize)
			if err != nil {
				return 0, err
			}
			select {
			case classifyCh <- ClassifyChunk{StartBlock: blockOffset, Values: classes, TotalBlocks: totalBlocks}:
				return len(classes), nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		})
	}()

	return entropyCh, classifyCh
}

// analyzeBlocks walks the file in 64MB chunks, calling process once per chunk
// with the running block offset. process returns the number of blocks it
// delivered. Each caller opens its own mapping so the two Analyze workers
// share no state.
func (s *Scanner) analyzeBlocks(ctx context.Context, path, op string, process func(chunk []byte, blockSize uint32, blockOffset, totalBlocks uint64) (int, error)) {
	f, err := mapfile.Open(path)
	if err != nil {
		s.log.Error("analyze: open failed", "op", op, "path", path, "err", err)
		return
	}
	defer f.Close()

	fileLen := f.Len()
	if fileLen == 0 {
		return
	}

	blockSize := analysis.BlockSizeFor(fileLen)
	totalBlocks := (fileLen + blockSize - 1) / blockSize
	s.log.Debug("analyze: starting", "op", op, "path", path, "block_size", blockSize, "blocks", totalBlocks)

	var blockOffset uint64
	for offset := uint64(0); offset < fileLen; offset += FileChunkBytes {
		if ctx.Err() != nil {
			return
		}
		chunk := f.Slice(analysis.NewRegion(offset, FileChunkBytes))

		n, err := process(chunk, uint32(blockSize), blockOffset, totalBlocks)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error("analyze: chunk failed", "op", op, "offset", offset, "err", err)
			}
			return
		}
		blockOffset += uint64(n)
	}
}

// Search finds every occurrence of pat in the file at path using the
// parallel CPU scanner, which beats the compute backend for single patterns
// once transfer overhead is counted. The channel delivers one result and
// closes.
func (s *Scanner) Search(ctx context.Context, path string, pat []byte) <-chan SearchResult {
	ch := make(chan SearchResult, 1)

	go func() {
		defer close(ch)
		defer s.recoverWorker("search")

		start := time.Now()
		f, err := mapfile.Open(path)
		if err != nil {
			s.log.Error("search: open failed", "path", path, "err", err)
			return
		}
		defer f.Close()

		offsets := pattern.ScanParallel(f.Bytes(), pat)
		duration := float64(time.Since(start).Microseconds()) / 1000.0
		s.log.Info("search complete", "matches", len(offsets), "duration_ms", duration)

		select {
		case ch <- SearchResult{Offsets: offsets, DurationMS: duration}:
		case <-ctx.Done():
		}
	}()

	return ch
}

// DeepScan finds every known file signature in the file at path, streaming
// hits per 64MB chunk with progress. Chunks overlap by the longest magic so
// a signature straddling a boundary is still found; a hit is reported by the
// first chunk whose data fully contains it.
func (s *Scanner) DeepScan(ctx context.Context, path string) <-chan DeepScanChunk {
	ch := make(chan DeepScanChunk, 4)

	go func() {
		defer close(ch)
		defer s.recoverWorker("deep-scan")

		start := time.Now()
		f, err := mapfile.Open(path)
		if err != nil {
			s.log.Error("deep scan: open failed", "path", path, "err", err)
			return
		}
		defer f.Close()

		fileLen := f.Len()
		patterns := make([][]byte, len(signatures.Registry))
		maxPatternLen := 0
		for i := range signatures.Registry {
			patterns[i] = signatures.Registry[i].Magic
			maxPatternLen = max(maxPatternLen, len(patterns[i]))
		}

		totalFound := 0
		for offset := uint64(0); offset < fileLen; offset += FileChunkBytes {
			if ctx.Err() != nil {
				return
			}

			chunkStart := offset
			if offset > 0 {
				chunkStart = offset - uint64(maxPatternLen-1)
			}
			chunkEnd := min(offset+FileChunkBytes, fileLen)
			chunk := f.Slice(analysis.NewRegion(chunkStart, chunkEnd-chunkStart))

			res, err := s.dev.ScanMultiPattern(chunk, patterns)
			if err != nil {
				s.log.Error("deep scan: chunk failed", "offset", offset, "err", err)
				return
			}

			var hits []SignatureHit
			for _, m := range res.Matches {
				abs := chunkStart + m.Offset
				sig := &signatures.Registry[m.PatternIdx]
				// Drop hits the previous chunk already saw in full.
				if offset > 0 && abs+uint64(len(sig.Magic)) <= offset {
					continue
				}
				if sig.FixedOffset >= 0 && abs != uint64(sig.FixedOffset) {
					continue
				}
				hits = append(hits, SignatureHit{Offset: abs, Name: sig.Name, Magic: sig.Magic})
			}
			totalFound += len(hits)

			isFinal := chunkEnd >= fileLen
			msg := DeepScanChunk{
				Hits:         hits,
				BytesScanned: chunkEnd,
				TotalBytes:   fileLen,
				IsFinal:      isFinal,
			}
			if isFinal {
				msg.DurationMS = float64(time.Since(start).Microseconds()) / 1000.0
			}
			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
		s.log.Info("deep scan complete", "signatures", totalFound)
	}()

	return ch
}

// Diff compares two files byte-wise and reports up to maxDiffs differing
// offsets. The channel delivers one result and closes.
func (s *Scanner) Diff(ctx context.Context, pathA, pathB string, maxDiffs int) <-chan DiffResult {
	ch := make(chan DiffResult, 1)

	go func() {
		defer close(ch)
		defer s.recoverWorker("diff")

		start := time.Now()
		fa, err := mapfile.Open(pathA)
		if err != nil {
			s.log.Error("diff: open failed", "path", pathA, "err", err)
			return
		}
		defer fa.Close()
		fb, err := mapfile.Open(pathB)
		if err != nil {
			s.log.Error("diff: open failed", "path", pathB, "err", err)
			return
		}
		defer fb.Close()

		offsets, err := s.dev.ComputeDiff(fa.Bytes(), fb.Bytes(), maxDiffs)
		if err != nil {
			s.log.Error("diff failed", "err", err)
			return
		}
		duration := float64(time.Since(start).Microseconds()) / 1000.0
		s.log.Info("diff complete", "differences", len(offsets), "duration_ms", duration)

		select {
		case ch <- DiffResult{Offsets: offsets, DurationMS: duration}:
		case <-ctx.Done():
		}
	}()

	return ch
}

// Texture renders a Hilbert-curve visualization of the file at path. For
// entropy and classification modes the worker computes the per-block arrays
// itself; for byte-value and bit-density modes it pre-samples the file in
// Hilbert order before handing off to the device. The channel delivers one
// result and closes.
func (s *Scanner) Texture(ctx context.Context, path string, size uint32, mode compute.TextureMode) <-chan TextureResult {
	ch := make(chan TextureResult, 1)

	go func() {
		defer close(ch)
		defer s.recoverWorker("texture")

		start := time.Now()
		f, err := mapfile.Open(path)
		if err != nil {
			s.log.Error("texture: open failed", "path", path, "err", err)
			return
		}
		defer f.Close()
		fileLen := f.Len()

		var entropy []float32
		var classes []analysis.BlockClass
		var sampled []byte

		switch mode {
		case compute.TextureEntropy:
			blockSize := uint32(analysis.BlockSizeFor(fileLen))
			if entropy, err = s.dev.ComputeEntropy(f.Bytes(), blockSize); err != nil {
				s.log.Error("texture: entropy failed", "err", err)
				return
			}
		case compute.TextureClassification:
			blockSize := uint32(analysis.BlockSizeFor(fileLen))
			if classes, err = s.dev.ComputeClassification(f.Bytes(), blockSize); err != nil {
				s.log.Error("texture: classification failed", "err", err)
				return
			}
		case compute.TextureByteValue:
			sampled = SampleHilbertBytes(f, size)
		case compute.TextureBitDensity:
			sampled = SampleHilbertBits(f, size)
		}
		if ctx.Err() != nil {
			return
		}

		pixels, err := s.dev.ComputeHilbertTexture(fileLen, entropy, classes, sampled, size, mode)
		if err != nil {
			s.log.Error("texture failed", "err", err)
			return
		}
		duration := float64(time.Since(start).Microseconds()) / 1000.0
		s.log.Info("texture complete", "size", size, "mode", uint32(mode), "duration_ms", duration)

		select {
		case ch <- TextureResult{Pixels: pixels, Size: size, DurationMS: duration}:
		case <-ctx.Done():
		}
	}()

	return ch
}

// Histogram streams per-chunk byte histograms of the file at path. The
// consumer merges chunks to obtain the whole-file distribution.
func (s *Scanner) Histogram(ctx context.Context, path string) <-chan HistogramChunk {
	ch := make(chan HistogramChunk, 4)

	go func() {
		defer close(ch)
		defer s.recoverWorker("histogram")

		f, err := mapfile.Open(path)
		if err != nil {
			s.log.Error("histogram: open failed", "path", path, "err", err)
			return
		}
		defer f.Close()

		fileLen := f.Len()
		if fileLen == 0 {
			select {
			case ch <- HistogramChunk{IsFinal: true}:
			case <-ctx.Done():
			}
			return
		}

		for offset := uint64(0); offset < fileLen; offset += FileChunkBytes {
			if ctx.Err() != nil {
				return
			}
			chunk := f.Slice(analysis.NewRegion(offset, FileChunkBytes))
			end := offset + uint64(len(chunk))

			select {
			case ch <- HistogramChunk{
				Hist:         analysis.HistogramOf(chunk),
				BytesScanned: end,
				TotalBytes:   fileLen,
				IsFinal:      end >= fileLen,
			}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// SampleHilbertBytes picks one byte per texture pixel, stored in pixel
// (row-major) order, where pixel (x, y) samples the file offset its Hilbert
// index covers.
func SampleHilbertBytes(f *mapfile.File, size uint32) []byte {
	totalPixels := uint64(size) * uint64(size)
	bytesPerPixel := max(f.Len()/totalPixels, 1)
	data := f.Bytes()

	samples := make([]byte, totalPixels)
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			pixelIdx := uint64(y)*uint64(size) + uint64(x)
			fileOffset := hilbert.XYToD(size, x, y) * bytesPerPixel
			if fileOffset < uint64(len(data)) {
				samples[pixelIdx] = data[fileOffset]
			}
		}
	}
	return samples
}

// SampleHilbertBits picks one bit per texture pixel, packed eight pixels per
// byte most-significant bit first, downsampling when the file holds more
// bits than the texture has pixels.
func SampleHilbertBits(f *mapfile.File, size uint32) []byte {
	totalPixels := uint64(size) * uint64(size)
	fileLen := f.Len()
	bitsPerFileBit := max(fileLen*8/totalPixels, 1)
	data := f.Bytes()

	samples := make([]byte, (totalPixels+7)/8)
	for pixelIdx := uint64(0); pixelIdx < totalPixels; pixelIdx++ {
		fileBitIdx := pixelIdx * bitsPerFileBit
		byteIdx := fileBitIdx / 8
		if byteIdx >= fileLen {
			continue
		}
		bit := (data[byteIdx] >> (7 - fileBitIdx%8)) & 1
		samples[pixelIdx/8] |= bit << (7 - pixelIdx%8)
	}
	return samples
}

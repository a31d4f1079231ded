package compute

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"testing"

	"bytescope/internal/analysis"
	"bytescope/internal/pattern"
)

// tinyDevice forces chunk boundaries within small test inputs.
func tinyDevice() *CPUDevice {
	return &CPUDevice{limits: Limits{MaxWorkgroups: 5, WorkgroupSize: 4}}
}

func TestEntropyMatchesReference(t *testing.T) {
	d := NewCPUDevice()
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i * 31)
	}

	got, err := d.ComputeEntropy(data, 256)
	if err != nil {
		t.Fatal(err)
	}
	want := analysis.BlockEntropy(data, 256)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("block %d: entropy %f, want %f", i, got[i], want[i])
		}
	}
}

func TestEntropyChunked(t *testing.T) {
	// Tiny limits: block chunk = 5 blocks, so 12 blocks span 3 dispatches.
	d := tinyDevice()
	data := make([]byte, 12*256)
	for i := range data {
		data[i] = byte(i)
	}

	got, err := d.ComputeEntropy(data, 256)
	if err != nil {
		t.Fatal(err)
	}
	want := analysis.BlockEntropy(data, 256)
	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("block %d: chunked entropy %f, unchunked %f", i, got[i], want[i])
		}
	}
}

func TestEntropyRejectsBadBlockSize(t *testing.T) {
	d := NewCPUDevice()
	for _, bs := range []uint32{0, 100, 255, 300} {
		_, err := d.ComputeEntropy([]byte{1, 2, 3}, bs)
		if !errors.Is(err, ErrBlockSize) {
			t.Errorf("blockSize %d: err = %v, want ErrBlockSize", bs, err)
		}
	}
}

func TestClassificationMatchesReference(t *testing.T) {
	d := tinyDevice()
	data := make([]byte, 8*256+100)
	copy(data[2*256:], bytes.Repeat([]byte("The quick brown fox. "), 30))
	seed := uint32(1)
	for i := 5 * 256; i < 6*256; i++ {
		seed = seed*1664525 + 1013904223
		data[i] = byte(seed >> 24)
	}

	got, err := d.ComputeClassification(data, 256)
	if err != nil {
		t.Fatal(err)
	}
	want := analysis.ClassifyBlocks(data, 256)
	if !slices.Equal(got, want) {
		t.Fatalf("chunked classification diverges:\n got %v\nwant %v", got, want)
	}
}

func TestScanPatternSimple(t *testing.T) {
	d := NewCPUDevice()
	data := []byte("abracadabra")
	res, err := d.ScanPattern(data, []byte("abra"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Truncated {
		t.Error("unexpected truncation")
	}
	if !slices.Equal(res.Offsets, []uint64{0, 7}) {
		t.Fatalf("offsets = %v, want [0 7]", res.Offsets)
	}
}

func TestScanPatternBoundaryStraddle(t *testing.T) {
	// Chunk size is 16 bytes; plant a match straddling each boundary.
	d := tinyDevice()
	data := make([]byte, 64)
	copy(data[14:], "XYZ") // straddles 16
	copy(data[30:], "XYZ") // straddles 32
	copy(data[60:], "XYZ")

	res, err := d.ScanPattern(data, []byte("XYZ"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(res.Offsets, []uint64{14, 30, 60}) {
		t.Fatalf("offsets = %v, want [14 30 60]", res.Offsets)
	}
}

func TestScanPatternMatchesParallelScanner(t *testing.T) {
	d := tinyDevice()
	data := make([]byte, 10000)
	seed := uint32(99)
	for i := range data {
		seed = seed*1664525 + 1013904223
		data[i] = byte(seed>>24) & 3
	}
	pat := []byte{1, 2, 1}

	res, err := d.ScanPattern(data, pat)
	if err != nil {
		t.Fatal(err)
	}
	want := pattern.Scan(data, pat)
	if !slices.Equal(res.Offsets, want) {
		t.Fatalf("device found %d matches, naive scan %d", len(res.Offsets), len(want))
	}
}

func TestScanPatternTruncation(t *testing.T) {
	d := NewCPUDevice()
	data := make([]byte, MaxScanMatches+4000)
	res, err := d.ScanPattern(data, []byte{0})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Truncated {
		t.Fatal("expected truncated result")
	}
	if len(res.Offsets) != MaxScanMatches {
		t.Fatalf("len = %d, want %d", len(res.Offsets), MaxScanMatches)
	}
}

func TestScanPatternValidation(t *testing.T) {
	d := NewCPUDevice()
	if _, err := d.ScanPattern([]byte("data"), nil); !errors.Is(err, ErrPatternSize) {
		t.Errorf("empty pattern: err = %v", err)
	}
	if _, err := d.ScanPattern([]byte("data"), bytes.Repeat([]byte{1}, 17)); !errors.Is(err, ErrPatternSize) {
		t.Errorf("17-byte pattern: err = %v", err)
	}
	res, err := d.ScanPattern([]byte("ab"), []byte("abc"))
	if err != nil || len(res.Offsets) != 0 {
		t.Errorf("pattern longer than data: res = %v, err = %v", res, err)
	}
}

func TestScanMultiPattern(t *testing.T) {
	d := tinyDevice()
	data := make([]byte, 64)
	copy(data[4:], "CAT")
	copy(data[15:], "DOG") // straddles the 16-byte boundary
	copy(data[40:], "CAT")

	res, err := d.ScanMultiPattern(data, [][]byte{[]byte("CAT"), []byte("DOG")})
	if err != nil {
		t.Fatal(err)
	}
	want := []MultiPatternMatch{
		{PatternIdx: 0, Offset: 4},
		{PatternIdx: 1, Offset: 15},
		{PatternIdx: 0, Offset: 40},
	}
	if !slices.Equal(res.Matches, want) {
		t.Fatalf("matches = %v, want %v", res.Matches, want)
	}
}

func TestScanMultiPatternSameOffsetOrdering(t *testing.T) {
	d := NewCPUDevice()
	data := []byte("ABCD")
	// Both patterns match at offset 0; pattern index breaks the tie.
	res, err := d.ScanMultiPattern(data, [][]byte{[]byte("ABC"), []byte("AB")})
	if err != nil {
		t.Fatal(err)
	}
	want := []MultiPatternMatch{
		{PatternIdx: 0, Offset: 0},
		{PatternIdx: 1, Offset: 0},
	}
	if !slices.Equal(res.Matches, want) {
		t.Fatalf("matches = %v, want %v", res.Matches, want)
	}
}

func TestScanMultiPatternEmpty(t *testing.T) {
	d := NewCPUDevice()
	res, err := d.ScanMultiPattern(nil, [][]byte{[]byte("X")})
	if err != nil || len(res.Matches) != 0 {
		t.Errorf("empty data: res = %v, err = %v", res, err)
	}
	res, err = d.ScanMultiPattern([]byte("X"), nil)
	if err != nil || len(res.Matches) != 0 {
		t.Errorf("no patterns: res = %v, err = %v", res, err)
	}
	if _, err := d.ScanMultiPattern([]byte("data"), [][]byte{{}}); !errors.Is(err, ErrPatternSize) {
		t.Errorf("empty pattern in set: err = %v", err)
	}
}

func TestPackPatterns(t *testing.T) {
	packed, meta := packPatterns([][]byte{[]byte("abc"), []byte("defgh")})
	if len(packed)%4 != 0 {
		t.Fatalf("packed buffer not 4-byte aligned: len %d", len(packed))
	}
	wantMeta := []uint32{0, 3, 4, 5}
	if !slices.Equal(meta, wantMeta) {
		t.Fatalf("meta = %v, want %v", meta, wantMeta)
	}
	if !bytes.Equal(packed[0:3], []byte("abc")) || !bytes.Equal(packed[4:9], []byte("defgh")) {
		t.Fatalf("packed = %q", packed)
	}
}

func TestDiffIdentical(t *testing.T) {
	d := NewCPUDevice()
	data := []byte("same bytes on both sides")
	offsets, err := d.ComputeDiff(data, data, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(offsets) != 0 {
		t.Fatalf("identical inputs produced diffs: %v", offsets)
	}
}

func TestDiffExactPositions(t *testing.T) {
	d := tinyDevice()
	a := make([]byte, 64)
	b := make([]byte, 64)
	for _, i := range []int{3, 15, 16, 50} {
		b[i] = 0xFF
	}
	offsets, err := d.ComputeDiff(a, b, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(offsets, []uint64{3, 15, 16, 50}) {
		t.Fatalf("offsets = %v", offsets)
	}
}

func TestDiffCapped(t *testing.T) {
	d := NewCPUDevice()
	a := make([]byte, 1000)
	b := bytes.Repeat([]byte{1}, 1000)
	offsets, err := d.ComputeDiff(a, b, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(offsets) != 10 {
		t.Fatalf("len = %d, want 10", len(offsets))
	}
	if !slices.Equal(offsets, []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}) {
		t.Fatalf("offsets = %v", offsets)
	}
}

func TestDiffUnequalLengths(t *testing.T) {
	d := NewCPUDevice()
	a := []byte("abcdef")
	b := []byte("abXdefGHIJ")
	offsets, err := d.ComputeDiff(a, b, 100)
	if err != nil {
		t.Fatal(err)
	}
	// Only min(len(a), len(b)) bytes are compared.
	if !slices.Equal(offsets, []uint64{2}) {
		t.Fatalf("offsets = %v, want [2]", offsets)
	}
}

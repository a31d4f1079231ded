package analysis

import (
	"bytes"
	"math"
	"testing"
)

func TestClassifyAllZeros(t *testing.T) {
	classes := ClassifyBlocks(make([]byte, 256), 256)
	if len(classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(classes))
	}
	if classes[0] != ClassZeros {
		t.Errorf("expected Zeros, got %s", classes[0].Label())
	}
}

func TestClassifyMostlyZeros(t *testing.T) {
	// 250 zeros + 6 non-zero = 97.6% zeros.
	data := append(make([]byte, 250), 1, 2, 3, 4, 5, 6)
	classes := ClassifyBlocks(data, 256)
	if classes[0] != ClassZeros {
		t.Errorf("expected Zeros, got %s", classes[0].Label())
	}
}

func TestClassifyASCIIText(t *testing.T) {
	src := []byte("The quick brown fox jumps over the lazy dog 0123456789. ")
	data := bytes.Repeat(src, 256/len(src)+1)[:256]
	classes := ClassifyBlocks(data, 256)
	if classes[0] != ClassASCII {
		t.Errorf("expected ASCII, got %s", classes[0].Label())
	}
}

func TestClassifyASCIIWithWhitespace(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		switch i % 10 {
		case 0:
			data[i] = '\n'
		case 5:
			data[i] = '\t'
		default:
			data[i] = byte('A' + i%26)
		}
	}
	classes := ClassifyBlocks(data, 256)
	if classes[0] != ClassASCII {
		t.Errorf("expected ASCII, got %s", classes[0].Label())
	}
}

func TestClassifyHighEntropy(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	classes := ClassifyBlocks(data, 256)
	if classes[0] != ClassHighEntropy {
		t.Errorf("expected HighEntropy, got %s", classes[0].Label())
	}
}

func TestClassifyUTF8Text(t *testing.T) {
	// Repeated multi-byte sequences: lead bytes present, low entropy.
	data := bytes.Repeat([]byte("caf\xC3\xA9 "), 256/6+1)[:256]
	classes := ClassifyBlocks(data, 256)
	if classes[0] != ClassUTF8 && classes[0] != ClassASCII {
		t.Errorf("expected UTF8 or ASCII, got %s", classes[0].Label())
	}
}

func TestClassifyDegenerate(t *testing.T) {
	if got := ClassifyBlocks(nil, 256); got != nil {
		t.Errorf("empty data: expected nil, got %v", got)
	}
	if got := ClassifyBlocks([]byte{1, 2, 3}, 0); got != nil {
		t.Errorf("zero block size: expected nil, got %v", got)
	}
}

func TestClassifyMultipleBlocks(t *testing.T) {
	var data []byte
	data = append(data, make([]byte, 256)...)          // Zeros
	data = append(data, bytes.Repeat([]byte{'A'}, 256)...) // ASCII
	for i := 0; i < 256; i++ {                         // HighEntropy
		data = append(data, byte(i))
	}

	classes := ClassifyBlocks(data, 256)
	want := []BlockClass{ClassZeros, ClassASCII, ClassHighEntropy}
	if len(classes) != len(want) {
		t.Fatalf("expected %d classes, got %d", len(want), len(classes))
	}
	for i, c := range classes {
		if c != want[i] {
			t.Errorf("block %d: expected %s, got %s", i, want[i].Label(), c.Label())
		}
	}
}

func TestClassifyPartialLastBlock(t *testing.T) {
	data := append(make([]byte, 256), bytes.Repeat([]byte{'X'}, 44)...)
	classes := ClassifyBlocks(data, 256)
	if len(classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(classes))
	}
	if classes[0] != ClassZeros || classes[1] != ClassASCII {
		t.Errorf("got %s, %s", classes[0].Label(), classes[1].Label())
	}
}

func TestClassifyBlockCountInvariant(t *testing.T) {
	data := make([]byte, 5000)
	for _, blockSize := range []int{256, 512, 1024, 2048} {
		classes := ClassifyBlocks(data, blockSize)
		want := (len(data) + blockSize - 1) / blockSize
		if len(classes) != want {
			t.Errorf("blockSize %d: expected %d blocks, got %d", blockSize, want, len(classes))
		}
	}
}

// Four 1024-byte zones: all-zero, a 4-value cycle, an LCG pseudo-random
// stream, and repeating "ABCD".
func TestClassifyZonedFixture(t *testing.T) {
	data := make([]byte, 0, 4096)
	data = append(data, make([]byte, 1024)...)
	for i := 0; i < 1024; i++ {
		data = append(data, byte(i%4))
	}
	state := uint64(0xCAFEBABE)
	for i := 0; i < 1024; i++ {
		state = state*6364136223846793005 + 1
		data = append(data, byte(state>>33))
	}
	data = append(data, bytes.Repeat([]byte("ABCD"), 256)...)

	classes := ClassifyBlocks(data, 1024)
	if len(classes) != 4 {
		t.Fatalf("expected 4 classes, got %d", len(classes))
	}
	if classes[0] != ClassZeros {
		t.Errorf("block 0: expected Zeros, got %s", classes[0].Label())
	}
	if classes[2] != ClassHighEntropy {
		t.Errorf("block 2: expected HighEntropy, got %s", classes[2].Label())
	}
	if classes[3] != ClassASCII {
		t.Errorf("block 3: expected ASCII, got %s", classes[3].Label())
	}
}

func TestBlockEntropyBounds(t *testing.T) {
	zeros := BlockEntropy(make([]byte, 256), 256)
	if len(zeros) != 1 || math.Abs(float64(zeros[0])) > 0.001 {
		t.Errorf("all-zeros entropy: expected 0.0, got %v", zeros)
	}

	uniform := make([]byte, 256)
	for i := range uniform {
		uniform[i] = byte(i)
	}
	full := BlockEntropy(uniform, 256)
	if len(full) != 1 || math.Abs(float64(full[0])-8.0) > 0.001 {
		t.Errorf("uniform entropy: expected 8.0, got %v", full)
	}
}

func TestBlockEntropyTwoValues(t *testing.T) {
	data := append(make([]byte, 128), bytes.Repeat([]byte{1}, 128)...)
	values := BlockEntropy(data, 256)
	if math.Abs(float64(values[0])-1.0) > 0.001 {
		t.Errorf("expected 1.0, got %v", values[0])
	}
}

func TestBlockEntropyMultipleBlocks(t *testing.T) {
	data := make([]byte, 256)
	for i := 0; i < 256; i++ {
		data = append(data, byte(i))
	}
	values := BlockEntropy(data, 256)
	if len(values) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(values))
	}
	if math.Abs(float64(values[0])) > 0.001 || math.Abs(float64(values[1])-8.0) > 0.001 {
		t.Errorf("got %v", values)
	}
}

func TestBlockEntropyDegenerate(t *testing.T) {
	if got := BlockEntropy(nil, 256); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := BlockEntropy([]byte{1}, 0); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

package binlog

import (
	"os"
	"testing"

	"github.com/luzijia/zeppelin/internal/errs"
)

// putHeader returns a 4-byte record header (1-byte type, 3-byte
// little-endian length).
func putHeader(typ recordType, length int) []byte {
	return []byte{byte(typ), byte(length), byte(length >> 8), byte(length >> 16)}
}

func record(typ recordType, payload []byte) []byte {
	return append(putHeader(typ, len(payload)), payload...)
}

func writeTempBinlog(t *testing.T, data []byte) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "binlog-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	return f
}

func TestReader_SingleFullRecord(t *testing.T) {
	t.Parallel()

	// --- given ---
	payload := []byte("hello-cmd")
	f := writeTempBinlog(t, record(recordFull, payload))
	r := NewReader(f)
	if err := r.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	// --- when ---
	got, consumed, err := r.Consume()

	// --- then ---
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Consume() payload = %q, want %q", got, payload)
	}
	if consumed != HeaderSize+len(payload) {
		t.Errorf("Consume() consumed = %d, want %d", consumed, HeaderSize+len(payload))
	}

	if _, _, err := r.Consume(); !errs.Is(err, errs.EndFile) {
		t.Errorf("second Consume() error = %v, want end_file", err)
	}
}

func TestReader_RecordSplitAcrossBlockBoundary(t *testing.T) {
	t.Parallel()

	// --- given ---
	// The FIRST record sits near the tail of block 0, followed by fewer
	// than HeaderSize zero bytes of padding; the LAST record starts block 1.
	part1 := []byte("abc")
	part2 := []byte("def")
	first := record(recordFirst, part1)
	last := record(recordLast, part2)

	const padTail = 3
	prefixLen := BlockSize - len(first) - padTail
	block0 := make([]byte, BlockSize)
	copy(block0[prefixLen:], first)
	data := append(block0, last...)

	f := writeTempBinlog(t, data)
	r := NewReader(f)
	if err := r.Seek(uint64(prefixLen)); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	// --- when ---
	got, _, err := r.Consume()

	// --- then ---
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	want := append(append([]byte{}, part1...), part2...)
	if string(got) != string(want) {
		t.Errorf("Consume() payload = %q, want %q", got, want)
	}
}

func TestReader_CorruptionMidBlockSkipsToNextBoundary(t *testing.T) {
	t.Parallel()

	// --- given ---
	// A full block whose first header claims an impossible length.
	block := make([]byte, BlockSize)
	copy(block, putHeader(recordFull, BlockSize)) // length far exceeds remaining space
	next := record(recordFull, []byte("next-cmd"))
	data := append(block, next...)

	f := writeTempBinlog(t, data)
	r := NewReader(f)
	if err := r.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	// --- when ---
	_, _, err := r.Consume()

	// --- then ---
	if !errs.Is(err, errs.Corruption) {
		t.Fatalf("Consume() error = %v, want corruption", err)
	}

	skipped := r.SkipNextBlock()
	if skipped != BlockSize {
		t.Errorf("SkipNextBlock() = %d, want %d", skipped, BlockSize)
	}

	got, _, err := r.Consume()
	if err != nil {
		t.Fatalf("Consume() after skip error = %v", err)
	}
	if string(got) != "next-cmd" {
		t.Errorf("Consume() after skip = %q, want %q", got, "next-cmd")
	}
}

func TestReader_TornTailAtEndOfFileIsIncomplete(t *testing.T) {
	t.Parallel()

	// --- given ---
	// Header declares a 100-byte payload but only 40 bytes follow, and the
	// file ends there (partial final block).
	header := putHeader(recordFull, 100)
	data := append(header, make([]byte, 40)...)

	f := writeTempBinlog(t, data)
	r := NewReader(f)
	if err := r.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	// --- when ---
	_, _, err := r.Consume()

	// --- then ---
	if !errs.Is(err, errs.Incomplete) {
		t.Fatalf("Consume() error = %v, want incomplete", err)
	}

	if _, _, err := r.Consume(); !errs.Is(err, errs.EndFile) {
		t.Errorf("Consume() after incomplete = %v, want end_file", err)
	}
}

func TestReader_BoundarySizedFiles(t *testing.T) {
	t.Parallel()

	sizes := []int{0, BlockSize - 1, BlockSize, BlockSize + 1}
	for _, size := range sizes {
		size := size
		t.Run(modeName(size), func(t *testing.T) {
			t.Parallel()

			// --- given ---
			f := writeTempBinlog(t, make([]byte, size))
			r := NewReader(f)
			if err := r.Seek(0); err != nil {
				t.Fatalf("Seek: %v", err)
			}

			// --- when ---
			_, _, err := r.Consume()

			// --- then ---
			if !errs.Is(err, errs.EndFile) {
				t.Errorf("Consume() error = %v, want end_file", err)
			}
		})
	}
}

func modeName(size int) string {
	switch {
	case size == 0:
		return "empty"
	case size < BlockSize:
		return "one_byte_under_block"
	case size == BlockSize:
		return "exact_block"
	default:
		return "one_byte_over_block"
	}
}

func TestReader_SeekBeyondFileEnd(t *testing.T) {
	t.Parallel()

	// --- given ---
	f := writeTempBinlog(t, make([]byte, 16))
	r := NewReader(f)

	// --- when ---
	err := r.Seek(1000)

	// --- then ---
	if !errs.Is(err, errs.InvalidArgument) {
		t.Errorf("Seek() error = %v, want invalid_argument", err)
	}
}

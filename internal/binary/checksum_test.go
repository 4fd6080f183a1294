package binary

import (
	"encoding/binary"
	"testing"
)

func TestLookup3ChecksumLengthVariations(t *testing.T) {
	checksums := make(map[uint32]int)

	for length := 0; length <= 24; length++ {
		data := make([]byte, length)
		for i := range data {
			data[i] = byte(i)
		}
		checksums[Lookup3Checksum(data)] = length
	}

	// Lengths straddling the 12-byte boundary must all hash differently.
	if len(checksums) != 25 {
		t.Errorf("expected 25 unique checksums for lengths 0-24, got %d", len(checksums))
	}
}

func TestLookup3KnownValue(t *testing.T) {
	// hashlittle("", 0) is the initial c value.
	if got := Lookup3Checksum(nil); got != 0xdeadbeef {
		t.Errorf("Lookup3Checksum(nil) = 0x%08x, want 0xdeadbeef", got)
	}
}

func TestFletcher32(t *testing.T) {
	if result := Fletcher32([]byte{}); result != 0 {
		t.Errorf("Fletcher32(empty) should be 0, got 0x%08x", result)
	}

	// One word 0x0201: sum1 = 0x0201, sum2 = 0x0201.
	if got := Fletcher32([]byte{0x01, 0x02}); got != 0x02010201 {
		t.Errorf("Fletcher32 = 0x%08x, want 0x02010201", got)
	}

	odd := []byte{0x01, 0x02, 0x03}
	even := []byte{0x01, 0x02, 0x03, 0x00}
	if Fletcher32(odd) != Fletcher32(even) {
		t.Error("Fletcher32 should zero-pad odd-length input")
	}
}

func TestVerifyFletcher32(t *testing.T) {
	data := []byte("block payload")
	checksum := Fletcher32(data)

	if !VerifyFletcher32(data, checksum) {
		t.Error("VerifyFletcher32 should return true for matching checksum")
	}
	if VerifyFletcher32(data, checksum+1) {
		t.Error("VerifyFletcher32 should return false for non-matching checksum")
	}
}

func TestVerifyTrailer(t *testing.T) {
	body := []byte("BIDX index body")
	data := binary.LittleEndian.AppendUint32(append([]byte{}, body...), Lookup3Checksum(body))

	if !VerifyTrailer(data) {
		t.Error("VerifyTrailer rejected a valid trailer")
	}

	data[0] ^= 0xFF
	if VerifyTrailer(data) {
		t.Error("VerifyTrailer accepted corrupted data")
	}

	if VerifyTrailer([]byte{1, 2, 3}) {
		t.Error("VerifyTrailer accepted data shorter than a checksum")
	}
}

func BenchmarkFletcher32(b *testing.B) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Fletcher32(data)
	}
}

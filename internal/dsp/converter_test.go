package dsp

import (
	"bytes"
	"testing"
)

func TestSignedFromOffsetBinaryFullRange(t *testing.T) {
	// Every possible byte value must map to (b - 128) mod 256.
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = byte(i)
	}

	SignedFromOffsetBinary(buf)

	for i := range buf {
		want := byte((i - 128) & 0xff)
		if buf[i] != want {
			t.Errorf("byte %d: got 0x%02x, want 0x%02x", i, buf[i], want)
		}
	}
}

func TestSignedFromOffsetBinaryNotIdempotent(t *testing.T) {
	// The transform is a true subtraction mod 256, not a sign flip: applying
	// it a second time keeps subtracting rather than leaving the output
	// alone, so f(f(b)) != f(b) for any nonzero offset.
	orig := []byte{0, 1, 127, 128, 129, 255}

	once := make([]byte, len(orig))
	copy(once, orig)
	SignedFromOffsetBinary(once)

	twice := make([]byte, len(once))
	copy(twice, once)
	SignedFromOffsetBinary(twice)

	if bytes.Equal(once, twice) {
		t.Error("second application should keep shifting the bytes, not fix them in place")
	}

	// Two subtractions of 128 cancel mod 256, so the double application
	// lands back on the raw input.
	if !bytes.Equal(twice, orig) {
		t.Errorf("double application should wrap to the original bytes: got %v, want %v", twice, orig)
	}

	// The documented round trip is adding the bias back.
	for i := range once {
		if restored := once[i] + 128; restored != orig[i] {
			t.Errorf("byte %d: adding bias back gave 0x%02x, want 0x%02x", i, restored, orig[i])
		}
	}
}

func TestSignedFromOffsetBinaryInPlace(t *testing.T) {
	buf := []byte{128, 255, 0}
	SignedFromOffsetBinary(buf)

	if buf[0] != 0 {
		t.Errorf("bias byte should map to zero, got 0x%02x", buf[0])
	}
	if buf[1] != 127 {
		t.Errorf("full scale should map to 127, got 0x%02x", buf[1])
	}
	if buf[2] != 128 {
		t.Errorf("zero should wrap to 128, got 0x%02x", buf[2])
	}
}

func TestSignedFromOffsetBinaryEmpty(t *testing.T) {
	// Must not panic on empty or nil buffers.
	SignedFromOffsetBinary(nil)
	SignedFromOffsetBinary([]byte{})
}

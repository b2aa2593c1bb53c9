// Package dsp provides the sample-domain pieces of the capture pipeline:
// the offset-binary sample converter and the windowed power monitor.
package dsp

// offsetBias is the zero-amplitude point of the dongle's unsigned 8-bit
// encoding: a raw byte of 128 means zero amplitude.
const offsetBias = 128

// SignedFromOffsetBinary converts a buffer of unsigned offset-binary samples
// to their signed equivalents in place. The subtraction wraps at 8 bits, so
// output stays byte-for-byte the same length as the input. Note this is not
// its own inverse; recovering the original bytes requires adding the bias
// back, not converting again.
func SignedFromOffsetBinary(buf []byte) {
	for i := range buf {
		buf[i] -= offsetBias
	}
}

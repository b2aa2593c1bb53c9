// Package wavfile writes RTL-SDR sample captures as streaming WAV files.
//
// The layout is the classic RIFF/WAVE header extended with the "auxi"
// metadata chunk used by SDR tooling (SpectraVue and friends): capture
// timestamps and tuner frequency travel inside the file itself. The RIFF and
// data chunk sizes are written as the 0xFFFFFFFF streaming sentinel because
// the total length is unknown while the capture is running and the output may
// be an unseekable pipe.
package wavfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// UnknownSize is the chunk-size sentinel for streams whose final length
// cannot be known when the header is written.
const UnknownSize = 0xFFFFFFFF

const (
	formatPCM = 1 // WAVE_FORMAT_PCM
	channels  = 2 // interleaved I and Q

	fmtChunkSize  = 16 // PCM format body
	auxiChunkSize = 52 // two datetimes plus five uint32 fields
	headerSize    = 12 + 8 + fmtChunkSize + 8 + auxiChunkSize + 8
)

// Writer owns the capture output destination and its header lifecycle.
// A Writer for stdout never closes the underlying stream.
type Writer struct {
	f        *os.File
	isStdout bool
	closed   bool
}

// Open acquires the output destination. A path of "-" selects the process's
// standard output; anything else creates (or truncates) a regular file.
func Open(path string) (*Writer, error) {
	if path == "-" {
		return &Writer{f: os.Stdout, isStdout: true}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &Writer{f: f}, nil
}

// WriteHeader emits the four-record header: RIFF container, fmt chunk, auxi
// metadata chunk, and the data chunk header. Sample bytes follow directly.
// Must be called exactly once, before any WriteSamples call.
func (w *Writer) WriteHeader(sampleRate, frequency uint32, bitsPerSample uint16) error {
	hdr := EncodeHeader(sampleRate, frequency, bitsPerSample, time.Now().UTC())
	if err := w.writeFull(hdr); err != nil {
		return fmt.Errorf("failed to write container header: %w", err)
	}
	return nil
}

// WriteSamples appends sample bytes verbatim after the header. A short write
// is unrecoverable: the destination is assumed corrupted or disconnected and
// the error must stop the capture.
func (w *Writer) WriteSamples(buf []byte) error {
	if err := w.writeFull(buf); err != nil {
		return fmt.Errorf("short write, samples lost: %w", err)
	}
	return nil
}

// writeFull writes all of buf or fails. os.File.Write already returns an
// error for any n < len(buf), so a nil error means the write completed.
func (w *Writer) writeFull(buf []byte) error {
	n, err := w.f.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}

// Close releases the destination. Closing is skipped for stdout since the
// stream is shared with the rest of the process, and repeated closes are
// no-ops so best-effort cleanup after cancellation stays safe.
func (w *Writer) Close() error {
	if w.isStdout || w.closed {
		return nil
	}
	w.closed = true
	return w.f.Close()
}

// EncodeHeader serializes the complete container header for a capture started
// at the given UTC time. Serialization is explicit and little-endian field by
// field; nothing depends on in-memory struct layout.
func EncodeHeader(sampleRate, frequency uint32, bitsPerSample uint16, start time.Time) []byte {
	bytesPerSample := uint32(bitsPerSample) / 8
	byteRate := channels * bytesPerSample * sampleRate
	blockAlign := uint16(channels * bytesPerSample)

	hdr := make([]byte, 0, headerSize)

	// RIFF container record; total size is unknowable while streaming.
	hdr = append(hdr, "RIFF"...)
	hdr = binary.LittleEndian.AppendUint32(hdr, UnknownSize)
	hdr = append(hdr, "WAVE"...)

	// fmt chunk: PCM, two channels (I and Q interleaved).
	hdr = append(hdr, "fmt "...)
	hdr = binary.LittleEndian.AppendUint32(hdr, fmtChunkSize)
	hdr = binary.LittleEndian.AppendUint16(hdr, formatPCM)
	hdr = binary.LittleEndian.AppendUint16(hdr, channels)
	hdr = binary.LittleEndian.AppendUint32(hdr, sampleRate)
	hdr = binary.LittleEndian.AppendUint32(hdr, byteRate)
	hdr = binary.LittleEndian.AppendUint16(hdr, blockAlign)
	hdr = binary.LittleEndian.AppendUint16(hdr, bitsPerSample)

	// auxi chunk: start datetime, zeroed stop datetime, center frequency,
	// then zeroed hardware fields (A/D sample frequency, IF frequency,
	// bandwidth, DC offset) that this pipeline does not track.
	hdr = append(hdr, "auxi"...)
	hdr = binary.LittleEndian.AppendUint32(hdr, auxiChunkSize)
	hdr = appendDateTime(hdr, start)
	hdr = appendDateTime(hdr, time.Time{})
	hdr = binary.LittleEndian.AppendUint32(hdr, frequency)
	hdr = binary.LittleEndian.AppendUint32(hdr, 0) // sample frequency
	hdr = binary.LittleEndian.AppendUint32(hdr, 0) // IF frequency
	hdr = binary.LittleEndian.AppendUint32(hdr, 0) // bandwidth
	hdr = binary.LittleEndian.AppendUint32(hdr, 0) // DC offset

	// data chunk header; sample bytes follow until end of stream.
	hdr = append(hdr, "data"...)
	hdr = binary.LittleEndian.AppendUint32(hdr, UnknownSize)

	return hdr
}

// appendDateTime serializes the 16-byte SYSTEMTIME-style datetime used by the
// auxi chunk: eight little-endian uint16 fields. The zero time serializes as
// all zeroes, which is how an unset stop time is represented.
func appendDateTime(b []byte, t time.Time) []byte {
	if t.IsZero() {
		return append(b, make([]byte, 16)...)
	}
	b = binary.LittleEndian.AppendUint16(b, uint16(t.Year()))
	b = binary.LittleEndian.AppendUint16(b, uint16(t.Month()))
	b = binary.LittleEndian.AppendUint16(b, 0) // day of week, unset
	b = binary.LittleEndian.AppendUint16(b, uint16(t.Day()))
	b = binary.LittleEndian.AppendUint16(b, uint16(t.Hour()))
	b = binary.LittleEndian.AppendUint16(b, uint16(t.Minute()))
	b = binary.LittleEndian.AppendUint16(b, uint16(t.Second()))
	b = binary.LittleEndian.AppendUint16(b, 0) // milliseconds, unset
	return b
}

package wavfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Header holds the decoded fields of a capture container header.
type Header struct {
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Frequency     uint32 // tuner center frequency from the auxi chunk
	StartTime     time.Time
	StopTime      time.Time
	DataSize      uint32 // UnknownSize for streamed captures
}

// ParseHeader decodes the four-record header from r, leaving the reader
// positioned at the first sample byte. It rejects containers whose chunk
// layout differs from what the writer produces.
func ParseHeader(r io.Reader) (*Header, error) {
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("failed to read container header: %w", err)
	}

	if !bytes.Equal(raw[0:4], []byte("RIFF")) || !bytes.Equal(raw[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("not a RIFF/WAVE container")
	}

	if !bytes.Equal(raw[12:16], []byte("fmt ")) {
		return nil, fmt.Errorf("expected fmt chunk, found %q", raw[12:16])
	}
	if size := binary.LittleEndian.Uint32(raw[16:20]); size != fmtChunkSize {
		return nil, fmt.Errorf("unexpected fmt chunk size %d", size)
	}
	if format := binary.LittleEndian.Uint16(raw[20:22]); format != formatPCM {
		return nil, fmt.Errorf("unsupported format tag %d", format)
	}

	h := &Header{
		Channels:      binary.LittleEndian.Uint16(raw[22:24]),
		SampleRate:    binary.LittleEndian.Uint32(raw[24:28]),
		ByteRate:      binary.LittleEndian.Uint32(raw[28:32]),
		BlockAlign:    binary.LittleEndian.Uint16(raw[32:34]),
		BitsPerSample: binary.LittleEndian.Uint16(raw[34:36]),
	}

	if !bytes.Equal(raw[36:40], []byte("auxi")) {
		return nil, fmt.Errorf("expected auxi chunk, found %q", raw[36:40])
	}
	if size := binary.LittleEndian.Uint32(raw[40:44]); size != auxiChunkSize {
		return nil, fmt.Errorf("unexpected auxi chunk size %d", size)
	}
	h.StartTime = parseDateTime(raw[44:60])
	h.StopTime = parseDateTime(raw[60:76])
	h.Frequency = binary.LittleEndian.Uint32(raw[76:80])

	if !bytes.Equal(raw[96:100], []byte("data")) {
		return nil, fmt.Errorf("expected data chunk, found %q", raw[96:100])
	}
	h.DataSize = binary.LittleEndian.Uint32(raw[100:104])

	return h, nil
}

// parseDateTime decodes the 16-byte auxi datetime. An all-zero field block
// decodes to the zero time.
func parseDateTime(b []byte) time.Time {
	year := int(binary.LittleEndian.Uint16(b[0:2]))
	if year == 0 {
		return time.Time{}
	}
	return time.Date(
		year,
		time.Month(binary.LittleEndian.Uint16(b[2:4])),
		int(binary.LittleEndian.Uint16(b[6:8])),
		int(binary.LittleEndian.Uint16(b[8:10])),
		int(binary.LittleEndian.Uint16(b[10:12])),
		int(binary.LittleEndian.Uint16(b[12:14])),
		int(binary.LittleEndian.Uint16(b[14:16]))*int(time.Millisecond),
		time.UTC,
	)
}

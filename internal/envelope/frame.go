// Package envelope implements the binary framing of .obb files:
// magic and version, followed by length-prefixed cleartext and payload
// sections. The package deals purely in bytes; interpreting the
// cleartext JSON and the encrypted payload is the caller's job.
package envelope

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Magic identifies an OBB envelope. The fourth byte doubles as a
// layout generation marker and never changes within format version 1.
var Magic = [4]byte{'O', 'B', 'B', 0x01}

// Version is the current format version carried after the magic.
const Version uint16 = 1

// maxSectionSize bounds a declared section length so a corrupt header
// cannot trigger an absurd allocation. Envelopes are whole-object
// in-memory files; 1 GiB is far beyond any real design.
const maxSectionSize = 1 << 30

// Frame is a decoded envelope container.
type Frame struct {
	// Version is the format version from the header.
	Version uint16
	// Cleartext is the UTF-8 JSON cleartext section.
	Cleartext []byte
	// Payload is the encrypted payload section, possibly empty.
	Payload []byte
}

// Encode writes the frame in wire form:
//
//	magic (4B) | version (u16 BE) | cleartext_len (u32 BE) | cleartext |
//	payload_len (u32 BE) | payload
func (f *Frame) Encode(w io.Writer) error {
	var buf bytes.Buffer
	buf.Write(Magic[:])

	var u16 [2]byte
	binary.BigEndian.PutUint16(u16[:], f.Version)
	buf.Write(u16[:])

	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(len(f.Cleartext)))
	buf.Write(u32[:])
	buf.Write(f.Cleartext)

	binary.BigEndian.PutUint32(u32[:], uint32(len(f.Payload)))
	buf.Write(u32[:])
	buf.Write(f.Payload)

	// One atomic write of the assembled bytes; there is no partial
	// frame state to corrupt on interruption.
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Bytes returns the wire form of the frame.
func (f *Frame) Bytes() []byte {
	var buf bytes.Buffer
	// Encode to a bytes.Buffer never fails.
	_ = f.Encode(&buf)
	return buf.Bytes()
}

// Decode reads a frame from r, validating magic and version.
func Decode(r io.Reader) (*Frame, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, ErrInvalidMagic
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	var u16 [2]byte
	if _, err := io.ReadFull(r, u16[:]); err != nil {
		return nil, ErrTruncated
	}
	version := binary.BigEndian.Uint16(u16[:])
	if version != Version {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}

	cleartext, err := readSection(r)
	if err != nil {
		return nil, err
	}
	payload, err := readSection(r)
	if err != nil {
		return nil, err
	}

	return &Frame{Version: version, Cleartext: cleartext, Payload: payload}, nil
}

// readSection reads one u32-length-prefixed section.
func readSection(r io.Reader) ([]byte, error) {
	var u32 [4]byte
	if _, err := io.ReadFull(r, u32[:]); err != nil {
		return nil, ErrTruncated
	}
	n := binary.BigEndian.Uint32(u32[:])
	if n > maxSectionSize {
		return nil, fmt.Errorf("%w: declared section of %d bytes", ErrTruncated, n)
	}
	section := make([]byte, n)
	if _, err := io.ReadFull(r, section); err != nil {
		return nil, fmt.Errorf("%w: declared %d bytes", ErrTruncated, n)
	}
	return section, nil
}

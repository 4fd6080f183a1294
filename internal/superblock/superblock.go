package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-bp/internal/binary"
)

// Signature identifies a BP-lite file.
var Signature = []byte{0x89, 'B', 'P', 'L', '\r', '\n', 0x1a, '\n'}

// Version is the only superblock version this package understands.
const Version = 1

// Errors
var (
	ErrNotBP              = errors.New("not a BP file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrInvalidSuperblock  = errors.New("invalid superblock structure")
	ErrChecksum           = errors.New("superblock checksum mismatch")
)

// Superblock contains the file-level metadata.
type Superblock struct {
	Version    uint8
	OffsetSize uint8
	LengthSize uint8
	Flags      uint8

	// Writers is the number of ranks that contributed blocks to the file.
	Writers uint32

	IndexAddress uint64
	IndexSize    uint64
	EOFAddress   uint64
}

// Size returns the encoded size of the superblock, checksum included.
func (sb *Superblock) Size() int {
	return 16 + 2*int(sb.OffsetSize) + int(sb.LengthSize) + 4
}

// Read parses and verifies the superblock at offset 0 of r.
func Read(r io.ReaderAt) (*Superblock, error) {
	head := make([]byte, 16)
	if n, err := r.ReadAt(head, 0); n < len(head) {
		if n >= len(Signature) && bytes.Equal(head[:len(Signature)], Signature) {
			return nil, fmt.Errorf("%w: truncated header", ErrInvalidSuperblock)
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, ErrNotBP
	}
	if !bytes.Equal(head[:len(Signature)], Signature) {
		return nil, ErrNotBP
	}
	if head[8] != Version {
		return nil, ErrUnsupportedVersion
	}

	sb := &Superblock{
		Version:    head[8],
		OffsetSize: head[9],
		LengthSize: head[10],
		Flags:      head[11],
		Writers:    binary.LittleEndian.Uint32(head[12:16]),
	}
	if err := sb.ReaderConfig().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuperblock, err)
	}

	raw := make([]byte, sb.Size())
	if n, _ := r.ReadAt(raw, 0); n < len(raw) {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidSuperblock)
	}
	if !binpkg.VerifyTrailer(raw) {
		return nil, ErrChecksum
	}

	br := binpkg.NewReader(bytes.NewReader(raw), sb.ReaderConfig()).At(16)
	var err error
	if sb.IndexAddress, err = br.ReadOffset(); err != nil {
		return nil, err
	}
	if sb.IndexSize, err = br.ReadLength(); err != nil {
		return nil, err
	}
	if sb.EOFAddress, err = br.ReadOffset(); err != nil {
		return nil, err
	}

	if sb.IndexSize < 4 || sb.IndexAddress+sb.IndexSize < sb.IndexAddress ||
		sb.IndexAddress+sb.IndexSize > sb.EOFAddress {
		return nil, fmt.Errorf("%w: index [%d, +%d) outside EOF %d",
			ErrInvalidSuperblock, sb.IndexAddress, sb.IndexSize, sb.EOFAddress)
	}
	return sb, nil
}

// ReaderConfig returns a binary.Config for readers of this file's metadata.
func (sb *Superblock) ReaderConfig() binpkg.Config {
	return binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

// Write encodes the superblock, checksum included, at offset 0 of w.
func (sb *Superblock) Write(w io.WriterAt) error {
	var buf binpkg.Buffer
	bw := binpkg.NewWriter(&buf, sb.ReaderConfig())

	if err := bw.WriteBytes(Signature); err != nil {
		return err
	}
	for _, b := range []uint8{Version, sb.OffsetSize, sb.LengthSize, sb.Flags} {
		if err := bw.WriteUint8(b); err != nil {
			return err
		}
	}
	if err := bw.WriteUint32(sb.Writers); err != nil {
		return err
	}
	if err := bw.WriteOffset(sb.IndexAddress); err != nil {
		return err
	}
	if err := bw.WriteLength(sb.IndexSize); err != nil {
		return err
	}
	if err := bw.WriteOffset(sb.EOFAddress); err != nil {
		return err
	}
	if err := bw.WriteUint32(binpkg.Lookup3Checksum(buf.Bytes())); err != nil {
		return err
	}

	_, err := w.WriteAt(buf.Bytes(), 0)
	return err
}

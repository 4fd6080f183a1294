package index

import (
	"fmt"
	"math"

	binpkg "github.com/robert-malhotra/go-bp/internal/binary"
)

// Encode serializes vars, in order, as a complete index including its
// trailing checksum.
func Encode(vars []*Variable, cfg binpkg.Config) ([]byte, error) {
	var buf binpkg.Buffer
	w := binpkg.NewWriter(&buf, cfg)

	if err := w.WriteBytes(Signature); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(uint32(len(vars))); err != nil {
		return nil, err
	}
	for _, v := range vars {
		if err := encodeVariable(w, v); err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}
	}
	if err := w.WriteUint32(binpkg.Lookup3Checksum(buf.Bytes())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeVariable(w *binpkg.Writer, v *Variable) error {
	if len(v.Name) > math.MaxUint16 {
		return fmt.Errorf("name longer than %d bytes", math.MaxUint16)
	}
	if err := w.WriteUint16(uint16(len(v.Name))); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(v.Name)); err != nil {
		return err
	}
	var signed uint8
	if v.Type.Signed {
		signed = 1
	}
	if err := w.WriteBytes([]byte{uint8(v.Type.Class), v.Type.Size, uint8(v.Type.Order), signed}); err != nil {
		return err
	}
	if err := w.WriteLength(v.Dim); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(v.Blocks))); err != nil {
		return err
	}
	for _, b := range v.Blocks {
		var flags uint8
		if b.HasChecksum {
			flags |= flagChecksum
		}
		if err := w.WriteUint32(b.Writer); err != nil {
			return err
		}
		if err := w.WriteUint8(flags); err != nil {
			return err
		}
		if err := w.WriteLength(b.Start); err != nil {
			return err
		}
		if err := w.WriteLength(b.Count); err != nil {
			return err
		}
		if err := w.WriteOffset(b.Address); err != nil {
			return err
		}
		if err := w.WriteUint32(b.Checksum); err != nil {
			return err
		}
	}
	return nil
}

package dtype

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Class is the numeric class of an element.
type Class uint8

const (
	ClassInteger Class = 0
	ClassFloat   Class = 1
)

// Order is the byte order of stored elements.
type Order uint8

const (
	LittleEndian Order = 0
	BigEndian    Order = 1
)

// ErrInvalid is returned for datatypes that cannot describe a stored element.
var ErrInvalid = errors.New("invalid datatype")

// Datatype describes one stored element.
type Datatype struct {
	Class  Class
	Size   uint8
	Order  Order
	Signed bool
}

// HostOrder returns the byte order of the running machine.
func HostOrder() Order {
	if cpu.IsBigEndian {
		return BigEndian
	}
	return LittleEndian
}

// Validate checks that the datatype is one this package can move.
func (dt Datatype) Validate() error {
	if dt.Order > BigEndian {
		return fmt.Errorf("%w: byte order %d", ErrInvalid, dt.Order)
	}
	switch dt.Class {
	case ClassInteger:
		switch dt.Size {
		case 1, 2, 4, 8:
			return nil
		}
	case ClassFloat:
		if dt.Size == 4 || dt.Size == 8 {
			return nil
		}
	default:
		return fmt.Errorf("%w: class %d", ErrInvalid, dt.Class)
	}
	return fmt.Errorf("%w: %d-byte %s", ErrInvalid, dt.Size, dt.className())
}

func (dt Datatype) className() string {
	if dt.Class == ClassFloat {
		return "float"
	}
	return "integer"
}

// String returns a Go-like name such as "float32" or "int32be".
func (dt Datatype) String() string {
	var name string
	switch {
	case dt.Class == ClassFloat:
		name = fmt.Sprintf("float%d", int(dt.Size)*8)
	case dt.Signed:
		name = fmt.Sprintf("int%d", int(dt.Size)*8)
	default:
		name = fmt.Sprintf("uint%d", int(dt.Size)*8)
	}
	if dt.Order == BigEndian {
		name += "be"
	}
	return name
}

// Of returns the datatype a Go element type is stored as, in host order.
func Of(t reflect.Type) (Datatype, bool) {
	size := uint8(t.Size())
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Datatype{Class: ClassInteger, Size: size, Order: HostOrder(), Signed: true}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Datatype{Class: ClassInteger, Size: size, Order: HostOrder()}, true
	case reflect.Float32, reflect.Float64:
		return Datatype{Class: ClassFloat, Size: size, Order: HostOrder()}, true
	}
	return Datatype{}, false
}

// Matches reports whether elements of t can hold dt's bytes unchanged.
func (dt Datatype) Matches(t reflect.Type) bool {
	native, ok := Of(t)
	if !ok {
		return false
	}
	if native.Class != dt.Class || native.Size != dt.Size {
		return false
	}
	return dt.Class == ClassFloat || native.Signed == dt.Signed
}

// Decode copies the elements encoded in src into dest[at:], where dest is a
// slice value whose element type matches dt.
func Decode(dt Datatype, src []byte, dest reflect.Value, at int) error {
	if dest.Kind() != reflect.Slice {
		return fmt.Errorf("destination must be a slice, got %s", dest.Kind())
	}
	if !dt.Matches(dest.Type().Elem()) {
		return fmt.Errorf("cannot decode %s into %s", dt, dest.Type())
	}
	size := int(dt.Size)
	if len(src)%size != 0 {
		return fmt.Errorf("%d bytes is not a whole number of %d-byte elements", len(src), size)
	}
	n := len(src) / size
	if at < 0 || at+n > dest.Len() {
		return fmt.Errorf("elements [%d, %d) exceed destination length %d", at, at+n, dest.Len())
	}

	view := bytesOf(dest)[at*size : (at+n)*size]
	copy(view, src)
	if dt.Order != HostOrder() {
		swap(view, size)
	}
	return nil
}

// Encode returns the stored representation of values, a slice whose element
// type matches dt.
func Encode(dt Datatype, values any) ([]byte, error) {
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("values must be a slice, got %T", values)
	}
	if !dt.Matches(v.Type().Elem()) {
		return nil, fmt.Errorf("cannot encode %s as %s", v.Type(), dt)
	}
	out := append([]byte(nil), bytesOf(v)...)
	if dt.Order != HostOrder() {
		swap(out, int(dt.Size))
	}
	return out, nil
}

// bytesOf returns the backing storage of a numeric slice as bytes.
func bytesOf(v reflect.Value) []byte {
	if v.Len() == 0 {
		return nil
	}
	size := int(v.Type().Elem().Size())
	return unsafe.Slice((*byte)(v.UnsafePointer()), v.Len()*size)
}

// swap reverses the bytes of each size-byte element of b in place.
func swap(b []byte, size int) {
	if size == 1 {
		return
	}
	for i := 0; i+size <= len(b); i += size {
		e := b[i : i+size]
		for l, r := 0, size-1; l < r; l, r = l+1, r-1 {
			e[l], e[r] = e[r], e[l]
		}
	}
}

package dtype

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"
)

func TestOf(t *testing.T) {
	tests := []struct {
		value  any
		class  Class
		size   uint8
		signed bool
	}{
		{int8(0), ClassInteger, 1, true},
		{int16(0), ClassInteger, 2, true},
		{int32(0), ClassInteger, 4, true},
		{int64(0), ClassInteger, 8, true},
		{uint8(0), ClassInteger, 1, false},
		{uint32(0), ClassInteger, 4, false},
		{uint64(0), ClassInteger, 8, false},
		{float32(0), ClassFloat, 4, false},
		{float64(0), ClassFloat, 8, false},
	}

	for _, tt := range tests {
		typ := reflect.TypeOf(tt.value)
		t.Run(typ.String(), func(t *testing.T) {
			dt, ok := Of(typ)
			if !ok {
				t.Fatalf("Of(%s) not supported", typ)
			}
			if dt.Class != tt.class || dt.Size != tt.size || dt.Signed != tt.signed {
				t.Errorf("Of(%s) = %+v", typ, dt)
			}
			if dt.String() != typ.String() {
				t.Errorf("String() = %q, want %q", dt.String(), typ.String())
			}
		})
	}

	if _, ok := Of(reflect.TypeOf("")); ok {
		t.Error("string should not map to a datatype")
	}
}

func TestMatches(t *testing.T) {
	f32 := Datatype{Class: ClassFloat, Size: 4}
	i32 := Datatype{Class: ClassInteger, Size: 4, Signed: true}

	tests := []struct {
		name string
		dt   Datatype
		typ  reflect.Type
		want bool
	}{
		{"float32", f32, reflect.TypeOf(float32(0)), true},
		{"float32 as float64", f32, reflect.TypeOf(float64(0)), false},
		{"float32 as int32", f32, reflect.TypeOf(int32(0)), false},
		{"int32", i32, reflect.TypeOf(int32(0)), true},
		{"int32 as uint32", i32, reflect.TypeOf(uint32(0)), false},
		{"big-endian float32", Datatype{Class: ClassFloat, Size: 4, Order: BigEndian}, reflect.TypeOf(float32(0)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dt.Matches(tt.typ); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := []Datatype{
		{Class: ClassInteger, Size: 1},
		{Class: ClassInteger, Size: 8, Signed: true, Order: BigEndian},
		{Class: ClassFloat, Size: 4},
	}
	for _, dt := range valid {
		if err := dt.Validate(); err != nil {
			t.Errorf("%v: unexpected error %v", dt, err)
		}
	}

	invalid := []Datatype{
		{Class: ClassInteger, Size: 3},
		{Class: ClassFloat, Size: 2},
		{Class: 7, Size: 4},
		{Class: ClassFloat, Size: 4, Order: 5},
	}
	for _, dt := range invalid {
		if err := dt.Validate(); err == nil {
			t.Errorf("%+v: expected error", dt)
		}
	}
}

func TestDecodeByteOrders(t *testing.T) {
	values := []float32{1.5, -2.25, 1e10}

	for _, order := range []Order{LittleEndian, BigEndian} {
		var bo binary.AppendByteOrder = binary.LittleEndian
		if order == BigEndian {
			bo = binary.BigEndian
		}
		raw := make([]byte, 0, 4*len(values))
		for _, v := range values {
			raw = bo.AppendUint32(raw, math.Float32bits(v))
		}

		dt := Datatype{Class: ClassFloat, Size: 4, Order: order}
		dest := make([]float32, len(values)+1)
		if err := Decode(dt, raw, reflect.ValueOf(dest), 1); err != nil {
			t.Fatalf("order %d: Decode failed: %v", order, err)
		}
		if dest[0] != 0 {
			t.Errorf("order %d: element before offset was touched", order)
		}
		for i, v := range values {
			if dest[i+1] != v {
				t.Errorf("order %d: dest[%d] = %v, want %v", order, i+1, dest[i+1], v)
			}
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	i32 := Datatype{Class: ClassInteger, Size: 4, Signed: true}

	if err := Decode(i32, make([]byte, 8), reflect.ValueOf(make([]int32, 1)), 0); err == nil {
		t.Error("expected overflow error")
	}
	if err := Decode(i32, make([]byte, 6), reflect.ValueOf(make([]int32, 2)), 0); err == nil {
		t.Error("expected partial element error")
	}
	if err := Decode(i32, make([]byte, 4), reflect.ValueOf(make([]float32, 1)), 0); err == nil {
		t.Error("expected type error")
	}
	if err := Decode(i32, make([]byte, 4), reflect.ValueOf(int32(0)), 0); err == nil {
		t.Error("expected non-slice error")
	}
}

func TestEncodeDecodeBigEndian(t *testing.T) {
	dt := Datatype{Class: ClassInteger, Size: 8, Signed: true, Order: BigEndian}
	in := []int64{1, -1, math.MaxInt64}

	raw, err := Encode(dt, in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if binary.BigEndian.Uint64(raw[:8]) != 1 {
		t.Errorf("first element not big-endian: % x", raw[:8])
	}

	out := make([]int64, len(in))
	if err := Decode(dt, raw, reflect.ValueOf(out), 0); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("got %v, want %v", out, in)
	}
	if in[0] != 1 {
		t.Error("Encode modified its input")
	}
}

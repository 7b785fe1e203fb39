package tensor

import (
	"math"
	"testing"
)

func TestFromFloat32_LengthMismatch(t *testing.T) {
	if _, err := FromFloat32(Shape{2, 2}, []float32{1, 2, 3}, CPU); err == nil {
		t.Error("length mismatch accepted")
	}
}

func TestFill(t *testing.T) {
	raw, err := NewRaw(Shape{5}, Float64, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	if err := Fill(raw, 2.5); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	for i, v := range raw.AsFloat64() {
		if v != 2.5 {
			t.Fatalf("element %d = %v, want 2.5", i, v)
		}
	}
}

func TestFloat16_Roundtrip(t *testing.T) {
	values := []float32{0, 1, -1, 0.5, 3.25, -1024, 65504}
	src, err := FromFloat32(Shape{len(values)}, values, CPU)
	if err != nil {
		t.Fatalf("FromFloat32: %v", err)
	}

	half, err := ConvertToFloat16(src)
	if err != nil {
		t.Fatalf("ConvertToFloat16: %v", err)
	}
	if half.DType() != Float16 {
		t.Fatalf("dtype = %s, want float16", half.DType())
	}
	if half.ByteSize() != 2*len(values) {
		t.Fatalf("ByteSize = %d, want %d", half.ByteSize(), 2*len(values))
	}

	back, err := ConvertToFloat32(half)
	if err != nil {
		t.Fatalf("ConvertToFloat32: %v", err)
	}
	for i, v := range back.AsFloat32() {
		// Every test value is exactly representable in float16.
		if v != values[i] {
			t.Errorf("roundtrip[%d] = %v, want %v", i, v, values[i])
		}
	}
}

func TestFloat16_RoundsInexactValues(t *testing.T) {
	src, err := FromFloat32(Shape{1}, []float32{math.Pi}, CPU)
	if err != nil {
		t.Fatalf("FromFloat32: %v", err)
	}
	half, err := ConvertToFloat16(src)
	if err != nil {
		t.Fatalf("ConvertToFloat16: %v", err)
	}
	back, err := ConvertToFloat32(half)
	if err != nil {
		t.Fatalf("ConvertToFloat32: %v", err)
	}
	got := back.AsFloat32()[0]
	if math.Abs(float64(got)-math.Pi) > 1e-3 {
		t.Errorf("pi roundtrip = %v, too far from %v", got, math.Pi)
	}
	if got == float32(math.Pi) {
		t.Error("expected precision loss through float16")
	}
}

func TestConvert_WrongSourceDType(t *testing.T) {
	f64, err := NewRaw(Shape{2}, Float64, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	if _, err := ConvertToFloat16(f64); err == nil {
		t.Error("ConvertToFloat16 accepted float64 source")
	}
	if _, err := ConvertToFloat32(f64); err == nil {
		t.Error("ConvertToFloat32 accepted float64 source")
	}
}

package tensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewRaw_ZeroInitialized(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3, 1, 1, 1}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	if raw.NumElements() != 6 {
		t.Fatalf("NumElements = %d, want 6", raw.NumElements())
	}
	if raw.ByteSize() != 24 {
		t.Fatalf("ByteSize = %d, want 24", raw.ByteSize())
	}
	for i, v := range raw.AsFloat32() {
		if v != 0 {
			t.Fatalf("element %d not zero: %v", i, v)
		}
	}
}

func TestNewRaw_InvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{2, 0}, Float32, CPU); err == nil {
		t.Error("zero dimension accepted")
	}
}

func TestRawTensor_AccessorPanicsOnWrongDType(t *testing.T) {
	raw, err := NewRaw(Shape{4}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("AsFloat64 on a float32 tensor did not panic")
		}
	}()
	raw.AsFloat64()
}

func TestRawTensor_View(t *testing.T) {
	// A batch of two 2x2 images; views address one image each.
	raw, err := FromFloat32(Shape{2, 2, 1, 1, 2}, []float32{1, 2, 3, 4, 5, 6, 7, 8}, CPU)
	if err != nil {
		t.Fatalf("FromFloat32: %v", err)
	}

	second, err := raw.View(4, Shape{2, 2, 1, 1, 1})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if diff := cmp.Diff([]float32{5, 6, 7, 8}, second.AsFloat32()); diff != "" {
		t.Errorf("view contents mismatch (-want +got):\n%s", diff)
	}

	// Views share memory with the parent.
	second.AsFloat32()[0] = 50
	if raw.AsFloat32()[4] != 50 {
		t.Error("view does not alias parent buffer")
	}
}

func TestRawTensor_ViewBounds(t *testing.T) {
	raw, err := NewRaw(Shape{2, 2}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	if _, err := raw.View(2, Shape{2, 2}); err == nil {
		t.Error("out-of-bounds view accepted")
	}
	if _, err := raw.View(-1, Shape{1}); err == nil {
		t.Error("negative offset accepted")
	}
}

func TestRawTensor_Dim(t *testing.T) {
	raw, err := NewRaw(Shape{3, 4, 5}, Float64, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	if raw.Dim(2) != 5 || raw.Dim(3) != 1 {
		t.Errorf("Dim = (%d, %d), want (5, 1)", raw.Dim(2), raw.Dim(3))
	}
}

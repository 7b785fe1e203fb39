package conv

import (
	"github.com/voxconv-ml/voxconv/internal/tensor"
)

// Params holds the stride and padding configuration of one convolution.
// Strides must be at least 1; each of the six spatial boundaries carries
// its own non-negative padding.
type Params struct {
	StrideY, StrideX, StrideT int

	PadTop, PadBottom int // height axis
	PadLeft, PadRight int // width axis
	PadFront, PadBack int // time axis
}

// UnitParams returns unit strides and no padding.
func UnitParams() Params {
	return Params{StrideY: 1, StrideX: 1, StrideT: 1}
}

func (p Params) validate(op string) error {
	if p.StrideY < 1 || p.StrideX < 1 || p.StrideT < 1 {
		return validationf(op, "strides must be >= 1, got (%d,%d,%d)", p.StrideY, p.StrideX, p.StrideT)
	}
	if p.PadTop < 0 || p.PadBottom < 0 || p.PadLeft < 0 || p.PadRight < 0 || p.PadFront < 0 || p.PadBack < 0 {
		return validationf(op, "padding must be >= 0, got (%d,%d,%d,%d,%d,%d)",
			p.PadTop, p.PadBottom, p.PadLeft, p.PadRight, p.PadFront, p.PadBack)
	}
	return nil
}

// outputExtent is the convolution arithmetic for one axis.
func outputExtent(in, k, stride, padLo, padHi int) int {
	return (in+padLo+padHi-k)/stride + 1
}

// OutputShape computes the output tensor shape a Forward call expects for
// the given data and filter shapes. The caller preallocates the output;
// Forward rejects any shape that does not match exactly.
func OutputShape(data, filters tensor.Shape, p Params) (tensor.Shape, error) {
	const op = "conv3d.OutputShape"
	g, err := resolveInput(op, data, filters, p)
	if err != nil {
		return nil, err
	}
	return tensor.Shape{g.oh, g.ow, g.ot, g.fn, g.batch}, nil
}

// geometry carries every derived dimension of one convolution call.
type geometry struct {
	h, w, t, c int // input volume extents
	kh, kw, kt int // kernel footprint
	fc, fn     int // filter input channels, total output filters
	oh, ow, ot int // output spatial extents
	batch      int

	numGroups       int
	filtersPerGroup int
	outputPixels    int // oh*ow*ot
	filtersVolume   int // kh*kw*kt*fc
	inVolume        int // per-image input elements
	outVolume       int // per-image output elements
}

// resolveInput derives and validates the geometry from the data and
// filter shapes alone.
func resolveInput(op string, data, filters tensor.Shape, p Params) (geometry, error) {
	var g geometry
	if err := p.validate(op); err != nil {
		return g, err
	}
	if len(data) != 5 {
		return g, validationf(op, "data must be rank 5 (H,W,T,C,N), got rank %d", len(data))
	}
	if len(filters) != 5 {
		return g, validationf(op, "filters must be rank 5 (kH,kW,kT,inC,outC), got rank %d", len(filters))
	}
	if err := data.Validate(); err != nil {
		return g, validationf(op, "data shape: %v", err)
	}
	if err := filters.Validate(); err != nil {
		return g, validationf(op, "filter shape: %v", err)
	}

	g.h, g.w, g.t, g.c, g.batch = data[0], data[1], data[2], data[3], data[4]
	g.kh, g.kw, g.kt, g.fc, g.fn = filters[0], filters[1], filters[2], filters[3], filters[4]

	if g.c%g.fc != 0 {
		return g, validationf(op, "filter input channels %d do not divide data channels %d", g.fc, g.c)
	}
	g.numGroups = g.c / g.fc
	if g.fn%g.numGroups != 0 {
		return g, validationf(op, "output filters %d not divisible by group count %d", g.fn, g.numGroups)
	}
	g.filtersPerGroup = g.fn / g.numGroups

	g.oh = outputExtent(g.h, g.kh, p.StrideY, p.PadTop, p.PadBottom)
	g.ow = outputExtent(g.w, g.kw, p.StrideX, p.PadLeft, p.PadRight)
	g.ot = outputExtent(g.t, g.kt, p.StrideT, p.PadFront, p.PadBack)
	if g.oh < 1 || g.ow < 1 || g.ot < 1 {
		return g, validationf(op, "kernel (%d,%d,%d) does not fit padded input (%d,%d,%d): output extent (%d,%d,%d)",
			g.kh, g.kw, g.kt, g.h, g.w, g.t, g.oh, g.ow, g.ot)
	}

	g.outputPixels = g.oh * g.ow * g.ot
	g.filtersVolume = g.kh * g.kw * g.kt * g.fc
	g.inVolume = g.h * g.w * g.t * g.c
	g.outVolume = g.outputPixels * g.fn
	return g, nil
}

// resolveGeometry additionally checks the preallocated output shape
// against the convolution arithmetic. Mismatches are rejected, never
// clipped.
func resolveGeometry(op string, data, filters, output tensor.Shape, p Params) (geometry, error) {
	g, err := resolveInput(op, data, filters, p)
	if err != nil {
		return g, err
	}
	want := tensor.Shape{g.oh, g.ow, g.ot, g.fn, g.batch}
	if !output.Equal(want) {
		return g, validationf(op, "output shape %v does not match expected %v", output, want)
	}
	return g, nil
}

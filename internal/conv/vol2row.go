package conv

import "github.com/voxconv-ml/voxconv/internal/tensor"

// vol2row unfolds one padded, strided image volume (h x w x t x c,
// column-major) into the patch matrix dst.
//
// The patch matrix is column-major with leading dimension outputPixels.
// Row index enumerates output positions in raster order, height fastest,
// then width, then time. Column index enumerates
// (kernel-height, kernel-width, kernel-time, channel), height fastest.
// This ordering matches the column-major filter memory exactly, so a
// plain GEMM against a filter group computes the convolution.
//
// Positions reading outside the input volume (padding) contribute zero.
func vol2row[T tensor.DType](dst, src []T, g geometry, p Params) {
	numP := g.outputPixels
	q := 0
	for cc := 0; cc < g.c; cc++ {
		for kz := 0; kz < g.kt; kz++ {
			for kx := 0; kx < g.kw; kx++ {
				for ky := 0; ky < g.kh; ky++ {
					col := dst[q*numP : (q+1)*numP]
					i := 0
					for oz := 0; oz < g.ot; oz++ {
						iz := oz*p.StrideT - p.PadFront + kz
						for ox := 0; ox < g.ow; ox++ {
							ix := ox*p.StrideX - p.PadLeft + kx
							if iz < 0 || iz >= g.t || ix < 0 || ix >= g.w {
								// The whole height run reads padding.
								for oy := 0; oy < g.oh; oy++ {
									col[i] = 0
									i++
								}
								continue
							}
							base := g.h * (ix + g.w*(iz+g.t*cc))
							for oy := 0; oy < g.oh; oy++ {
								iy := oy*p.StrideY - p.PadTop + ky
								if iy >= 0 && iy < g.h {
									col[i] = src[base+iy]
								} else {
									col[i] = 0
								}
								i++
							}
						}
					}
					q++
				}
			}
		}
	}
}

// row2vol is the exact adjoint of vol2row: it folds a patch matrix back
// into volume coordinates as a scatter-add. Every volume cell accumulates
// the contribution of every patch-matrix cell that referenced it during
// unfolding; overlapping kernels mean several patches can reference the
// same cell. Cells never referenced (stride larger than the kernel) are
// left at zero.
//
// dst is zero-filled first, so the caller need not clear it.
func row2vol[T tensor.DType](dst, src []T, g geometry, p Params) {
	clear(dst)
	numP := g.outputPixels
	q := 0
	for cc := 0; cc < g.c; cc++ {
		for kz := 0; kz < g.kt; kz++ {
			for kx := 0; kx < g.kw; kx++ {
				for ky := 0; ky < g.kh; ky++ {
					col := src[q*numP : (q+1)*numP]
					i := 0
					for oz := 0; oz < g.ot; oz++ {
						iz := oz*p.StrideT - p.PadFront + kz
						for ox := 0; ox < g.ow; ox++ {
							ix := ox*p.StrideX - p.PadLeft + kx
							if iz < 0 || iz >= g.t || ix < 0 || ix >= g.w {
								i += g.oh
								continue
							}
							base := g.h * (ix + g.w*(iz+g.t*cc))
							for oy := 0; oy < g.oh; oy++ {
								iy := oy*p.StrideY - p.PadTop + ky
								if iy >= 0 && iy < g.h {
									dst[base+iy] += col[i]
								}
								i++
							}
						}
					}
					q++
				}
			}
		}
	}
}

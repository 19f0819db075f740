// Package simdops provides the vector operations the mixer applies to whole
// buffers, backed by github.com/tphakala/simd for float32 and float64.
//
// The render loop itself is scalar; these operations cover the block-wide
// passes around it: gain stages, stereo interleaving for output and the
// analyzer's sums.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)

	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	Interleave2 func(dst, a, b []F)

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// DotProduct returns the sum of a[i]*b[i]. Callers pass slices of equal
	// length.
	DotProduct func(a, b []F) F
}

// Pre-instantiated operations for each float type.
var (
	ops32 = Ops[float32]{
		Scale:       f32.Scale,
		Interleave2: f32.Interleave2,
		Sum:         f32.Sum,
		DotProduct:  f32.DotProductUnsafe,
	}
	ops64 = Ops[float64]{
		Scale:       f64.Scale,
		Interleave2: f64.Interleave2,
		Sum:         f64.Sum,
		DotProduct:  f64.DotProduct,
	}
)

// For returns the Ops instance for type F.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Float64Ops returns the float64 operations.
func Float64Ops() *Ops[float64] {
	return &ops64
}

// Float32Ops returns the float32 operations.
func Float32Ops() *Ops[float32] {
	return &ops32
}

package simdops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat64Ops(t *testing.T) {
	ops := For[float64]()
	assert.Same(t, Float64Ops(), ops)

	a := []float64{1, 2, 3, 4}
	b := []float64{-1, -2, -3, -4}

	dst := make([]float64, 4)
	ops.Scale(dst, a, 0.5)
	assert.InDeltaSlice(t, []float64{0.5, 1, 1.5, 2}, dst, 1e-12)

	inter := make([]float64, 8)
	ops.Interleave2(inter, a, b)
	assert.InDeltaSlice(t, []float64{1, -1, 2, -2, 3, -3, 4, -4}, inter, 1e-12)

	assert.InDelta(t, 10.0, ops.Sum(a), 1e-12)
	assert.InDelta(t, 30.0, ops.DotProduct(a, a), 1e-12)
}

func TestFloat32Ops(t *testing.T) {
	ops := For[float32]()
	assert.Same(t, Float32Ops(), ops)

	a := []float32{1, 2}
	b := []float32{3, 4}
	dst := make([]float32, 4)
	ops.Interleave2(dst, a, b)
	assert.Equal(t, []float32{1, 3, 2, 4}, dst)
}

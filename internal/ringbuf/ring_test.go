package ringbuf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingCapacityRoundsUp(t *testing.T) {
	assert.Equal(t, 1, New(0).Capacity())
	assert.Equal(t, 8, New(5).Capacity())
	assert.Equal(t, 1024, New(1024).Capacity())
}

func TestRingLatestBeforeFull(t *testing.T) {
	r := New(8)
	r.Write([]float64{1, 2, 3})

	dst := make([]float64, 8)
	n := r.Latest(dst)
	require.Equal(t, 3, n)
	assert.Equal(t, []float64{1, 2, 3}, dst[:n])
	assert.Equal(t, 3, r.Len())
}

func TestRingOverwritesOldest(t *testing.T) {
	r := New(4)
	r.Write([]float64{1, 2, 3})
	r.Write([]float64{4, 5, 6})

	dst := make([]float64, 4)
	require.Equal(t, 4, r.Latest(dst))
	assert.Equal(t, []float64{3, 4, 5, 6}, dst)

	small := make([]float64, 2)
	require.Equal(t, 2, r.Latest(small))
	assert.Equal(t, []float64{5, 6}, small)
}

func TestRingWriteLargerThanCapacity(t *testing.T) {
	r := New(4)
	r.Write([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})

	dst := make([]float64, 4)
	require.Equal(t, 4, r.Latest(dst))
	assert.Equal(t, []float64{6, 7, 8, 9}, dst)
}

func TestRingClear(t *testing.T) {
	r := New(4)
	r.Write([]float64{1, 2})
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.Latest(make([]float64, 4)))
}

func TestRingConcurrentReaders(t *testing.T) {
	r := New(256)
	block := make([]float64, 64)
	for i := range block {
		block[i] = 1
	}

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dst := make([]float64, 128)
			for range 100 {
				n := r.Latest(dst)
				for _, v := range dst[:n] {
					assert.Equal(t, 1.0, v)
				}
			}
		}()
	}
	for range 100 {
		r.Write(block)
	}
	wg.Wait()
}

// Package ringbuf provides a fixed-capacity sample ring that keeps the most
// recent samples written to it.
package ringbuf

import "sync"

// Ring is a circular buffer that overwrites its oldest samples when full.
// The writer is the audio thread; readers copy out the latest window from
// any goroutine. Capacity is rounded up to a power of two so positions wrap
// with a mask instead of a modulo.
type Ring struct {
	data     []float64
	mask     int
	writePos int
	size     int
	mu       sync.Mutex
}

// New creates a ring holding at least capacity samples.
func New(capacity int) *Ring {
	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}

	return &Ring{
		data: make([]float64, cap2),
		mask: cap2 - 1,
	}
}

// Write appends samples, dropping the oldest ones when the ring is full.
func (r *Ring) Write(samples []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Only the tail can survive a write larger than the ring.
	if len(samples) > len(r.data) {
		samples = samples[len(samples)-len(r.data):]
	}

	n := copy(r.data[r.writePos:], samples)
	copy(r.data, samples[n:])
	r.writePos = (r.writePos + len(samples)) & r.mask
	r.size = min(r.size+len(samples), len(r.data))
}

// Latest copies the most recent len(dst) samples into dst, oldest first,
// and returns how many were copied. When fewer samples have been written,
// only those are copied to the start of dst.
func (r *Ring) Latest(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(len(dst), r.size)
	start := (r.writePos - n) & r.mask
	copied := copy(dst[:n], r.data[start:])
	copy(dst[copied:n], r.data)
	return n
}

// Len returns the number of valid samples, at most Capacity.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Capacity returns the number of samples the ring keeps.
func (r *Ring) Capacity() int {
	return len(r.data)
}

// Clear forgets every stored sample.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.size = 0
	r.writePos = 0
}

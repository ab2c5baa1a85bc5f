package timeseries

import (
	"time"

	"market-eye/src/models"
)

// -----------------------------------------------------------------------------
// Fixed-capacity rolling window of scalar samples
// -----------------------------------------------------------------------------

// Buffer holds at most capacity samples in chronological order. When full,
// the oldest sample is evicted first. Not safe for concurrent use; the engine
// serializes all access.
type Buffer struct {
	samples  []models.MSample
	capacity int
	start    int // index of the oldest sample
	count    int
}

// -----------------------------------------------------------------------------

// NewBuffer creates a Buffer with the given capacity (minimum 1).
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		samples:  make([]models.MSample, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a sample, evicting the oldest when at capacity. O(1).
func (b *Buffer) Append(sample models.MSample) {
	if b.count < b.capacity {
		b.samples[(b.start+b.count)%b.capacity] = sample
		b.count++
		return
	}
	b.samples[b.start] = sample
	b.start = (b.start + 1) % b.capacity
}

// -----------------------------------------------------------------------------

// AppendValue adds a value stamped with the given time.
func (b *Buffer) AppendValue(value float64, at time.Time) {
	b.Append(models.MSample{Value: value, At: at})
}

// -----------------------------------------------------------------------------

// Len returns the number of buffered samples.
func (b *Buffer) Len() int {
	return b.count
}

// -----------------------------------------------------------------------------

// Window returns a copy of the last n samples in chronological order, or fewer
// if the buffer holds fewer. Callers computing statistics must treat a short
// window as insufficient data, never pad it with defaults.
func (b *Buffer) Window(n int) []models.MSample {
	if n > b.count {
		n = b.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]models.MSample, n)
	first := b.count - n
	for i := 0; i < n; i++ {
		out[i] = b.samples[(b.start+first+i)%b.capacity]
	}
	return out
}

// -----------------------------------------------------------------------------

// Values returns a copy of all buffered values in chronological order.
func (b *Buffer) Values() []float64 {
	out := make([]float64, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.samples[(b.start+i)%b.capacity].Value
	}
	return out
}

// -----------------------------------------------------------------------------

// WindowValues returns a copy of the last n values in chronological order.
func (b *Buffer) WindowValues(n int) []float64 {
	window := b.Window(n)
	out := make([]float64, len(window))
	for i, sample := range window {
		out[i] = sample.Value
	}
	return out
}

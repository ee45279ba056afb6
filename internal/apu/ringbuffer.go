package apu

import "sync"

// sampleRingCapacity is the number of signed 16-bit samples the output ring
// can hold before new samples start overwriting the oldest unread ones. At
// a 44.1 kHz host sample rate this is roughly 90ms of buffered audio.
const sampleRingCapacity = 4096

// sampleRing is a fixed-capacity ring buffer of signed 16-bit samples
// shared between the APU's synthesis step (the writer, running on the
// emulation thread) and the host's audio callback (the reader, running on
// a separate thread). read==write is ambiguous between empty and full, so
// a full flag disambiguates; every operation holds mu.
type sampleRing struct {
	mu    sync.Mutex
	data  [sampleRingCapacity]int16
	read  int
	write int
	full  bool
}

// reset empties the ring, discarding any buffered samples.
func (r *sampleRing) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.read = 0
	r.write = 0
	r.full = false
}

// readable returns the number of samples available to read.
func (r *sampleRing) readable() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readableLocked()
}

func (r *sampleRing) readableLocked() int {
	if r.full {
		return sampleRingCapacity
	}
	if r.write >= r.read {
		return r.write - r.read
	}
	return sampleRingCapacity - r.read + r.write
}

// writable returns the number of samples that can be written before the
// ring fills.
func (r *sampleRing) writable() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sampleRingCapacity - r.readableLocked()
}

// writeSamples copies every sample from src into the ring, overwriting the
// oldest unread samples once full so the synthesizer never blocks, and
// returns len(src).
func (r *sampleRing) writeSamples(src []int16) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range src {
		r.data[r.write] = s
		r.write = (r.write + 1) % sampleRingCapacity
		if r.full {
			r.read = (r.read + 1) % sampleRingCapacity
		}
		r.full = r.write == r.read
		n++
	}
	return n
}

// readSamples drains up to len(dst) samples into dst, returning the count copied.
func (r *sampleRing) readSamples(dst []int16) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	available := r.readableLocked()
	n := len(dst)
	if n > available {
		n = available
	}
	for i := 0; i < n; i++ {
		dst[i] = r.data[r.read]
		r.read = (r.read + 1) % sampleRingCapacity
	}
	if n > 0 {
		r.full = false
	}
	return n
}

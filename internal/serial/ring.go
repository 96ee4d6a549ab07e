// internal/serial/ring.go
package serial

// ring is a fixed-capacity byte FIFO. Not safe for concurrent use; callers
// hold the critical section.
type ring struct {
	buf  []byte
	head int // next read
	n    int
}

func newRing(size int) *ring {
	return &ring{buf: make([]byte, size)}
}

func (r *ring) len() int { return r.n }

func (r *ring) empty() bool { return r.n == 0 }

func (r *ring) full() bool { return r.n == len(r.buf) }

func (r *ring) put(b byte) bool {
	if r.full() {
		return false
	}
	r.buf[(r.head+r.n)%len(r.buf)] = b
	r.n++
	return true
}

func (r *ring) get() (byte, bool) {
	if r.empty() {
		return 0, false
	}
	b := r.buf[r.head]
	r.head = (r.head + 1) % len(r.buf)
	r.n--
	return b, true
}

// read moves up to len(p) bytes out of the ring.
func (r *ring) read(p []byte) int {
	i := 0
	for i < len(p) {
		b, ok := r.get()
		if !ok {
			break
		}
		p[i] = b
		i++
	}
	return i
}

func (r *ring) reset() {
	r.head = 0
	r.n = 0
}

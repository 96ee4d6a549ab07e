// internal/serial/console.go
package serial

// Putter is a low-level character output (lpuart.Channel.Putc).
type Putter interface {
	Putc(ch byte) byte
}

// LowWriter is an io.Writer over a Putter. It bypasses the rings and works
// before any device is opened, so it can carry early boot logging.
type LowWriter struct {
	P Putter
}

func (w LowWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		w.P.Putc(b)
	}
	return len(p), nil
}

// internal/bridge/port.go
package bridge

import (
	"fmt"
	"io"
	"sync"
	"time"

	goburrow "github.com/goburrow/serial"
	"github.com/mattn/go-tty"
	tarm "github.com/tarm/serial"
)

// Port backend kinds.
const (
	KindTTY      = "tty"
	KindSerial   = "serial"
	KindTarm     = "tarm"
	KindLoopback = "loopback"
	KindNone     = "none"
)

// readTimeout bounds blocking reads on host serial ports so Run can notice
// cancellation.
const readTimeout = 100 * time.Millisecond

// PortConfig selects and parameterises a host-side port.
type PortConfig struct {
	Kind     string
	Device   string // path for serial/tarm/tty; empty tty means the controlling terminal
	Baud     int
	Bits     int
	Parity   uint8 // 0 none, 1 odd, 2 even
	StopBits int
}

// Open opens the port described by cfg.
func Open(cfg PortConfig) (io.ReadWriteCloser, error) {
	switch cfg.Kind {
	case KindSerial:
		return openGoburrow(cfg)
	case KindTarm:
		return openTarm(cfg)
	case KindTTY:
		return openTTY(cfg)
	case KindLoopback:
		return NewLoopback(), nil
	case KindNone, "":
		return newNullPort(), nil
	default:
		return nil, fmt.Errorf("bridge: unknown port kind %q", cfg.Kind)
	}
}

func bits(cfg PortConfig) int {
	if cfg.Bits == 0 {
		return 8
	}
	return cfg.Bits
}

func stopBits(cfg PortConfig) int {
	if cfg.StopBits == 0 {
		return 1
	}
	return cfg.StopBits
}

// ---- goburrow/serial ----

func openGoburrow(cfg PortConfig) (io.ReadWriteCloser, error) {
	parity := "N"
	switch cfg.Parity {
	case 1:
		parity = "O"
	case 2:
		parity = "E"
	}

	p, err := goburrow.Open(&goburrow.Config{
		Address:  cfg.Device,
		BaudRate: cfg.Baud,
		DataBits: bits(cfg),
		StopBits: stopBits(cfg),
		Parity:   parity,
		Timeout:  readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("bridge: open serial %s: %w", cfg.Device, err)
	}
	return p, nil
}

// ---- tarm/serial ----

func openTarm(cfg PortConfig) (io.ReadWriteCloser, error) {
	parity := tarm.ParityNone
	switch cfg.Parity {
	case 1:
		parity = tarm.ParityOdd
	case 2:
		parity = tarm.ParityEven
	}

	stop := tarm.Stop1
	if stopBits(cfg) == 2 {
		stop = tarm.Stop2
	}

	p, err := tarm.OpenPort(&tarm.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: readTimeout,
		Size:        byte(bits(cfg)),
		Parity:      parity,
		StopBits:    stop,
	})
	if err != nil {
		return nil, fmt.Errorf("bridge: open tarm %s: %w", cfg.Device, err)
	}
	return p, nil
}

// ---- mattn/go-tty ----

// ttyPort is a terminal in raw mode. Line settings belong to the terminal.
type ttyPort struct {
	t       *tty.TTY
	restore func() error
}

func openTTY(cfg PortConfig) (io.ReadWriteCloser, error) {
	var (
		t   *tty.TTY
		err error
	)
	if cfg.Device == "" {
		t, err = tty.Open()
	} else {
		t, err = tty.OpenDevice(cfg.Device)
	}
	if err != nil {
		return nil, fmt.Errorf("bridge: open tty %q: %w", cfg.Device, err)
	}

	return &ttyPort{t: t, restore: t.MustRaw()}, nil
}

func (p *ttyPort) Read(b []byte) (int, error)  { return p.t.Input().Read(b) }
func (p *ttyPort) Write(b []byte) (int, error) { return p.t.Output().Write(b) }

func (p *ttyPort) Close() error {
	if p.restore != nil {
		_ = p.restore()
	}
	return p.t.Close()
}

// ---- in-process ports ----

// Loopback returns everything written to it on Read.
type Loopback struct {
	r *io.PipeReader
	w *io.PipeWriter
}

// NewLoopback creates a connected loopback port.
func NewLoopback() *Loopback {
	r, w := io.Pipe()
	return &Loopback{r: r, w: w}
}

func (l *Loopback) Read(p []byte) (int, error)  { return l.r.Read(p) }
func (l *Loopback) Write(p []byte) (int, error) { return l.w.Write(p) }

func (l *Loopback) Close() error {
	_ = l.w.Close()
	return l.r.Close()
}

// nullPort discards writes; reads block until Close.
type nullPort struct {
	once   sync.Once
	closed chan struct{}
}

func newNullPort() *nullPort {
	return &nullPort{closed: make(chan struct{})}
}

func (n *nullPort) Read(p []byte) (int, error) {
	<-n.closed
	return 0, io.EOF
}

func (n *nullPort) Write(p []byte) (int, error) {
	select {
	case <-n.closed:
		return 0, io.ErrClosedPipe
	default:
		return len(p), nil
	}
}

func (n *nullPort) Close() error {
	n.once.Do(func() { close(n.closed) })
	return nil
}

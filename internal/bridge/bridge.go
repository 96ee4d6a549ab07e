// internal/bridge/bridge.go
package bridge

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	goburrow "github.com/goburrow/serial"
)

// Wire is the line side of a simulated LPUART.
type Wire interface {
	Feed(ctx context.Context, p []byte) error
	TakeTx() []byte
	TxReady() <-chan struct{}
}

// Bridge connects a simulated LPUART's line to a host port.
type Bridge struct {
	Name string
	Port io.ReadWriteCloser
	Wire Wire
}

// Run pumps bytes both ways until ctx is done or the port fails. The port is
// closed on return.
func (b *Bridge) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		runErr  error
	)
	fail := func(err error) {
		errOnce.Do(func() { runErr = err })
		cancel()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := b.receive(ctx); err != nil {
			fail(err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := b.transmit(ctx); err != nil {
			fail(err)
		}
	}()

	<-ctx.Done()
	_ = b.Port.Close() // unblocks receive
	wg.Wait()

	return runErr
}

// receive copies port input onto the simulated receive line.
func (b *Bridge) receive(ctx context.Context) error {
	buf := make([]byte, 256)
	for {
		n, err := b.Port.Read(buf)
		if n > 0 {
			if ferr := b.Wire.Feed(ctx, buf[:n]); ferr != nil {
				return nil // cancelled
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, goburrow.ErrTimeout) {
				continue
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			log.Printf("bridge read failed (port=%s): %v", b.Name, err)
			return err
		}
	}
}

// transmit copies simulated transmit output to the port.
func (b *Bridge) transmit(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.Wire.TxReady():
		}

		out := b.Wire.TakeTx()
		if len(out) == 0 {
			continue
		}
		if _, err := b.Port.Write(out); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("bridge write failed (port=%s): %v", b.Name, err)
			return err
		}
	}
}

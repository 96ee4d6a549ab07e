// internal/poller/poller.go
package poller

import (
	"errors"
	"log"
	"time"

	"github.com/tamzrod/lpuart-engine/internal/serial"
)

// Source is the device counters the poller samples.
type Source interface {
	Name() string
	Stats() serial.Stats
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Channel  string
	Interval time.Duration
}

// Poller is a dumb, clock-driven sampler.
type Poller struct {
	cfg Config
	src Source

	lastLimitHits uint64
	lastDropped   uint64
}

// New creates a poller with immutable config.
func New(cfg Config, src Source) (*Poller, error) {
	if cfg.Channel == "" {
		return nil, errors.New("poller: channel id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if src == nil {
		return nil, errors.New("poller: source required")
	}
	return &Poller{cfg: cfg, src: src}, nil
}

// PollOnce performs exactly one poll cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		Channel: p.cfg.Channel,
		At:      time.Now(),
		Stats:   p.src.Stats(),
	}

	// Pass-limit hits mean the interrupt entry gave up on a device that
	// kept reporting work. Report each new batch once.
	if n := res.Stats.LimitHits; n > p.lastLimitHits {
		log.Printf("interrupt pass limit hit (channel=%s dev=%s): %d new, %d total",
			p.cfg.Channel, p.src.Name(), n-p.lastLimitHits, n)
		p.lastLimitHits = n
	}
	if n := res.Stats.Dropped; n > p.lastDropped {
		log.Printf("receive buffer overflow (channel=%s dev=%s): %d bytes dropped",
			p.cfg.Channel, p.src.Name(), n-p.lastDropped)
		p.lastDropped = n
	}

	return res
}

// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/lpuart-engine/internal/serial"
)

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	Channel string
	At      time.Time

	Stats serial.Stats
}

// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/lpuart-engine/internal/config"
)

// Build constructs a Poller for one configured channel.
// Assumes config has already been validated and normalized.
func Build(ch cfg.ChannelConfig, src Source) (*Poller, error) {
	return New(
		Config{
			Channel:  ch.ID,
			Interval: time.Duration(ch.Poll.IntervalMs) * time.Millisecond,
		},
		src,
	)
}

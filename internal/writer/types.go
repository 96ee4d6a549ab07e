// internal/writer/types.go
package writer

import "github.com/tamzrod/lpuart-engine/internal/poller"

// StatusPlan locates one channel's status block in status memory.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16 // block index; address = BaseSlot * SlotsPerDevice
	DeviceName string
}

// Plan is the fully-built write plan for one channel.
type Plan struct {
	Channel string
	Status  *StatusPlan // nil means status publication is disabled
}

// Writer turns poll results into status updates.
type Writer interface {
	Start() error
	Write(res poller.PollResult) error
	Tick() error
}

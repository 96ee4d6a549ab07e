// internal/writer/writer.go
package writer

import (
	"github.com/tamzrod/lpuart-engine/internal/poller"
	"github.com/tamzrod/lpuart-engine/internal/serial"
	"github.com/tamzrod/lpuart-engine/internal/status"
)

// writerImpl owns the health state of one channel and pushes every
// change through its StatusWriter.
type writerImpl struct {
	plan    Plan
	tracker *status.Tracker
	sw      StatusWriter
}

// New creates a Writer. A nil sw tracks health without delivering it.
func New(plan Plan, sw StatusWriter) Writer {
	return &writerImpl{
		plan:    plan,
		tracker: status.NewTracker(),
		sw:      sw,
	}
}

// Start delivers the boot snapshot (HealthUnknown) as a full block.
func (w *writerImpl) Start() error {
	return w.deliver(w.tracker.Snapshot(), true)
}

// Write folds one poll result into the channel state.
func (w *writerImpl) Write(res poller.PollResult) error {
	snap, changed := w.tracker.Observe(sampleOf(res.Stats))
	return w.deliver(snap, changed)
}

// Tick is called at 1 Hz and advances seconds_in_error.
func (w *writerImpl) Tick() error {
	snap, changed := w.tracker.Tick()
	return w.deliver(snap, changed)
}

func (w *writerImpl) deliver(s status.Snapshot, changed bool) error {
	if w.sw == nil || !changed {
		return nil
	}
	return w.sw.WriteStatus(s)
}

func sampleOf(st serial.Stats) status.Sample {
	return status.Sample{
		Open:      st.Open,
		RxBytes:   st.RxBytes,
		TxBytes:   st.TxBytes,
		RxErrors:  st.FrameErrors + st.ParityErrors + st.NoiseErrors,
		Overruns:  st.Dropped,
		LimitHits: st.LimitHits,
	}
}

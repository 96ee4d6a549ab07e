// internal/status/tracker.go
package status

// Sample is one observation of a channel's cumulative counters.
type Sample struct {
	Open      bool
	RxBytes   uint64
	TxBytes   uint64
	RxErrors  uint64
	Overruns  uint64
	LimitHits uint64
}

// Tracker turns successive samples into status snapshots.
// Error conditions are edge-detected: a counter that grew since the
// previous sample puts the channel in error until a clean sample arrives.
// Not safe for concurrent use.
type Tracker struct {
	snap Snapshot
	prev Sample
}

// NewTracker starts in HealthUnknown.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current snapshot.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}

// Observe folds in one sample and reports whether the snapshot changed.
func (t *Tracker) Observe(s Sample) (Snapshot, bool) {
	before := t.snap
	next := t.snap

	next.RxBytes = uint32(s.RxBytes)
	next.TxBytes = uint32(s.TxBytes)
	next.RxErrors = saturate(s.RxErrors)
	next.Overruns = saturate(s.Overruns)
	next.PassLimitHit = saturate(s.LimitHits)
	next.State = StateClosed
	if s.Open {
		next.State = StateOpen
	}

	switch code := t.classify(s); {
	case !s.Open:
		next.Health = HealthDisabled
		next.LastErrorCode = ErrorNone
		next.SecondsInError = 0

	case code != ErrorNone:
		next.Health = HealthError
		next.LastErrorCode = code
		// seconds_in_error increments on Tick only

	default:
		// Recovery / OK
		next.Health = HealthOK
		next.LastErrorCode = ErrorNone
		next.SecondsInError = 0
	}

	t.prev = s
	t.snap = next
	return next, next != before
}

// Tick advances seconds_in_error by one while the channel is in error.
// The counter never wraps.
func (t *Tracker) Tick() (Snapshot, bool) {
	if t.snap.Health != HealthError || t.snap.SecondsInError == 0xFFFF {
		return t.snap, false
	}
	t.snap.SecondsInError++
	return t.snap, true
}

func (t *Tracker) classify(s Sample) uint16 {
	switch {
	case s.LimitHits > t.prev.LimitHits:
		return ErrorPassLimit
	case s.Overruns > t.prev.Overruns:
		return ErrorOverrun
	case s.RxErrors > t.prev.RxErrors:
		return ErrorLine
	default:
		return ErrorNone
	}
}

func saturate(v uint64) uint16 {
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}

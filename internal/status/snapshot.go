// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16

	RxBytes      uint32
	TxBytes      uint32
	RxErrors     uint16
	Overruns     uint16
	PassLimitHit uint16
	State        uint16
}

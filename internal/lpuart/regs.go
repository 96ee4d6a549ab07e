// internal/lpuart/regs.go
package lpuart

// Registers is the memory-mapped register window of one LPUART instance.
// Offsets are relative to the channel base. Implementations must make each
// Read and Write a single indivisible access.
type Registers interface {
	Read(offset uint32) uint32
	Write(offset uint32, value uint32)
}

// ---- REGISTER OFFSETS ----

const (
	OffsetGlobal uint32 = 0x08
	OffsetBaud   uint32 = 0x10
	OffsetStat   uint32 = 0x14
	OffsetCtrl   uint32 = 0x18
	OffsetData   uint32 = 0x1C
)

// ---- GLOBAL ----

const GlobalRST uint32 = 1 << 1

// ---- BAUD ----

const (
	BaudSBRMask  uint32 = 0x1FFF
	BaudSBNS     uint32 = 1 << 13
	BaudBOTHEDGE uint32 = 1 << 17
	BaudOSRShift        = 24
	BaudOSRMask  uint32 = 0x1F << BaudOSRShift
	BaudM10      uint32 = 1 << 29

	// BaudReset is the BAUD value after a global reset (OSR=16, SBR=4).
	BaudReset uint32 = 0x0F000004
)

// ---- STAT ----

const (
	StatPF   uint32 = 1 << 16
	StatFE   uint32 = 1 << 17
	StatNF   uint32 = 1 << 18
	StatOR   uint32 = 1 << 19
	StatIDLE uint32 = 1 << 20
	StatRDRF uint32 = 1 << 21
	StatTC   uint32 = 1 << 22
	StatTDRE uint32 = 1 << 23

	// StatReset is the STAT value after a global reset: transmitter idle.
	StatReset = StatTC | StatTDRE
)

// ---- CTRL ----

const (
	CtrlPT   uint32 = 1 << 0
	CtrlPE   uint32 = 1 << 1
	CtrlM    uint32 = 1 << 4
	CtrlM7   uint32 = 1 << 11
	CtrlRE   uint32 = 1 << 18
	CtrlTE   uint32 = 1 << 19
	CtrlILIE uint32 = 1 << 20
	CtrlRIE  uint32 = 1 << 21
	CtrlTCIE uint32 = 1 << 22
	CtrlTIE  uint32 = 1 << 23
	CtrlPEIE uint32 = 1 << 24
	CtrlFEIE uint32 = 1 << 25
	CtrlNEIE uint32 = 1 << 26
	CtrlORIE uint32 = 1 << 27

	// AllInts covers every CTRL interrupt-enable bit the engine owns.
	AllInts = CtrlORIE | CtrlNEIE | CtrlFEIE | CtrlPEIE |
		CtrlTIE | CtrlTCIE | CtrlRIE | CtrlILIE
)

// ---- DATA ----

const (
	DataMask        uint32 = 0x3FF
	DataStatusShift        = 11

	// Receive status bits, as seen after shifting by DataStatusShift.
	RxStatusIDLINE  uint32 = 1 << 0
	RxStatusRXEMPT  uint32 = 1 << 1
	RxStatusFRETSC  uint32 = 1 << 2
	RxStatusPARITYE uint32 = 1 << 3
	RxStatusNOISY   uint32 = 1 << 4
)

// ---- INSTANCES ----

// Base address and interrupt line of LPUART1 on i.MX RT 105x.
// Instances are spaced 0x4000 apart with consecutive interrupt lines.
const (
	lpuart1Base  uint32 = 0x40184000
	lpuartStride uint32 = 0x4000
	lpuart1IRQ          = 36

	// NumInstances is the number of LPUART blocks on the chip.
	NumInstances = 8
)

// InstanceInfo is the fixed hardware identity of one LPUART block.
type InstanceInfo struct {
	Number int
	Base   uint32
	IRQ    int
}

// Instance returns the identity of LPUARTn (1-based).
func Instance(n int) (InstanceInfo, bool) {
	if n < 1 || n > NumInstances {
		return InstanceInfo{}, false
	}
	return InstanceInfo{
		Number: n,
		Base:   lpuart1Base + uint32(n-1)*lpuartStride,
		IRQ:    lpuart1IRQ + n - 1,
	}, true
}

// internal/writer/writer_test.go
package writer

import (
	"errors"
	"testing"

	cfg "github.com/tamzrod/lpuart-engine/internal/config"
	"github.com/tamzrod/lpuart-engine/internal/poller"
	"github.com/tamzrod/lpuart-engine/internal/serial"
	"github.com/tamzrod/lpuart-engine/internal/status"
)

// ---- fake endpoint client ----

type fakeEndpointClient struct {
	writes []writeCall
	fail   error

	lastRegs     []uint16
	lastRegsAddr uint16
}

type writeCall struct {
	area   byte
	unitID uint8
	addr   uint16
	regs   []uint16
}

func (f *fakeEndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	cp := append([]uint16(nil), regs...)
	f.writes = append(f.writes, writeCall{area: area, unitID: unitID, addr: addr, regs: cp})
	f.lastRegs = cp
	f.lastRegsAddr = addr
	return nil
}

func testPlan() Plan {
	return Plan{
		Channel: "c1",
		Status: &StatusPlan{
			Endpoint:   "status-endpoint",
			UnitID:     1,
			BaseSlot:   2,
			DeviceName: "LPUART2",
		},
	}
}

// ---- tests ----

func TestBuildPlan(t *testing.T) {
	u := cfg.UartdConfig{StatusMemory: cfg.StatusMemoryConfig{Endpoint: "ep:502"}}

	plan, err := BuildPlan(u, cfg.ChannelConfig{
		ID:     "gps",
		Status: &cfg.StatusConfig{UnitID: 4, Slot: 3, DeviceName: "GPS"},
	})
	if err != nil {
		t.Fatalf("BuildPlan() err=%v", err)
	}
	if plan.Status == nil || plan.Status.Endpoint != "ep:502" || plan.Status.UnitID != 4 || plan.Status.BaseSlot != 3 {
		t.Fatalf("unexpected plan %+v", plan.Status)
	}

	plan, err = BuildPlan(u, cfg.ChannelConfig{ID: "quiet"})
	if err != nil || plan.Status != nil {
		t.Fatalf("status should be disabled: %+v err=%v", plan, err)
	}

	if _, err := BuildPlan(u, cfg.ChannelConfig{}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestBuildEndpointClients_NoStatusNoClients(t *testing.T) {
	clients, closeAll, err := BuildEndpointClients(cfg.UartdConfig{
		Channels: []cfg.ChannelConfig{{ID: "a"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("expected no clients, got %d", len(clients))
	}
	if err := closeAll(); err != nil {
		t.Fatalf("closeAll() err=%v", err)
	}
}

func TestWriter_StartWritesFullBlock(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()

	sw, _ := NewDeviceStatusWriter(plan, map[string]EndpointClient{"status-endpoint": cli})
	w := New(plan, sw)

	if err := w.Start(); err != nil {
		t.Fatalf("Start() err=%v", err)
	}
	if len(cli.writes) != 1 || len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected one full block write, got %+v", cli.writes)
	}
	if cli.lastRegsAddr != 2*status.SlotsPerDevice {
		t.Fatalf("addr=%d want %d", cli.lastRegsAddr, 2*status.SlotsPerDevice)
	}
	if cli.lastRegs[status.SlotHealthCode] != status.HealthUnknown {
		t.Fatalf("boot health=%d", cli.lastRegs[status.SlotHealthCode])
	}
}

func TestWriter_OnlyChangesAreWritten(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()

	sw, _ := NewDeviceStatusWriter(plan, map[string]EndpointClient{"status-endpoint": cli})
	w := New(plan, sw)
	_ = w.Start()

	res := poller.PollResult{Channel: "c1", Stats: serial.Stats{Open: true, RxBytes: 1}}
	if err := w.Write(res); err != nil {
		t.Fatalf("Write() err=%v", err)
	}
	n := len(cli.writes)

	if err := w.Write(res); err != nil {
		t.Fatalf("Write() err=%v", err)
	}
	if len(cli.writes) != n {
		t.Fatalf("unchanged poll produced %d writes", len(cli.writes)-n)
	}

	// healthy channel: tick is a no-op
	if err := w.Tick(); err != nil || len(cli.writes) != n {
		t.Fatalf("tick wrote while healthy")
	}
}

func TestWriter_TickCountsSecondsInError(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()

	sw, _ := NewDeviceStatusWriter(plan, map[string]EndpointClient{"status-endpoint": cli})
	w := New(plan, sw)
	_ = w.Start()

	_ = w.Write(poller.PollResult{Stats: serial.Stats{Open: true, FrameErrors: 1}})
	_ = w.Tick()

	want := 2*status.SlotsPerDevice + status.SlotSecondsInError
	if int(cli.lastRegsAddr) != want || len(cli.lastRegs) != 1 || cli.lastRegs[0] != 1 {
		t.Fatalf("tick write addr=%d regs=%v", cli.lastRegsAddr, cli.lastRegs)
	}
}

func TestWriter_NilStatusWriter(t *testing.T) {
	w := New(Plan{Channel: "c1"}, nil)

	if err := w.Start(); err != nil {
		t.Fatalf("Start() err=%v", err)
	}
	if err := w.Write(poller.PollResult{Stats: serial.Stats{Open: true}}); err != nil {
		t.Fatalf("Write() err=%v", err)
	}
}

func TestWriter_DeliveryErrorReturned(t *testing.T) {
	cli := &fakeEndpointClient{fail: errors.New("down")}
	plan := testPlan()

	sw, _ := NewDeviceStatusWriter(plan, map[string]EndpointClient{"status-endpoint": cli})
	w := New(plan, sw)

	if err := w.Start(); err == nil {
		t.Fatalf("expected delivery error")
	}
}

// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	cfg "github.com/tamzrod/lpuart-engine/internal/config"
	"github.com/tamzrod/lpuart-engine/internal/writer/ingest"
	wmodbus "github.com/tamzrod/lpuart-engine/internal/writer/modbus"
)

// BuildPlan converts one channel config into a Writer Plan.
// Assumes config has already passed validation and normalization.
func BuildPlan(u cfg.UartdConfig, ch cfg.ChannelConfig) (Plan, error) {
	if ch.ID == "" {
		return Plan{}, errors.New("writer: channel.id required")
	}

	plan := Plan{Channel: ch.ID}

	if ch.Status != nil {
		plan.Status = &StatusPlan{
			Endpoint:   u.StatusMemory.Endpoint,
			UnitID:     ch.Status.UnitID,
			BaseSlot:   ch.Status.Slot,
			DeviceName: ch.Status.DeviceName,
		}
	}

	return plan, nil
}

// BuildEndpointClients creates one client per unique status endpoint.
// Channels without a status block need no client.
func BuildEndpointClients(u cfg.UartdConfig) (map[string]EndpointClient, func() error, error) {
	unique := map[string]struct{}{}
	for _, ch := range u.Channels {
		if ch.Status != nil {
			unique[u.StatusMemory.Endpoint] = struct{}{}
		}
	}

	timeout := time.Duration(u.StatusMemory.TimeoutMs) * time.Millisecond

	clients := make(map[string]EndpointClient)
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for endpoint := range unique {
		c, closer, err := newEndpointClient(u.StatusMemory.Transport, endpoint, timeout)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, closer)
	}

	return clients, closeAll, nil
}

func newEndpointClient(transport, endpoint string, timeout time.Duration) (EndpointClient, func() error, error) {
	switch transport {
	case "ingest":
		c, err := ingest.NewEndpointClient(ingest.Config{Endpoint: endpoint, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case "", "modbus":
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{Endpoint: endpoint, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	default:
		return nil, nil, fmt.Errorf("writer: unknown transport %q", transport)
	}
}

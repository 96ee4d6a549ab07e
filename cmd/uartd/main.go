// cmd/uartd/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/lpuart-engine/internal/config"
	"github.com/tamzrod/lpuart-engine/internal/irq"
	"github.com/tamzrod/lpuart-engine/internal/poller"
	"github.com/tamzrod/lpuart-engine/internal/serial"
	"github.com/tamzrod/lpuart-engine/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: uartd <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	config.Normalize(cfg)

	u := cfg.Uartd

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Kernel services
	// --------------------

	ic := irq.New()
	table := serial.NewTable()

	instances := make([]int, 0, len(u.Channels))
	for _, ch := range u.Channels {
		instances = append(instances, ch.Instance)
	}

	assignments, err := serial.AssignNames(instances, u.Console)
	if err != nil {
		log.Fatalf("tty assignment failed: %v", err)
	}

	paths := make(map[int][]string)
	for _, a := range assignments {
		paths[a.Instance] = append(paths[a.Instance], a.Path)
	}

	// ---- status clients (shared by all channels) ----
	clients, closeWriters, err := writer.BuildEndpointClients(u)
	if err != nil {
		log.Fatalf("writer clients failed: %v", err)
	}
	defer closeWriters()

	// --------------------
	// Build per-channel pipelines
	// --------------------

	for _, ch := range u.Channels {
		rt, err := buildChannel(ctx, ic, ch, paths[ch.Instance], ch.Instance == u.Console)
		if err != nil {
			log.Fatalf("channel build failed (channel=%s): %v", ch.ID, err)
		}

		for _, p := range paths[ch.Instance] {
			if err := table.Register(p, rt.dev); err != nil {
				log.Fatalf("device register failed (channel=%s): %v", ch.ID, err)
			}
		}

		if err := rt.dev.Open(); err != nil {
			log.Fatalf("device open failed (channel=%s): %v", ch.ID, err)
		}
		defer rt.close()

		rt.logState()

		if ch.Echo {
			go echo(ctx, ch.ID, rt.dev)
		}

		// ---- poller ----
		p, err := poller.Build(ch, rt.dev)
		if err != nil {
			log.Fatalf("poller build failed (channel=%s): %v", ch.ID, err)
		}

		// ---- writer plan ----
		plan, err := writer.BuildPlan(u, ch)
		if err != nil {
			log.Fatalf("writer plan failed (channel=%s): %v", ch.ID, err)
		}

		// Status writer (optional per channel)
		sw, _ := writer.NewDeviceStatusWriter(plan, clients)
		w := writer.New(plan, sw)

		// ---- channel between poller and writer ----
		out := make(chan poller.PollResult)

		go orchestrate(ctx, ch.ID, w, out)

		// poller producer
		go p.Run(ctx, out)
	}

	log.Printf("uartd running: %v", table.Paths())

	<-ctx.Done()
	log.Printf("uartd shutting down")
}

// orchestrate owns one channel's writer: poll results in, 1 Hz seconds ticker.
func orchestrate(ctx context.Context, channelID string, w writer.Writer, out <-chan poller.PollResult) {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// Full block write on start (identity re-assert).
	if err := w.Start(); err != nil {
		log.Printf("status write failed on start (channel=%s): %v", channelID, err)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-out:
			if err := w.Write(res); err != nil {
				log.Printf("status write failed (channel=%s): %v", channelID, err)
			}

		case <-secTicker.C:
			if err := w.Tick(); err != nil {
				log.Printf("status seconds tick write failed (channel=%s): %v", channelID, err)
			}
		}
	}
}

// echo writes every received byte back to the line.
func echo(ctx context.Context, channelID string, dev *serial.Device) {
	buf := make([]byte, 64)
	for {
		n, err := dev.Read(ctx, buf)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("echo read failed (channel=%s): %v", channelID, err)
			}
			return
		}
		if _, err := dev.Write(ctx, buf[:n]); err != nil {
			if ctx.Err() == nil {
				log.Printf("echo write failed (channel=%s): %v", channelID, err)
			}
			return
		}
	}
}

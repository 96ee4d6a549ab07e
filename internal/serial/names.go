// internal/serial/names.go
package serial

import (
	"fmt"
	"sort"
	"sync"
)

// MaxTTYs is the number of /dev/ttySn names available.
const MaxTTYs = 8

// ConsolePath is the device path of the system console.
const ConsolePath = "/dev/console"

// Assignment binds a device path to a hardware instance number.
type Assignment struct {
	Path     string
	Instance int
}

// AssignNames maps hardware instances to device paths.
//
// The console (if non-zero) is /dev/console and ttyS0. The remaining
// instances take ttyS1.. in ascending order. With no console the lowest
// instance is ttyS0.
func AssignNames(instances []int, console int) ([]Assignment, error) {
	if len(instances) > MaxTTYs {
		return nil, fmt.Errorf("serial: %d instances exceed %d tty names", len(instances), MaxTTYs)
	}

	sorted := append([]int(nil), instances...)
	sort.Ints(sorted)

	seen := make(map[int]bool, len(sorted))
	for _, n := range sorted {
		if seen[n] {
			return nil, fmt.Errorf("serial: instance %d listed twice", n)
		}
		seen[n] = true
	}

	var out []Assignment
	tty := 0

	if console != 0 {
		if !seen[console] {
			return nil, fmt.Errorf("serial: console instance %d not configured", console)
		}
		out = append(out,
			Assignment{Path: ConsolePath, Instance: console},
			Assignment{Path: ttyPath(tty), Instance: console},
		)
		tty++
	}

	for _, n := range sorted {
		if n == console {
			continue
		}
		out = append(out, Assignment{Path: ttyPath(tty), Instance: n})
		tty++
	}

	return out, nil
}

func ttyPath(n int) string {
	return fmt.Sprintf("/dev/ttyS%d", n)
}

// Table is the registry of device paths. It is filled once at startup.
type Table struct {
	mu   sync.RWMutex
	devs map[string]*Device
}

// NewTable creates an empty registry.
func NewTable() *Table {
	return &Table{devs: make(map[string]*Device)}
}

// Register binds path to dev.
func (t *Table) Register(path string, dev *Device) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.devs[path]; ok {
		return fmt.Errorf("serial: %s already registered", path)
	}
	t.devs[path] = dev
	return nil
}

// Lookup returns the device registered at path.
func (t *Table) Lookup(path string) (*Device, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.devs[path]
	return d, ok
}

// Paths returns every registered path in sorted order.
func (t *Table) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.devs))
	for p := range t.devs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

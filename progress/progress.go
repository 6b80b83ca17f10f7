package progress

import (
	"sync"

	"github.com/pterm/pterm"
)

// Bar manages a progress bar for tracking message processing. It is created
// lazily via Start once the source knows how many messages the scan covers.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	mu      sync.Mutex
	enabled bool
}

// New creates a progress bar holder. The bar only renders at the info log
// level; at other levels every method is a no-op.
func New(logLevel string) *Bar {
	return &Bar{enabled: logLevel == "info"}
}

// Start begins rendering with the given total. A zero or negative total
// keeps the bar disabled (total unknown or folder empty).
func (b *Bar) Start(total int) {
	if !b.enabled || total <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pb, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Scanning messages").
		Start()
	b.pb = pb
	b.total = total
}

// Increment advances the bar by one message.
func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb == nil {
		return
	}
	b.pb.Increment()
}

// Error prints an error above the bar without disturbing it.
func (b *Bar) Error(err error) {
	if !b.enabled || err == nil {
		return
	}
	pterm.Error.Printf("Error: %v\n", err)
}

// Stop finalizes the bar.
func (b *Bar) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb == nil {
		return
	}

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}
	b.pb.Stop()
	b.pb = nil
}

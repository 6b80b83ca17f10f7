package stats

import "sync"

type EventType string

const (
	EventTypeScanned  EventType = "scanned"
	EventTypeMatched  EventType = "matched"
	EventTypeEmpty    EventType = "empty"
	EventTypeFiltered EventType = "filtered"
	EventTypeError    EventType = "error"
)

type Event struct {
	Type      EventType
	Addresses int
	Err       error
}

type Summary struct {
	Scanned   int
	Matched   int
	Empty     int
	Filtered  int
	Addresses int
	Errors    int
	LastError error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"matched", s.Matched,
		"empty", s.Empty,
		"filtered", s.Filtered,
		"addresses", s.Addresses,
		"errors", s.Errors,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Collector accumulates scan events into a Summary. Events are applied
// synchronously from the scan loop; the mutex only guards against a caller
// snapshotting while the scan is still running.
type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Apply(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt.Type {
	case EventTypeScanned:
		c.summary.Scanned++
	case EventTypeMatched:
		c.summary.Matched++
		c.summary.Addresses += evt.Addresses
	case EventTypeEmpty:
		c.summary.Empty++
	case EventTypeFiltered:
		c.summary.Filtered++
	case EventTypeError:
		c.summary.Errors++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}

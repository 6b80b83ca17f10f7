package aggregate

import "sort"

// Entry is one row of the frequency report.
type Entry struct {
	Address string
	Count   int
}

// Aggregator accumulates occurrence counts per email address across a scan.
// Each Observe call increments every distinct address it is given by exactly
// one, so counting granularity is decided by the caller: the scan driver
// passes the union of a message's extracted addresses once per message.
//
// The aggregator is not safe for concurrent use; the scan is sequential.
type Aggregator struct {
	counts   map[string]int
	baseline map[string]struct{}
}

func New() *Aggregator {
	return &Aggregator{
		counts:   make(map[string]int),
		baseline: make(map[string]struct{}),
	}
}

// Seed preloads counts from a previous run. Seeded addresses are remembered
// as the baseline so Report can distinguish addresses first seen in this run.
func (a *Aggregator) Seed(counts map[string]int) {
	for addr, count := range counts {
		if count <= 0 {
			continue
		}
		a.counts[addr] += count
		a.baseline[addr] = struct{}{}
	}
}

// Observe increments the count of each given address by one. Duplicates in
// the slice are counted once.
func (a *Aggregator) Observe(addresses []string) {
	if len(addresses) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		a.counts[addr]++
	}
}

// Report returns all accumulated entries ordered by descending count, ties
// broken by ascending address, so identical input always renders identically.
func (a *Aggregator) Report() []Entry {
	entries := make([]Entry, 0, len(a.counts))
	for addr, count := range a.counts {
		entries = append(entries, Entry{Address: addr, Count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Address < entries[j].Address
	})

	return entries
}

// NewAddresses returns the addresses observed this run that were not part of
// the seeded baseline, in ascending order.
func (a *Aggregator) NewAddresses() []string {
	var addrs []string
	for addr := range a.counts {
		if _, ok := a.baseline[addr]; !ok {
			addrs = append(addrs, addr)
		}
	}
	sort.Strings(addrs)
	return addrs
}

// Counts returns a copy of the accumulated counts for persistence.
func (a *Aggregator) Counts() map[string]int {
	counts := make(map[string]int, len(a.counts))
	for addr, count := range a.counts {
		counts[addr] = count
	}
	return counts
}

// Len reports the number of unique addresses seen so far.
func (a *Aggregator) Len() int {
	return len(a.counts)
}

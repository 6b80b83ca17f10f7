package state

import (
	"fmt"
	"testing"
)

// BenchmarkFileStore_Save benchmarks persisting a populated counts map.
func BenchmarkFileStore_Save(b *testing.B) {
	store, err := NewFileStore(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}

	counts := make(map[string]int, 1000)
	for i := 0; i < 1000; i++ {
		counts[fmt.Sprintf("sender-%d@example.com", i)] = i % 17
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := store.Save(counts); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFileStore_Load benchmarks reading back persisted counts.
func BenchmarkFileStore_Load(b *testing.B) {
	store, err := NewFileStore(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}

	counts := make(map[string]int, 1000)
	for i := 0; i < 1000; i++ {
		counts[fmt.Sprintf("sender-%d@example.com", i)] = i % 17
	}
	if err := store.Save(counts); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Load(); err != nil {
			b.Fatal(err)
		}
	}
}

package cmap_test

import (
	"testing"

	"github.com/Wind-318/baselib/pkg/cmap"
)

func BenchmarkStore(b *testing.B) {
	m := cmap.New[int, int]()

	i := 0
	for b.Loop() {
		m.Store(i%1024, i)
		i++
	}
}

func BenchmarkGet(b *testing.B) {
	m := cmap.New[int, int]()
	for i := range 1024 {
		m.Store(i, i)
	}

	b.ResetTimer()
	i := 0
	for b.Loop() {
		if _, ok := m.Get(i % 1024); !ok {
			b.Fatal("missing key")
		}
		i++
	}
}

func BenchmarkGet_Parallel(b *testing.B) {
	m := cmap.New[int, int]()
	for i := range 1024 {
		m.Store(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Get(i % 1024)
			i++
		}
	})
}

func BenchmarkMixed_Parallel(b *testing.B) {
	m := cmap.New[int, int]()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := i % 1024
			switch i % 10 {
			case 0:
				m.Store(key, i)
			case 1:
				m.Erase(key)
			default:
				m.Get(key)
			}
			i++
		}
	})
}

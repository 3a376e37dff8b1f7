package maps

import (
	"sync"
	"testing"
)

func TestRWLocked_LoadOrStore(t *testing.T) {
	var m RWLocked[string, int]

	actual, loaded := m.LoadOrStore("a", 1)
	if loaded || actual != 1 {
		t.Error("expected first store to win, got", actual, loaded)
	}

	actual, loaded = m.LoadOrStore("a", 2)
	if !loaded || actual != 1 {
		t.Error("expected existing value 1, got", actual, loaded)
	}
}

func TestRWLocked_LoadOrStoreConcurrent(t *testing.T) {
	var m RWLocked[int, *int]

	results := make([]*int, 32)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := new(int)
			results[i], _ = m.LoadOrStore(0, v)
		}()
	}
	wg.Wait()

	for _, r := range results {
		if r != results[0] {
			t.Error("expected every caller to observe the same value")
		}
	}
}

func TestRWLocked_DeleteIf(t *testing.T) {
	var m RWLocked[string, int]
	m.Store("a", 1)

	if m.DeleteIf("a", func(v int) bool { return v == 2 }) {
		t.Error("expected predicate to keep the value")
	}
	if !m.DeleteIf("a", func(v int) bool { return v == 1 }) {
		t.Error("expected predicate to delete the value")
	}
	if m.Len() != 0 {
		t.Error("expected empty map, got", m.Len())
	}
}

func TestRWLocked_RangeAllowsMutation(t *testing.T) {
	var m RWLocked[int, int]
	for i := 0; i < 8; i++ {
		m.Store(i, i)
	}

	m.Range(func(k, _ int) bool {
		m.Delete(k)
		return true
	})

	if m.Len() != 0 {
		t.Error("expected range to delete everything, got", m.Len())
	}
}

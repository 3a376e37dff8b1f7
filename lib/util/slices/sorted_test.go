package slices

import (
	"sort"
	"testing"
)

type entry struct {
	key int
	seq int
}

func lessEntry(a, b entry) bool {
	return a.key < b.key
}

func TestSorted_Insert(t *testing.T) {
	less := func(a, b string) bool {
		return len(a) < len(b)
	}

	values := []string{
		"test",
		"abc",
		"this is a long string",
		"gjkdfjgksg",
		"retre",
		"abd",
		"def",
		"ttierotiretiiret34t43t34534",
	}

	var x Sorted[string]
	for _, v := range values {
		x = x.Insert(v, less)
	}

	if !sort.SliceIsSorted(x, func(i, j int) bool {
		return less(x[i], x[j])
	}) {
		t.Errorf("slice isn't sorted: %#v", x)
	}
}

func TestSorted_InsertStable(t *testing.T) {
	var x Sorted[entry]
	for i, key := range []int{5, 1, 1, 3} {
		x = x.Insert(entry{key: key, seq: i}, lessEntry)
	}

	expected := []entry{{1, 1}, {1, 2}, {3, 3}, {5, 0}}
	for i := range expected {
		if x[i] != expected[i] {
			t.Errorf("expected %v at %d but got %v", expected[i], i, x[i])
		}
	}
}

func TestSorted_DeleteFunc(t *testing.T) {
	var x Sorted[entry]
	for i := 0; i < 6; i++ {
		x = x.Insert(entry{key: i % 3, seq: i}, lessEntry)
	}

	x = x.DeleteFunc(func(e entry) bool {
		return e.key == 1
	})

	if len(x) != 4 {
		t.Fatal("expected 4 entries but got", len(x))
	}
	for _, e := range x {
		if e.key == 1 {
			t.Error("expected entry to be deleted", e)
		}
	}
}

func TestMerge(t *testing.T) {
	a := Sorted[entry]{{1, 0}, {3, 3}, {5, 4}}
	b := Sorted[entry]{{1, 1}, {2, 2}, {6, 5}}

	merged := Merge(a, b, func(x, y entry) bool {
		if x.key != y.key {
			return x.key < y.key
		}
		return x.seq < y.seq
	})

	if len(merged) != 6 {
		t.Fatal("expected 6 entries but got", len(merged))
	}
	for i := range merged {
		if merged[i].seq != i {
			t.Errorf("expected seq %d at %d but got %v", i, i, merged[i])
		}
	}
}

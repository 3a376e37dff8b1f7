package slices

// Sorted is a slice kept in ascending order. As long as all items are inserted by Insert and removed by DeleteFunc,
// this slice will stay sorted. Values that compare equal keep the order they were inserted in.
type Sorted[V any] []V

// Insert places value after every element that is not greater than it.
func (T Sorted[V]) Insert(value V, less func(a, b V) bool) Sorted[V] {
	for i, v := range T {
		if !less(value, v) {
			continue
		}

		res := append(T, *new(V))
		copy(res[i+1:], res[i:])
		res[i] = value
		return res
	}

	return append(T, value)
}

// DeleteFunc removes every element fn reports true for. The backing array is reused.
func (T Sorted[V]) DeleteFunc(fn func(V) bool) Sorted[V] {
	res := T[:0]
	for _, v := range T {
		if !fn(v) {
			res = append(res, v)
		}
	}
	clear(T[len(res):])
	return res
}

// Merge combines two sorted slices into a new sorted slice. On ties, elements of a come first.
func Merge[V any](a, b Sorted[V], less func(a, b V) bool) Sorted[V] {
	res := make(Sorted[V], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if less(b[j], a[i]) {
			res = append(res, b[j])
			j++
		} else {
			res = append(res, a[i])
			i++
		}
	}
	res = append(res, a[i:]...)
	res = append(res, b[j:]...)
	return res
}

package esmsg

// Iter walks a payload field the ABI exposes as a count plus a per-index
// reader instead of a contiguous array. Forward-only, exact-size, fused:
// once exhausted it stays exhausted, and no index at or past the count ever
// reaches the reader.
type Iter[T any] struct {
	n    int
	i    int
	read func(int) T
}

func newIter[T any](n int, read func(int) T) Iter[T] {
	if n < 0 {
		n = 0
	}
	return Iter[T]{n: n, read: read}
}

// Next yields the next element, or false once the sequence is exhausted.
func (it *Iter[T]) Next() (T, bool) {
	if it.i >= it.n {
		var zero T
		return zero, false
	}
	v := it.read(it.i)
	it.i++
	return v, true
}

// Nth skips k elements and yields the one after, consuming k+1 positions.
func (it *Iter[T]) Nth(k int) (T, bool) {
	if k < 0 || it.n-it.i <= k {
		it.i = it.n
		var zero T
		return zero, false
	}
	it.i += k
	return it.Next()
}

// Last consumes the iterator and yields its final element.
func (it *Iter[T]) Last() (T, bool) {
	if it.i >= it.n {
		var zero T
		return zero, false
	}
	it.i = it.n
	return it.read(it.n - 1), true
}

// Len reports how many elements remain without consuming any.
func (it *Iter[T]) Len() int { return it.n - it.i }

// Count consumes the iterator and reports how many elements remained.
func (it *Iter[T]) Count() int {
	c := it.Len()
	it.i = it.n
	return c
}

// Collect drains the remaining elements into a slice. Returns nil when
// nothing remains.
func (it *Iter[T]) Collect() []T {
	if it.Len() == 0 {
		return nil
	}
	out := make([]T, 0, it.Len())
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// stringArray reads element i of a packed string-ref array: count refs of
// 8 bytes each starting at off.
func (r *Record) stringArray(off uint32, count int) Iter[string] {
	return newIter(count, func(i int) string {
		return r.str(r.u64(int(off) + 8*i))
	})
}

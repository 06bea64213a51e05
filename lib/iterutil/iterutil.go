package iterutil

import "iter"

// Chunk groups the values of `seq` into slices of at most `size` values.
// Only the last chunk may be shorter and an empty chunk is never yielded.
//
// Values are pulled from `seq` lazily, one chunk ahead at most.
func Chunk[T any](seq iter.Seq[T], size int) iter.Seq[[]T] {
	if size < 1 {
		panic("iterutil.Chunk: size must be at least 1")
	}
	return func(yield func([]T) bool) {
		batch := make([]T, 0, size)
		for v := range seq {
			batch = append(batch, v)
			if len(batch) < size {
				continue
			}
			if !yield(batch) {
				return
			}
			batch = make([]T, 0, size)
		}
		if len(batch) > 0 {
			yield(batch)
		}
	}
}

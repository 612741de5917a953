package dataset

import (
	"errors"
	"fmt"
	"iter"
)

var ErrLengthMismatch = errors.New("sequences have different lengths")

// Lockstep advances all sequences together and yields one element of each per step.
// It stops at the first error, and fails with ErrLengthMismatch as soon as one sequence ends
// while another still has elements.
func Lockstep[T any](seqs ...iter.Seq2[T, error]) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		if len(seqs) == 0 {
			return
		}

		nexts := make([]func() (T, error, bool), len(seqs))
		for i, s := range seqs {
			next, stop := iter.Pull2(s)
			defer stop()
			nexts[i] = next
		}

		for step := 0; ; step++ {
			row := make([]T, len(seqs))
			var ended, live int
			for i, next := range nexts {
				v, err, ok := next()
				if !ok {
					ended++
					continue
				}
				if err != nil {
					yield(nil, err)
					return
				}
				live++
				row[i] = v
			}

			switch {
			case live == 0:
				return
			case ended > 0:
				yield(nil, fmt.Errorf("%w: %d of %d ended at step %d", ErrLengthMismatch, ended, len(seqs), step))
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Record is one sentence of a shard. Embedding shards fill Layers, one N×D matrix per model
// layer; target shards fill Target and Mask, flattened row-major.
type Record struct {
	Index     int           `json:"index"`
	NumTokens int           `json:"num_tokens"`
	Layers    [][][]float64 `json:"layers,omitempty"`
	Target    []float64     `json:"target,omitempty"`
	Mask      []bool        `json:"mask,omitempty"`
}

// ReadRecords streams JSON values from a shard. Files ending in .gz are decompressed.
// Every iteration reopens the file, so the sequence can be ranged over repeatedly.
func ReadRecords[T any](ctx context.Context, path string) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		f, err := os.Open(path)
		if err != nil {
			yield(zero, fmt.Errorf("open shard: %w", err))
			return
		}
		defer f.Close()

		var r io.Reader = bufio.NewReader(f)
		if strings.HasSuffix(path, ".gz") {
			gz, err := gzip.NewReader(r)
			if err != nil {
				yield(zero, fmt.Errorf("open gzip shard %s: %w", path, err))
				return
			}
			defer gz.Close()
			r = gz
		}

		dec := json.NewDecoder(r)
		for n := 0; ; n++ {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}
			var rec T
			err := dec.Decode(&rec)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(zero, fmt.Errorf("%s: record %d: %w", path, n, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

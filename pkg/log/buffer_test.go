package log_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/pasteflow/pkg/log"
)

func TestCircularBuffer(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		writes   []string
		capacity int
		want     []string
	}{
		"empty": {
			capacity: 3,
			want:     nil,
		},
		"partial": {
			capacity: 3,
			writes:   []string{"a", "b"},
			want:     []string{"a", "b"},
		},
		"wraps": {
			capacity: 3,
			writes:   []string{"a", "b", "c", "d", "e"},
			want:     []string{"c", "d", "e"},
		},
		"skips empty writes": {
			capacity: 2,
			writes:   []string{"a", "", "b"},
			want:     []string{"a", "b"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cb := log.NewCircularBuffer(tc.capacity)
			for _, w := range tc.writes {
				_, err := cb.Write([]byte(w))
				require.NoError(t, err)
			}

			var got []string
			for _, e := range cb.Entries() {
				got = append(got, string(e))
			}

			assert.Equal(t, tc.want, got)
			assert.Equal(t, len(tc.want), cb.Len())
		})
	}
}

func TestCircularBufferDefaultCapacity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, log.DefaultBufferCapacity, log.NewCircularBuffer(0).Capacity())
	assert.Equal(t, log.DefaultBufferCapacity, log.NewCircularBuffer(-1).Capacity())
}

func TestCircularBufferFlush(t *testing.T) {
	t.Parallel()

	cb := log.NewCircularBuffer(2)
	logger := slog.New(slog.NewTextHandler(cb, nil))

	logger.Info("first")
	logger.Info("second")
	logger.Info("third")

	out := &bytes.Buffer{}
	require.NoError(t, cb.Flush(out))

	assert.NotContains(t, out.String(), "first")
	assert.Contains(t, out.String(), "second")
	assert.Contains(t, out.String(), "third")
	assert.Zero(t, cb.Len())
}

func TestCircularBufferConcurrentWrites(t *testing.T) {
	t.Parallel()

	cb := log.NewCircularBuffer(10)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := fmt.Fprintf(cb, "entry %d", i)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, cb.Len())
}

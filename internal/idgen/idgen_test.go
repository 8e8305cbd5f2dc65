package idgen_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopspot/loopspot/internal/idgen"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerator_Format(t *testing.T) {
	g := idgen.NewWithClock(fixedClock)

	id := g.Generate()

	parts := strings.Split(id, "_")
	require.Len(t, parts, 3, "id %q should be loop_<ms>_<random>", id)
	assert.Equal(t, "loop", parts[0])
	assert.Equal(t, "1748779200000", parts[1])
	assert.NotEmpty(t, parts[2])
}

// TestGenerator_NoCollisions mints ids with a frozen clock, so uniqueness rests
// entirely on the random component.
func TestGenerator_NoCollisions(t *testing.T) {
	g := idgen.NewWithClock(fixedClock)
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		id := g.Generate()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %q after %d ids", id, i)
		seen[id] = struct{}{}
	}
}

func TestGenerator_ConcurrentCallsDiffer(t *testing.T) {
	g := idgen.New()
	const n = 1000

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Generate()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}

func TestSequence_StrictlyIncreasingWithinOneMillisecond(t *testing.T) {
	s := idgen.NewSequenceWithClock(fixedClock)

	first := s.Next()
	second := s.Next()
	third := s.Next()

	assert.Equal(t, fixedClock().UnixMilli(), first)
	assert.Equal(t, first+1, second)
	assert.Equal(t, second+1, third)
}

func TestSequence_NextAfterSkipsPastFloor(t *testing.T) {
	s := idgen.NewSequenceWithClock(fixedClock)
	floor := fixedClock().UnixMilli() + 500

	got := s.NextAfter(floor)

	assert.Equal(t, floor+1, got)
	assert.Equal(t, floor+2, s.Next())
}

func TestSequence_NextAfterBelowClock(t *testing.T) {
	s := idgen.NewSequenceWithClock(fixedClock)

	got := s.NextAfter(5)

	assert.Equal(t, fixedClock().UnixMilli(), got)
}

// Package idgen produces identifiers without any coordinating authority.
// Loop ids combine a millisecond timestamp with random bits; waypoint ids are
// millisecond timestamps made strictly increasing within the process.
package idgen

import (
	"encoding/binary"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// LoopIDPrefix starts every loop id.
const LoopIDPrefix = "loop_"

// Generator mints loop ids of the form loop_<unix-ms>_<base36 random>.
// The zero value is not usable; call New.
type Generator struct {
	now func() time.Time
}

// New returns a Generator reading the wall clock.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock returns a Generator that reads time from now. Tests use it to
// pin the time component.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Generate returns a new loop id. It never fails: the random component comes
// from a version 4 UUID, so two ids minted in the same millisecond still differ
// with overwhelming probability.
func (g *Generator) Generate() string {
	r := uuid.New()
	random := binary.BigEndian.Uint64(r[:8])
	return LoopIDPrefix + strconv.FormatInt(g.now().UnixMilli(), 10) + "_" + strconv.FormatUint(random, 36)
}

// Sequence hands out int64 ids derived from the millisecond clock. Each call
// returns a value strictly greater than the previous one, even when several
// calls land in the same millisecond. Safe for concurrent use.
type Sequence struct {
	now  func() time.Time
	last atomic.Int64
}

// NewSequence returns a Sequence reading the wall clock.
func NewSequence() *Sequence {
	return &Sequence{now: time.Now}
}

// NewSequenceWithClock returns a Sequence that reads time from now.
func NewSequenceWithClock(now func() time.Time) *Sequence {
	return &Sequence{now: now}
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	for {
		prev := s.last.Load()
		next := s.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if s.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// NextAfter returns the next id, bumped past floor when the clock has not yet
// passed it (e.g. ids loaded from a record written by a faster clock).
func (s *Sequence) NextAfter(floor int64) int64 {
	for {
		prev := s.last.Load()
		if prev >= floor {
			return s.Next()
		}
		if s.last.CompareAndSwap(prev, floor) {
			return s.Next()
		}
	}
}

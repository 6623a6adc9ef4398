package driver

import (
	"context"
	"math/rand"
)

// Stream is the single-threaded pull interface over a run. The caller owns
// the pace: nothing is produced until Next is called, so an unbounded run
// costs nothing between pulls.
type Stream struct {
	d    *Driver
	ctx  context.Context
	rng  *rand.Rand
	next uint64
	err  error
	done bool
}

// Stream starts a cooperative pull over the run. The returned stream owns a
// private RNG seeded with the master seed; it must not be shared across
// goroutines.
func (d *Driver) Stream(ctx context.Context) *Stream {
	return &Stream{
		d:   d,
		ctx: ctx,
		rng: rand.New(rand.NewSource(d.seed)),
	}
}

// Next produces the next record. It returns false when the configured
// iteration count is exhausted, the context is cancelled, or production
// failed; Err distinguishes the reasons.
func (s *Stream) Next() (Record, bool) {
	if s.done {
		return Record{}, false
	}

	if n := s.d.opts.Iterations; n > 0 && s.next >= uint64(n) {
		s.done = true
		return Record{}, false
	}

	select {
	case <-s.ctx.Done():
		s.done = true
		s.err = s.ctx.Err()
		return Record{}, false
	default:
	}

	rec, err := s.d.produce(s.next, 0, s.rng)
	if err != nil {
		s.done = true
		s.err = err
		s.d.fail(err)
		return Record{}, false
	}

	s.next++
	return rec, true
}

// Produced returns how many records this stream has handed out.
func (s *Stream) Produced() uint64 {
	return s.next
}

// Err reports why the stream stopped early. It is nil after a clean
// exhaustion of the configured iterations.
func (s *Stream) Err() error {
	return s.err
}

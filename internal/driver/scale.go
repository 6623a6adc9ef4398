package driver

import (
	"context"
	"math/rand"
	"sync"
)

// Start runs the configured number of workers and returns the record
// channel. Worker i owns the index range {i, i+W, i+2W, ...} and a private
// RNG, so per-index output is deterministic even though cross-worker
// delivery order is not. The channel is bounded by QueueSize; a slow
// consumer blocks the producers rather than dropping records. The channel
// closes once every worker has finished or the context is cancelled.
func (d *Driver) Start(ctx context.Context) <-chan Record {
	out := make(chan Record, d.opts.QueueSize)

	var wg sync.WaitGroup
	for i := 0; i < d.opts.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			d.work(ctx, worker, out)
		}(i)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (d *Driver) work(ctx context.Context, worker int, out chan<- Record) {
	rng := rand.New(rand.NewSource(substreamSeed(d.seed, worker)))
	step := uint64(d.opts.Workers)

	d.logger.WithWorker(worker).Debugw("Worker started", "step", step)

	for index := uint64(worker); ; index += step {
		if n := d.opts.Iterations; n > 0 && index >= uint64(n) {
			return
		}
		// Checked before producing so cancellation never burns work on a
		// record that would be discarded anyway.
		if ctx.Err() != nil {
			return
		}

		rec, err := d.produce(index, worker, rng)
		if err != nil {
			d.fail(err)
			d.logger.WithWorker(worker).Errorw("Worker stopping after produce failure",
				"index", index,
				"error", err,
			)
			return
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return
		}
	}
}

// substreamSeed derives a worker-private seed from the master seed using the
// SplitMix64 finalizer over the golden-gamma stepped worker index. Distinct
// workers land far apart in seed space, so their substreams do not correlate
// even for adjacent worker numbers.
func substreamSeed(master int64, worker int) int64 {
	z := uint64(master) ^ (uint64(worker+1) * 0x9e3779b97f4a7c15)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

package testbench

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i5heu/GoSling/internal/queue"
)

// Config describes one concurrency setting. There is always exactly one
// producer; the broadcast ring admits a single writer.
type Config struct {
	NumConsumers int
}

// RunTimedTest runs one producer and cfg.NumConsumers consumers for
// testDuration, counting how many messages were enqueued and how many were
// dequeued in that window. Once the context expires the producer stops and
// consumers drain whatever they can still see.
//
// For broadcast queues every consumer sees every message, so consumedCount can
// exceed producedCount.
func RunTimedTest[T any, Q queue.QueueValidationInterface[T]](
	q Q,
	cfg Config,
	testDuration time.Duration,
	valueGenerator func(int) T,
) (producedCount int64, consumedCount int64, elapsed time.Duration) {

	var totalProduced int64
	var totalConsumed int64

	// productionDone is set once the producer has returned.
	var productionDone atomic.Bool

	consumers := make([]queue.Consumer[T], cfg.NumConsumers)
	for i := range consumers {
		consumers[i] = q.Consumer()
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), testDuration)
	defer cancel()

	var consWg sync.WaitGroup
	consWg.Add(len(consumers))
	for _, c := range consumers {
		go func(c queue.Consumer[T]) {
			defer consWg.Done()
			for {
				if productionDone.Load() {
					// Drain until empty.
					for {
						if _, ok := c.Dequeue(); !ok {
							return
						}
						atomic.AddInt64(&totalConsumed, 1)
					}
				}
				if _, ok := c.Dequeue(); ok {
					atomic.AddInt64(&totalConsumed, 1)
				} else {
					runtime.Gosched()
				}
			}
		}(c)
	}

	var prodWg sync.WaitGroup
	prodWg.Add(1)
	go func() {
		defer prodWg.Done()
		for i := 0; ctx.Err() == nil; i++ {
			q.Enqueue(valueGenerator(i))
			totalProduced++
		}
	}()

	prodWg.Wait()
	productionDone.Store(true)
	consWg.Wait()

	elapsed = time.Since(start)
	producedCount = totalProduced
	consumedCount = atomic.LoadInt64(&totalConsumed)
	return producedCount, consumedCount, elapsed
}

// RunBurst pushes messages values as fast as possible past consumers
// goroutines. Each consumer drains until the producer is done and then keeps
// polling up to maxSpin times before it gives up.
func RunBurst[T any, Q queue.QueueValidationInterface[T]](
	q Q,
	consumers int,
	messages int,
	maxSpin int,
	valueGenerator func(int) T,
) (consumedCount int64, elapsed time.Duration) {

	var (
		done  atomic.Bool
		total atomic.Int64
		wg    sync.WaitGroup
	)

	handles := make([]queue.Consumer[T], consumers)
	for i := range handles {
		handles[i] = q.Consumer()
	}

	start := time.Now()
	wg.Add(consumers)
	for _, c := range handles {
		go func(c queue.Consumer[T]) {
			defer wg.Done()
			for {
				for {
					if _, ok := c.Dequeue(); !ok {
						break
					}
					total.Add(1)
				}
				if !done.Load() {
					runtime.Gosched()
					continue
				}
				spin := 0
				for ; spin < maxSpin; spin++ {
					if _, ok := c.Dequeue(); ok {
						total.Add(1)
						break
					}
					runtime.Gosched()
				}
				if spin == maxSpin {
					return
				}
			}
		}(c)
	}

	for i := 0; i < messages; i++ {
		q.Enqueue(valueGenerator(i))
	}
	done.Store(true)
	wg.Wait()

	return total.Load(), time.Since(start)
}

package main

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i5heu/GoSling/internal/queue"
	"github.com/i5heu/GoSling/internal/testbench"
	"github.com/i5heu/GoSling/pkg/config"
)

// progressWatchdog monitors progress and fails the test if no progress is made for 15 seconds.
type progressWatchdog struct {
	t            *testing.T
	label        string
	lastProgress atomic.Int64
	done         chan struct{}
}

func newWatchdog(t *testing.T, label string) *progressWatchdog {
	wd := &progressWatchdog{
		t:     t,
		label: label,
		done:  make(chan struct{}),
	}
	wd.lastProgress.Store(time.Now().UnixNano())
	return wd
}

func (wd *progressWatchdog) Start() {
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				last := wd.lastProgress.Load()
				if time.Since(time.Unix(0, last)) > 15*time.Second {
					wd.t.Errorf("No progress in the last 15 seconds (%s test likely stuck).", wd.label)
					return
				}
			case <-wd.done:
				return
			}
		}
	}()
}

func (wd *progressWatchdog) Progress() {
	wd.lastProgress.Store(time.Now().UnixNano())
}

func (wd *progressWatchdog) Stop() {
	close(wd.done)
}

type testImpl = Implementation[testbench.Payload, benchQueue]

// withAllQueues runs fn as a subtest for every implementation that has all
// testedFeatures.
func withAllQueues(t *testing.T, testedFeatures []string, fn func(t *testing.T, impl testImpl, q benchQueue)) {
	t.Helper()
	for _, impl := range getImplementations() {
		impl := impl
		t.Run(impl.name, func(t *testing.T) {
			for _, feature := range testedFeatures {
				if !impl.hasFeature(feature) {
					t.Skipf("Skipping: missing feature %q", feature)
				}
			}
			q := impl.newQueue(1024)
			if c, ok := q.(interface{ Close() error }); ok {
				t.Cleanup(func() { c.Close() })
			}
			fn(t, impl, q)
		})
	}
}

// consumeAll drains c from its own goroutine until done is closed and the
// queue stays empty for a while.
func consumeAll(c queue.Consumer[testbench.Payload], done <-chan struct{}, wd *progressWatchdog) []int {
	var got []int
	idle := 0
	for {
		if v, ok := c.Dequeue(); ok {
			got = append(got, v.Index())
			idle = 0
			wd.Progress()
			continue
		}
		select {
		case <-done:
			if idle++; idle > 256 {
				return got
			}
		default:
		}
		runtime.Gosched()
	}
}

func TestBasicFIFO(t *testing.T) {
	withAllQueues(t, []string{"FIFO"}, func(t *testing.T, impl testImpl, q benchQueue) {
		c := q.Consumer()
		const n = 512
		for i := 0; i < n; i++ {
			q.Enqueue(testbench.SequencePayload(i))
		}
		for i := 0; i < n; i++ {
			v, ok := c.Dequeue()
			require.True(t, ok, "dequeue %d", i)
			require.Equal(t, i, v.Index())
		}
		_, ok := c.Dequeue()
		assert.False(t, ok)
	})
}

func TestEmptyQueue(t *testing.T) {
	withAllQueues(t, nil, func(t *testing.T, impl testImpl, q benchQueue) {
		c := q.Consumer()
		for i := 0; i < 100; i++ {
			_, ok := c.Dequeue()
			require.False(t, ok)
		}
	})
}

func TestPartitionNoDuplicates(t *testing.T) {
	withAllQueues(t, []string{"Partition"}, func(t *testing.T, impl testImpl, q benchQueue) {
		const consumers, n = 8, 1000
		wd := newWatchdog(t, "PartitionNoDuplicates")
		wd.Start()
		defer wd.Stop()

		handles := make([]queue.Consumer[testbench.Payload], consumers)
		for i := range handles {
			handles[i] = q.Consumer()
		}

		done := make(chan struct{})
		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			all []int
		)
		for _, c := range handles {
			wg.Add(1)
			go func(c queue.Consumer[testbench.Payload]) {
				defer wg.Done()
				got := consumeAll(c, done, wd)
				mu.Lock()
				all = append(all, got...)
				mu.Unlock()
			}(c)
		}
		for i := 0; i < n; i++ {
			q.Enqueue(testbench.SequencePayload(i))
		}
		close(done)
		wg.Wait()

		sort.Ints(all)
		require.Len(t, all, n)
		for i, v := range all {
			require.Equal(t, i, v)
		}
	})
}

func TestBroadcastDelivery(t *testing.T) {
	withAllQueues(t, []string{"Broadcast"}, func(t *testing.T, impl testImpl, q benchQueue) {
		const consumers, n = 4, 1000
		wd := newWatchdog(t, "BroadcastDelivery")
		wd.Start()
		defer wd.Stop()

		handles := make([]queue.Consumer[testbench.Payload], consumers)
		for i := range handles {
			handles[i] = q.Consumer()
		}

		done := make(chan struct{})
		got := make([][]int, consumers)
		var wg sync.WaitGroup
		for i, c := range handles {
			wg.Add(1)
			go func(i int, c queue.Consumer[testbench.Payload]) {
				defer wg.Done()
				got[i] = consumeAll(c, done, wd)
			}(i, c)
		}
		for i := 0; i < n; i++ {
			q.Enqueue(testbench.SequencePayload(i))
		}
		close(done)
		wg.Wait()

		for i := range got {
			require.Len(t, got[i], n, "consumer %d", i)
			for j, v := range got[i] {
				require.Equal(t, j, v, "consumer %d", i)
			}
		}
	})
}

func TestLossyOverrun(t *testing.T) {
	withAllQueues(t, []string{"Lossy"}, func(t *testing.T, impl testImpl, q benchQueue) {
		c := q.Consumer()
		capacity := int(q.Capacity())
		total := 10 * capacity
		for i := 0; i < total; i++ {
			q.Enqueue(testbench.SequencePayload(i))
		}

		var got []int
		for {
			v, ok := c.Dequeue()
			if !ok {
				break
			}
			got = append(got, v.Index())
		}
		assert.LessOrEqual(t, len(got), capacity)
		for i, v := range got {
			assert.GreaterOrEqual(t, v, total-capacity, "value older than the live window")
			if i > 0 {
				assert.Greater(t, v, got[i-1])
			}
		}
	})
}

func TestTimedRunAllImplementations(t *testing.T) {
	cfg := config.Default()
	cfg.Duration = 100 * time.Millisecond
	for _, impl := range getImplementations() {
		impl := impl
		t.Run(impl.name, func(t *testing.T) {
			r := runOne(impl, cfg, config.Concurrency{NumConsumers: 2}, modeTimed)
			assert.Positive(t, r.NumMessages)
			assert.Equal(t, impl.name, r.Implementation)
			assert.Equal(t, "100ms", r.TestDuration)
			if impl.hasFeature("Partition") {
				assert.LessOrEqual(t, r.NumMessagesConsumed, r.NumMessages)
			}
		})
	}
}

func TestBurstRunAllImplementations(t *testing.T) {
	cfg := config.Default()
	for _, impl := range getImplementations() {
		impl := impl
		t.Run(impl.name, func(t *testing.T) {
			r := runOne(impl, cfg, config.Concurrency{NumConsumers: 4}, modeBurst)
			assert.Equal(t, int64(cfg.Messages), r.NumMessages)
			switch {
			case impl.hasFeature("Broadcast"):
				assert.Equal(t, int64(4*cfg.Messages), r.NumMessagesConsumed)
			case impl.hasFeature("Partition"):
				assert.Equal(t, int64(cfg.Messages), r.NumMessagesConsumed)
			}
			assert.Positive(t, r.Throughput)
		})
	}
}

func TestCPUSettings(t *testing.T) {
	assert.Equal(t, []int{4}, cpuSettingsFor(4, 8))
	assert.Equal(t, []int{8}, cpuSettingsFor(64, 8))
	assert.Equal(t, []int{1, 2, 3, 4, 6}, cpuSettingsFor(0, 6))
}

func TestImplementationsRegistered(t *testing.T) {
	impls := getImplementations()
	require.NotEmpty(t, impls)
	names := map[string]bool{}
	for _, impl := range impls {
		assert.False(t, names[impl.name], "duplicate implementation %q", impl.name)
		names[impl.name] = true
		assert.NotNil(t, impl.newQueue)
		assert.NotEmpty(t, impl.features)
	}
}

func BenchmarkEnqueueDequeue(b *testing.B) {
	for _, impl := range getImplementations() {
		impl := impl
		b.Run(impl.name, func(b *testing.B) {
			q := impl.newQueue(1024)
			c := q.Consumer()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				q.Enqueue(testbench.SequencePayload(i))
				for {
					if _, ok := c.Dequeue(); ok {
						break
					}
				}
			}
		})
	}
}

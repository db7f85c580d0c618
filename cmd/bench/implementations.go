package main

import (
	"github.com/i5heu/GoSling/internal/queue"
	"github.com/i5heu/GoSling/internal/testbench"
	"github.com/i5heu/GoSling/pkg/buffered"
	"github.com/i5heu/GoSling/pkg/spmc"
)

// benchQueue is what every implementation hands to the testbench.
type benchQueue = interface {
	Enqueue(testbench.Payload)
	Consumer() queue.Consumer[testbench.Payload]
	Capacity() uint64
}

// Implementation represents a queue implementation.
type Implementation[T any, Q queue.QueueValidationInterface[T]] struct {
	name        string
	description string
	pkgName     string
	authors     []string
	features    []string
	newQueue    func(capacity uint64) Q
}

func (impl Implementation[T, Q]) hasFeature(feature string) bool {
	for _, f := range impl.features {
		if f == feature {
			return true
		}
	}
	return false
}

// getImplementations enumerates the queues the bench compares.
func getImplementations() []Implementation[testbench.Payload, benchQueue] {
	return []Implementation[testbench.Payload, benchQueue]{
		{
			name:        "Golang Buffered Channel",
			pkgName:     "buffered",
			description: "A buffered channel drained by competing consumers; each message reaches one consumer.",
			authors:     []string{"Mia Heidenstedt <heidenstedt.org>"},
			features:    []string{"SPMC", "FIFO", "Partition", "Blocking"},
			newQueue: func(capacity uint64) benchQueue {
				return buffered.New[testbench.Payload](capacity)
			},
		},
		{
			name:        "Lock-free SPMC Ring",
			pkgName:     "spmc",
			description: "Bounded sequence-numbered ring; consumers claim slots with CAS and the producer waits for free slots, so nothing is lost.",
			authors:     []string{"Mia Heidenstedt <heidenstedt.org>"},
			features:    []string{"SPMC", "FIFO", "Partition", "Blocking", "Lock-Free"},
			newQueue: func(capacity uint64) benchQueue {
				return spmc.New[testbench.Payload](capacity)
			},
		},
		{
			name:        "SlingSharedReader",
			pkgName:     "sling",
			description: "Seqlock broadcast ring with one reader shared by all consumers; the consumers split the stream via CAS on the cursor.",
			authors:     []string{"Mia Heidenstedt <heidenstedt.org>"},
			features:    []string{"SPMC", "FIFO", "Partition", "Seqlock", "Lossy"},
			newQueue: func(capacity uint64) benchQueue {
				return testbench.NewSlingQueue[testbench.Payload](capacity, testbench.SharedReader)
			},
		},
		{
			name:        "SlingClonedReaders",
			pkgName:     "sling",
			description: "Seqlock broadcast ring with a cloned reader per consumer; every consumer sees every message it is fast enough to catch.",
			authors:     []string{"Mia Heidenstedt <heidenstedt.org>"},
			features:    []string{"SPMC", "FIFO", "Broadcast", "Seqlock", "Lossy"},
			newQueue: func(capacity uint64) benchQueue {
				return testbench.NewSlingQueue[testbench.Payload](capacity, testbench.ClonedReaders)
			},
		},
	}
}

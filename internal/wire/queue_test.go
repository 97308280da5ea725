package wire

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(b byte) Message { return Message{Buf: []byte{b}} }

func TestQueuePushEmptyTransition(t *testing.T) {
	t.Parallel()

	var q SendQueue
	assert.True(t, q.Push(msg(1)), "push into empty queue must report the transition")
	assert.False(t, q.Push(msg(2)), "push into non-empty queue must not")
	assert.Equal(t, 2, q.Len())
}

func TestQueuePopEmptyTransition(t *testing.T) {
	t.Parallel()

	var q SendQueue
	q.Push(msg(1))
	q.Push(msg(2))

	assert.Equal(t, byte(1), q.Top().Buf[0])
	assert.False(t, q.Pop(), "pop leaving one message must not report empty")
	assert.Equal(t, byte(2), q.Top().Buf[0])
	assert.True(t, q.Pop(), "pop of the last message must report empty")
}

// TestQueueDrainSchedule simulates the producer/consumer contract: a true
// Push starts a drain, a false Pop continues it. Under concurrent producers
// every enqueued message must be drained exactly once with exactly one
// drain active at any time.
func TestQueueDrainSchedule(t *testing.T) {
	t.Parallel()

	const producers = 8
	const perProducer = 200

	var q SendQueue
	var drained sync.WaitGroup
	drained.Add(producers * perProducer)

	// The Top..Pop region belongs to the single live drain; overlapping
	// entries mean the empty-transition contract handed out two drains.
	var inDrain atomic.Int32
	var overlaps atomic.Int32
	var total atomic.Int32

	var drain func()
	drain = func() {
		for {
			if inDrain.Add(1) != 1 {
				overlaps.Add(1)
			}
			q.Top()
			total.Add(1)
			inDrain.Add(-1)
			done := q.Pop()
			drained.Done()
			if done {
				break
			}
		}
	}

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if q.Push(msg(byte(p))) {
					go drain()
				}
			}
		}(p)
	}

	wg.Wait()
	drained.Wait()

	require.Equal(t, int32(producers*perProducer), total.Load())
	assert.Equal(t, int32(0), overlaps.Load(), "at most one drain may exist at a time")
	assert.Equal(t, 0, q.Len())
}

package pqueue

import (
	"math/rand"
	"testing"
)

// checkInvariants walks the whole heap and fails the test if the slot table
// or the heap property has drifted out of sync.
func checkInvariants(t *testing.T, q *Queue) {
	t.Helper()

	if q.Len() > q.Cap() {
		t.Fatalf("size %d exceeds capacity %d", q.Len(), q.Cap())
	}

	for slot, e := range q.heap {
		if got := q.slotOf[e.fd]; got != slot {
			t.Fatalf("slotOf[%d] = %d, want %d", e.fd, got, slot)
		}
		if slot > 0 {
			parent := (slot - 1) / 2
			if q.heap[slot].priority < q.heap[parent].priority {
				t.Fatalf("heap property violated at slot %d (priority %d) vs parent %d (priority %d)",
					slot, q.heap[slot].priority, parent, q.heap[parent].priority)
			}
		}
	}
}

func TestEnqueueDequeueOrder(t *testing.T) {
	q := New(8)
	times := map[int]int64{5: 50, 1: 10, 3: 30, 2: 20, 4: 40}
	for fd, pr := range times {
		if err := q.Enqueue(fd, pr); err != nil {
			t.Fatalf("Enqueue(%d): %v", fd, err)
		}
		checkInvariants(t, q)
	}

	var last int64 = -1
	for q.Len() > 0 {
		_, pr, ok := q.DequeueMin()
		if !ok {
			t.Fatal("DequeueMin reported empty unexpectedly")
		}
		if pr < last {
			t.Fatalf("dequeue order not non-decreasing: got %d after %d", pr, last)
		}
		last = pr
		checkInvariants(t, q)
	}
}

func TestQueueFull(t *testing.T) {
	q := New(2)
	if err := q.Enqueue(1, 1); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(2, 2); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(3, 3); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("queue size changed after rejected enqueue: %d", q.Len())
	}
}

func TestUpdateRepositions(t *testing.T) {
	// Scenario F: three keep-alive connections enqueued at t, t+1, t+2; the
	// first is updated to t+3 and must no longer be the minimum.
	q := New(4)
	q.Enqueue(1 /* A */, 100)
	q.Enqueue(2 /* B */, 101)
	q.Enqueue(3 /* C */, 102)

	q.Update(1, 103) // A becomes most recent
	checkInvariants(t, q)

	fd, _, ok := q.PeekMin()
	if !ok || fd != 2 {
		t.Fatalf("peek_min = %d, want 2 (B)", fd)
	}
}

func TestUpdateAbsentIsNoop(t *testing.T) {
	q := New(4)
	q.Enqueue(1, 10)
	q.Update(99, 5) // fd 99 was never enqueued
	checkInvariants(t, q)
	if q.Len() != 1 {
		t.Fatalf("update on absent fd mutated size: %d", q.Len())
	}
}

func TestRemoveArbitrarySlot(t *testing.T) {
	q := New(8)
	for fd := 1; fd <= 7; fd++ {
		q.Enqueue(fd, int64(fd)*10)
	}
	q.Remove(4)
	checkInvariants(t, q)
	if q.Contains(4) {
		t.Fatal("fd 4 still reported contained after Remove")
	}
	if q.Len() != 6 {
		t.Fatalf("size after remove = %d, want 6", q.Len())
	}

	var last int64 = -1
	for q.Len() > 0 {
		_, pr, _ := q.DequeueMin()
		if pr < last {
			t.Fatalf("order violated after arbitrary remove")
		}
		last = pr
		checkInvariants(t, q)
	}
}

func TestPeekMinEmptyIsSentinel(t *testing.T) {
	q := New(4)
	if _, _, ok := q.PeekMin(); ok {
		t.Fatal("PeekMin on empty queue returned ok=true")
	}
	if _, _, ok := q.DequeueMin(); ok {
		t.Fatal("DequeueMin on empty queue returned ok=true")
	}
}

func TestRandomizedOperationsPreserveInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	q := New(64)
	live := map[int]bool{}

	for i := 0; i < 5000; i++ {
		switch rng.Intn(4) {
		case 0: // enqueue a fresh fd
			fd := rng.Intn(200)
			if !live[fd] {
				if err := q.Enqueue(fd, rng.Int63n(1_000_000)); err == nil {
					live[fd] = true
				}
			}
		case 1: // update a live fd
			if len(live) > 0 {
				fd := anyKey(live)
				q.Update(fd, rng.Int63n(1_000_000))
			}
		case 2: // remove a live fd
			if len(live) > 0 {
				fd := anyKey(live)
				q.Remove(fd)
				delete(live, fd)
			}
		case 3: // dequeue min
			if fd, _, ok := q.DequeueMin(); ok {
				delete(live, fd)
			}
		}
		checkInvariants(t, q)
		if q.Len() != len(live) {
			t.Fatalf("queue size %d diverged from tracked live set %d", q.Len(), len(live))
		}
	}
}

func anyKey(m map[int]bool) int {
	for k := range m {
		return k
	}
	return -1
}

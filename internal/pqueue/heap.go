// Package pqueue implements the indexed timed min-heap of keep-alive
// connections: a binary min-heap of (fd, priority_time) handles keyed by
// last-activity time, paired with a handle→slot side table so a live
// connection's priority can be located and updated in O(log n) without a
// linear scan.
//
// Grounded on the container/heap-based priority queues elsewhere in the
// retrieval corpus (smux's shaperHeap uses container/heap for a plain,
// non-indexed priority queue of write requests) and on the fd-keyed timed
// heap inside gaio's watcher. Neither of those is indexed by handle, which
// this queue requires for decrease/increase-key and delete-by-handle in
// O(log n); the slot table here is the generalization that adds it.
//
// Not goroutine-safe by design: the reactor is its single writer.
package pqueue

import "errors"

// ErrQueueFull is returned by Enqueue when the heap is at capacity. Callers
// (the reactor, on accept) apply their own rejection policy.
var ErrQueueFull = errors.New("pqueue: queue full")

const absent = -1

// entry is one slot of the heap: a connection handle and its priority.
type entry struct {
	fd       int
	priority int64 // unix nanoseconds; smaller is "more overdue"
}

// Queue is an indexed binary min-heap of connection handles.
type Queue struct {
	heap     []entry
	slotOf   map[int]int // fd -> slot index; fds that are not live have no entry
	capacity int
}

// New creates a queue with a fixed capacity (MAX_CONNECTIONS).
func New(capacity int) *Queue {
	return &Queue{
		heap:     make([]entry, 0, capacity),
		slotOf:   make(map[int]int, capacity),
		capacity: capacity,
	}
}

// Len returns the number of live entries.
func (q *Queue) Len() int { return len(q.heap) }

// Cap returns the configured capacity.
func (q *Queue) Cap() int { return q.capacity }

// Contains reports whether fd currently has a live entry.
func (q *Queue) Contains(fd int) bool {
	slot, ok := q.slotOf[fd]
	return ok && slot != absent
}

// Enqueue inserts fd with the given priority (last-activity time). Returns
// ErrQueueFull if the queue is already at capacity. Out-of-range (negative)
// fd values are rejected without mutating state.
func (q *Queue) Enqueue(fd int, priority int64) error {
	if fd < 0 {
		return errors.New("pqueue: negative fd")
	}
	if q.Contains(fd) {
		// Re-enqueuing a live fd updates its priority instead of inserting.
		q.Update(fd, priority)
		return nil
	}
	if len(q.heap) >= q.capacity {
		return ErrQueueFull
	}

	slot := len(q.heap)
	q.heap = append(q.heap, entry{fd: fd, priority: priority})
	q.slotOf[fd] = slot
	q.siftUp(slot)
	return nil
}

// Update changes fd's priority, re-establishing heap order in O(log n).
// Updating an fd that is not live is a no-op (callers are expected to log
// this as a warning; pqueue itself has no logger).
func (q *Queue) Update(fd int, newPriority int64) {
	slot, ok := q.slotOf[fd]
	if !ok || slot == absent {
		return
	}

	old := q.heap[slot].priority
	q.heap[slot].priority = newPriority

	if newPriority < old {
		q.siftUp(slot)
	} else if newPriority > old {
		q.siftDown(slot)
	}
}

// PeekMin returns the entry with the smallest priority without mutating the
// queue. ok is false when the queue is empty.
func (q *Queue) PeekMin() (fd int, priority int64, ok bool) {
	if len(q.heap) == 0 {
		return 0, 0, false
	}
	return q.heap[0].fd, q.heap[0].priority, true
}

// DequeueMin removes and returns the entry with the smallest priority.
func (q *Queue) DequeueMin() (fd int, priority int64, ok bool) {
	if len(q.heap) == 0 {
		return 0, 0, false
	}
	min := q.heap[0]
	q.removeSlot(0)
	return min.fd, min.priority, true
}

// Remove deletes fd's entry wherever it sits in the heap. No-op if fd is
// not live.
func (q *Queue) Remove(fd int) {
	slot, ok := q.slotOf[fd]
	if !ok || slot == absent {
		return
	}
	q.removeSlot(slot)
}

// removeSlot deletes the entry at slot, swapping the last element into its
// place and restoring heap order, then marks fd absent.
func (q *Queue) removeSlot(slot int) {
	removedFd := q.heap[slot].fd
	last := len(q.heap) - 1

	if slot != last {
		q.swap(slot, last)
	}
	q.heap = q.heap[:last]
	delete(q.slotOf, removedFd)

	if slot < len(q.heap) {
		// The element swapped into `slot` may violate the heap property in
		// either direction depending on how it compares to its new parent
		// and children.
		parent := (slot - 1) / 2
		if slot > 0 && q.heap[slot].priority < q.heap[parent].priority {
			q.siftUp(slot)
		} else {
			q.siftDown(slot)
		}
	}
}

func (q *Queue) siftUp(slot int) {
	for slot > 0 {
		parent := (slot - 1) / 2
		if q.heap[slot].priority >= q.heap[parent].priority {
			break
		}
		q.swap(slot, parent)
		slot = parent
	}
}

func (q *Queue) siftDown(slot int) {
	n := len(q.heap)
	for {
		left := 2*slot + 1
		right := 2*slot + 2
		smallest := slot

		if left < n && q.heap[left].priority < q.heap[smallest].priority {
			smallest = left
		}
		if right < n && q.heap[right].priority < q.heap[smallest].priority {
			smallest = right
		}
		if smallest == slot {
			return
		}
		q.swap(slot, smallest)
		slot = smallest
	}
}

// swap exchanges two slots and updates slotOf for both endpoints before
// returning, preserving the invariant that slotOf always reflects reality.
func (q *Queue) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.slotOf[q.heap[i].fd] = i
	q.slotOf[q.heap[j].fd] = j
}

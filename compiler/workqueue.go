package compiler

import (
	"github.com/domino14/tictable/state"
)

// workQueue is a double-ended queue of state ids. The compiler uses it as
// a FIFO (PushBack + PopFront) for the frontier and winners, and as a LIFO
// (PushBack + PopBack) for nodes waiting to be scored. It is not safe for
// concurrent use; the compiler drives it from one goroutine.
type workQueue struct {
	ids []state.ID
	top int // index of the front element
}

func newWorkQueue() *workQueue {
	return &workQueue{}
}

func (q *workQueue) PushBack(id state.ID) {
	q.ids = append(q.ids, id)
}

// PopFront removes the oldest id.
func (q *workQueue) PopFront() (state.ID, bool) {
	if q.top >= len(q.ids) {
		return state.ID{}, false
	}
	id := q.ids[q.top]
	q.top++
	// Reclaim the consumed prefix once it dominates the backing array.
	if q.top > 1024 && q.top*2 > len(q.ids) {
		q.ids = append(q.ids[:0], q.ids[q.top:]...)
		q.top = 0
	}
	return id, true
}

// PopBack removes the newest id.
func (q *workQueue) PopBack() (state.ID, bool) {
	if q.top >= len(q.ids) {
		return state.ID{}, false
	}
	last := len(q.ids) - 1
	id := q.ids[last]
	q.ids = q.ids[:last]
	return id, true
}

func (q *workQueue) Size() int {
	return len(q.ids) - q.top
}

func (q *workQueue) Clear() {
	q.ids = nil
	q.top = 0
}

package input

// Queue is a bounded FIFO. Pushes past capacity are dropped.
type Queue[T any] struct {
	buf  []T
	head int
	n    int
}

// NewQueue returns an empty queue holding at most capacity items.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue[T]{buf: make([]T, capacity)}
}

func (q *Queue[T]) Len() int   { return q.n }
func (q *Queue[T]) Cap() int   { return len(q.buf) }
func (q *Queue[T]) Full() bool { return q.n == len(q.buf) }

// Push appends v and reports whether there was room.
func (q *Queue[T]) Push(v T) bool {
	if q.Full() {
		return false
	}
	q.buf[(q.head+q.n)%len(q.buf)] = v
	q.n++
	return true
}

// Pop removes the oldest item.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.n == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return v, true
}

// Clear empties the queue.
func (q *Queue[T]) Clear() {
	var zero T
	for i := range q.buf {
		q.buf[i] = zero
	}
	q.head = 0
	q.n = 0
}

// Snapshot copies the queued items, oldest first.
func (q *Queue[T]) Snapshot() []T {
	out := make([]T, q.n)
	for i := 0; i < q.n; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

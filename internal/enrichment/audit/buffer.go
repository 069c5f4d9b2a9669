package audit

import "sync"

// ringBuffer is a bounded, thread-safe queue of logs.
// When full, the oldest logs are dropped to make room for new ones.
type ringBuffer struct {
	mu       sync.Mutex
	logs     []Log
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int
	dropped  int64
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &ringBuffer{
		logs:     make([]Log, capacity),
		capacity: capacity,
	}
}

// enqueue adds a log and reports whether the oldest one was dropped.
func (b *ringBuffer) enqueue(l Log) (dropped bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
		dropped = true
	}

	b.logs[b.head] = l
	b.head = (b.head + 1) % b.capacity
	b.count++
	return dropped
}

// dequeueBatch removes up to n logs, oldest first.
func (b *ringBuffer) dequeueBatch(n int) []Log {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	result := make([]Log, n)
	for i := range n {
		result[i] = b.logs[b.tail]
		b.logs[b.tail] = Log{}
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return result
}

func (b *ringBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

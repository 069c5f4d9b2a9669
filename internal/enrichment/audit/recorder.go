package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FailureCounter counts lost audit logs by reason.
type FailureCounter interface {
	IncrementAuditFailure(reason string)
}

// Recorder queues logs in memory and hands them to its repositories from a
// single background worker. Record never blocks and never fails.
type Recorder struct {
	repos         []Repository
	buf           *ringBuffer
	batchSize     int
	flushInterval time.Duration
	saveTimeout   time.Duration
	logger        *slog.Logger
	failures      FailureCounter

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// Option configures a Recorder.
type Option func(*Recorder)

func WithLogger(l *slog.Logger) Option { return func(r *Recorder) { r.logger = l } }

func WithFailureCounter(c FailureCounter) Option { return func(r *Recorder) { r.failures = c } }

// WithCapacity bounds the in-memory queue.
func WithCapacity(n int) Option { return func(r *Recorder) { r.buf = newRingBuffer(n) } }

func WithFlushInterval(d time.Duration) Option { return func(r *Recorder) { r.flushInterval = d } }

// NewRecorder starts the background worker. Call Close to drain and stop it.
func NewRecorder(repos []Repository, opts ...Option) *Recorder {
	r := &Recorder{
		repos:         repos,
		buf:           newRingBuffer(0),
		batchSize:     64,
		flushInterval: time.Second,
		saveTimeout:   5 * time.Second,
		logger:        slog.Default(),
		wake:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.run()
	return r
}

// Record queues l. Missing ID and timestamp are filled in.
func (r *Recorder) Record(ctx context.Context, l Log) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.countFailure("closed")
		return
	}

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	if r.buf.enqueue(l) {
		r.countFailure("queue_full")
		r.logger.WarnContext(ctx, "audit queue full, dropped oldest log")
	}
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting logs, flushes what is queued and waits for the worker,
// or until ctx is done.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		close(r.stop)
	})
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued logs.
func (r *Recorder) Pending() int { return r.buf.len() }

func (r *Recorder) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			r.flush()
			return
		case <-r.wake:
			r.flush()
		case <-ticker.C:
			r.flush()
		}
	}
}

func (r *Recorder) flush() {
	for {
		batch := r.buf.dequeueBatch(r.batchSize)
		if len(batch) == 0 {
			return
		}
		for _, l := range batch {
			r.save(l)
		}
	}
}

func (r *Recorder) save(l Log) {
	for _, repo := range r.repos {
		ctx, cancel := context.WithTimeout(context.Background(), r.saveTimeout)
		err := repo.Save(ctx, l)
		cancel()
		if err != nil {
			r.countFailure("store")
			r.logger.Error("failed to persist enrichment audit log",
				"identifier", l.Identifier,
				"audit_id", l.ID,
				"error", err,
			)
		}
	}
}

func (r *Recorder) countFailure(reason string) {
	if r.failures != nil {
		r.failures.IncrementAuditFailure(reason)
	}
}

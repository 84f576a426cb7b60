package authkit

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples auth flows from sink latency: events are queued
// on a channel and drained by a single goroutine. When DropIfFull is set the
// emitter never blocks; dropped events are counted and reported through the
// onDrop hook instead.
type auditDispatcher struct {
	cfg       AuditConfig
	sink      AuditSink
	onDrop    func(total uint64)
	ch        chan AuditEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// newAuditDispatcher returns nil when auditing is disabled; a nil dispatcher
// is safe to use. onDrop, when non-nil, fires only at power-of-two drop
// totals (1, 2, 4, ...) so a sustained overflow cannot flood the hook.
func newAuditDispatcher(cfg AuditConfig, sink AuditSink, onDrop func(total uint64)) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		cfg:    cfg,
		sink:   sink,
		onDrop: onDrop,
		ch:     make(chan AuditEvent, cfg.BufferSize),
		done:   make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			d.drain()
			return
		}
	}
}

// drain flushes events already queued at shutdown without accepting new ones.
func (d *auditDispatcher) drain() {
	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.recordDrop()
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

func (d *auditDispatcher) recordDrop() {
	total := d.dropped.Add(1)
	if d.onDrop != nil && total&(total-1) == 0 {
		d.onDrop(total)
	}
}

// Close drains queued events and stops the dispatch goroutine.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

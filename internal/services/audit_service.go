package services

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/promptshare/authsvc/domain"
)

// AuditDispatcher implements domain.AuditLogger. Events flow through a
// buffered channel into a single worker that appends to the store, so
// recording never blocks or fails the operation that emitted the event.
type AuditDispatcher struct {
	store     domain.AuditStore
	ch        chan *domain.AuditEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closeOnce sync.Once
}

// NewAuditDispatcher creates and starts an audit dispatcher.
func NewAuditDispatcher(store domain.AuditStore, bufferSize int) *AuditDispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	d := &AuditDispatcher{
		store: store,
		ch:    make(chan *domain.AuditEvent, bufferSize),
		done:  make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *AuditDispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case event := <-d.ch:
			d.append(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.append(event)
				default:
					return
				}
			}
		}
	}
}

func (d *AuditDispatcher) append(event *domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.store.Append(ctx, event); err != nil {
		log.Printf("audit append failed for %s: %v", event.EventType, err)
	}
}

// Record implements domain.AuditLogger. A full buffer drops the event
// (counted) rather than blocking the caller.
func (d *AuditDispatcher) Record(event *domain.AuditEvent) {
	if event == nil {
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	select {
	case d.ch <- event:
	case <-d.done:
	default:
		d.dropped.Add(1)
	}
}

// Dropped reports how many events were discarded on a full buffer.
func (d *AuditDispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close drains pending events and stops the worker.
func (d *AuditDispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
	})
}

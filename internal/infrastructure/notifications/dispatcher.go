package notifications

import (
	"log"
	"sync"
	"sync/atomic"
)

type mailJob struct {
	to      string
	subject string
	body    string
}

// Dispatcher wraps a NotificationService with a buffered queue and a
// single worker goroutine so mail delivery is fire-and-forget relative
// to the HTTP response. A full buffer drops the message (and counts the
// drop) rather than blocking the request.
type Dispatcher struct {
	sender    interface{ SendEmail(to, subject, body string) error }
	ch        chan mailJob
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closeOnce sync.Once
}

// NewDispatcher creates and starts a mail dispatcher.
func NewDispatcher(sender interface{ SendEmail(to, subject, body string) error }, bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	d := &Dispatcher{
		sender: sender,
		ch:     make(chan mailJob, bufferSize),
		done:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.ch:
			d.deliver(job)
		case <-d.done:
			for {
				select {
				case job := <-d.ch:
					d.deliver(job)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(job mailJob) {
	if err := d.sender.SendEmail(job.to, job.subject, job.body); err != nil {
		// Delivery failure must not affect the operation that queued
		// the message; the token it carries remains valid.
		log.Printf("mail delivery to %s failed: %v", job.to, err)
	}
}

// SendEmail implements domain.NotificationService. Always returns nil:
// enqueueing cannot fail from the caller's perspective.
func (d *Dispatcher) SendEmail(to, subject, body string) error {
	select {
	case d.ch <- mailJob{to: to, subject: subject, body: body}:
	case <-d.done:
	default:
		d.dropped.Add(1)
		log.Printf("mail queue full, dropped message to %s", to)
	}
	return nil
}

// Dropped reports how many messages were discarded on a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
	})
}

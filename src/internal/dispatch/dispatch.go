package dispatch

import (
	"sync"
	"time"

	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/lixenwraith/log"
)

// Sender delivers events to the collector. Delivery is fire-and-forget
// from the dispatcher's point of view; implementations report nothing
// back to the log path.
type Sender interface {
	Send(event core.Event)
	SendBatch(batch []core.Event)
}

// Dispatcher owns one client instance's pending buffer and its single
// flush timer. Events accumulate until the flush interval elapses, the
// batch limit is reached, or a caller forces delivery; each flush swaps
// the buffer out atomically, so an event lands in exactly one batch.
type Dispatcher struct {
	sender Sender
	logger *log.Logger

	mu       sync.Mutex
	interval time.Duration
	limit    int
	pending  []core.Event
	timer    *time.Timer
	flushSeq uint64 // invalidates stale timer callbacks

	wg sync.WaitGroup // tracks in-flight async deliveries
}

// New creates a dispatcher. A non-positive interval disables buffering:
// every event is handed to the sender on its own.
func New(sender Sender, interval time.Duration, limit int, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Dispatcher{
		sender:   sender,
		interval: interval,
		limit:    limit,
		logger:   logger,
	}
}

// Enqueue admits one normalized event. With buffering disabled the
// event goes straight to the sender. Otherwise it is appended to the
// pending buffer and flushed now when the call demands it (immediate,
// imminent exit, batch limit reached); failing that, the flush timer is
// armed if it is not already running.
//
// With willExit set, delivery happens on the calling goroutine so the
// event reaches the transport before the process terminates.
func (d *Dispatcher) Enqueue(ev core.Event, immediate, willExit bool) {
	d.mu.Lock()

	if d.interval <= 0 {
		d.mu.Unlock()
		if willExit {
			d.sender.Send(ev)
			return
		}
		d.deliverAsync(ev, nil)
		return
	}

	d.pending = append(d.pending, ev)

	if willExit || immediate || len(d.pending) >= d.limit {
		batch := d.swapLocked()
		d.mu.Unlock()
		if willExit {
			d.sender.SendBatch(batch)
			return
		}
		d.deliverAsync(nil, batch)
		return
	}

	if d.timer == nil {
		seq := d.flushSeq
		d.timer = time.AfterFunc(d.interval, func() { d.timerFlush(seq) })
	}
	d.mu.Unlock()
}

// Flush synchronously delivers everything buffered, then waits for any
// in-flight asynchronous deliveries to be handed off.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	batch := d.swapLocked()
	d.mu.Unlock()

	if len(batch) > 0 {
		d.sender.SendBatch(batch)
	}
	d.wg.Wait()
}

// SetThrottle replaces the flush policy. An armed timer keeps its
// original deadline; the new interval applies from the next arming.
func (d *Dispatcher) SetThrottle(interval time.Duration, limit int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interval = interval
	d.limit = limit
}

// Pending reports the number of buffered events.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// swapLocked clears the buffer and any armed timer, returning the
// batch. The flush sequence is bumped first so a stale timer callback
// cannot re-enter the flush path. Caller must hold d.mu.
func (d *Dispatcher) swapLocked() []core.Event {
	d.flushSeq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	batch := d.pending
	d.pending = nil
	return batch
}

func (d *Dispatcher) timerFlush(seq uint64) {
	d.mu.Lock()
	if seq != d.flushSeq {
		// A forced flush already consumed this arming.
		d.mu.Unlock()
		return
	}
	batch := d.swapLocked()
	d.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	d.logger.Debug("msg", "Timer flush",
		"component", "dispatch",
		"batch_size", len(batch))
	d.sender.SendBatch(batch)
}

// deliverAsync hands one event or one batch to the sender off the
// calling goroutine.
func (d *Dispatcher) deliverAsync(ev core.Event, batch []core.Event) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if batch != nil {
			d.sender.SendBatch(batch)
			return
		}
		d.sender.Send(ev)
	}()
}

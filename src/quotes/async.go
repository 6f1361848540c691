package quotes

import (
	"context"
	"sync"

	"stocksdash/src/models"
)

// -----------------------------------------------------------------------------
// Background fetch dispatch. Consumers (the websocket surface, a TUI) call
// FetchAsync and receive the assembled result through the delivery callback
// once the batch completes. Requests sharing a tag are serialized so one
// logical view has at most one outstanding batch; distinct tags overlap
// freely, which is safe because cache writes are last-write-wins.
// -----------------------------------------------------------------------------

// DeliverFunc receives a completed quote update. Whether the update is
// still relevant to render is the receiver's concern; fetches are never
// cancelled mid-flight.
type DeliverFunc func(update *models.MQuoteUpdate)

type dispatcher struct {
	mu   sync.Mutex
	tags map[string]*sync.Mutex
	wg   sync.WaitGroup
}

func (d *dispatcher) tagLock(tag string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tags == nil {
		d.tags = make(map[string]*sync.Mutex)
	}
	if _, ok := d.tags[tag]; !ok {
		d.tags[tag] = &sync.Mutex{}
	}
	return d.tags[tag]
}

// -----------------------------------------------------------------------------

// FetchAsync runs the fetch gate on a background goroutine and posts the
// ordered result through deliver when done. The fetch runs to completion
// and populates the cache even if no one ends up rendering it.
func (e *Engine) FetchAsync(ctx context.Context, symbols []string, forceRefresh bool, tag string, deliver DeliverFunc) {
	e.async.wg.Add(1)
	go func() {
		defer e.async.wg.Done()

		lock := e.async.tagLock(tag)
		lock.Lock()
		defer lock.Unlock()

		data := e.GetQuotes(ctx, symbols, forceRefresh)
		if deliver != nil {
			deliver(&models.MQuoteUpdate{
				Type:      "UPDATE",
				Tag:       tag,
				Quotes:    data,
				Timestamp: e.now().UTC().Unix(),
			})
		}
	}()
}

// -----------------------------------------------------------------------------

// Wait blocks until all in-flight background fetches have completed. The
// shutdown path calls this before flushing so every finished batch is in
// the cache when the flush snapshot is taken.
func (e *Engine) Wait() {
	e.async.wg.Wait()
}

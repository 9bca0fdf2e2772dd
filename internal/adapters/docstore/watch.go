package docstore

import (
	"sync"

	"github.com/ringsidehq/ringside/pkg/metrics"
)

// watchHub fans out change notifications to per-collection subscribers.
// Both store implementations share it; the SQLite store is single-process,
// so an in-process hub is the whole change-feed story.
type watchHub struct {
	mu       sync.Mutex
	nextID   int
	watchers map[string]map[int]chan Change
	buffer   int
}

func newWatchHub(buffer int) *watchHub {
	return &watchHub{
		watchers: make(map[string]map[int]chan Change),
		buffer:   buffer,
	}
}

// subscribe registers a watcher on a collection and returns its channel
// plus a cancel func. Cancelling closes the channel and stops future
// notifications; it never interrupts in-flight work.
func (h *watchHub) subscribe(collection string) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Change, h.buffer)
	if h.watchers[collection] == nil {
		h.watchers[collection] = make(map[int]chan Change)
	}
	h.watchers[collection][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if w, ok := h.watchers[collection][id]; ok {
			delete(h.watchers[collection], id)
			close(w)
		}
	}
	return ch, cancel
}

// notify delivers a change to every subscriber of its collection. A slow
// subscriber with a full buffer misses the notification; recomputation is
// self-healing on the next change, so dropping beats blocking writers.
func (h *watchHub) notify(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.watchers[c.Collection] {
		select {
		case ch <- c:
		default:
			metrics.RecordWatchDropped(c.Collection)
		}
	}
}

// closeAll closes every subscriber channel.
func (h *watchHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for collection, subs := range h.watchers {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
		delete(h.watchers, collection)
	}
}

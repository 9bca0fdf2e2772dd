package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ringsidehq/ringside/pkg/metrics"
)

// Default memstore configuration constants.
const (
	defaultWatchBuffer = 256
)

// MemStore implements Store with in-process maps. It backs tests and the
// dev profile; production uses SQLStore.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	hub         *watchHub
	closed      bool
	now         func() time.Time
	watchBuffer int
}

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithWatchBuffer sets the per-subscriber change feed buffer.
func WithWatchBuffer(n int) MemOption {
	return func(s *MemStore) {
		if n > 0 {
			s.watchBuffer = n
		}
	}
}

// WithClock overrides the timestamp source. Tests use it to control
// arrival order.
func WithClock(now func() time.Time) MemOption {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemStore creates an empty in-memory document store.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		collections: make(map[string]map[string]json.RawMessage),
		now:         time.Now,
		watchBuffer: defaultWatchBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newWatchHub(s.watchBuffer)
	return s
}

// Create assigns a fresh id and creation timestamp and stores the document.
func (s *MemStore) Create(ctx context.Context, collection string, doc any) (string, time.Time, error) {
	fields, err := toFields(doc)
	if err != nil {
		return "", time.Time{}, err
	}

	id := uuid.NewString()
	createdAt := s.now().UTC()
	fields["id"] = id
	fields["createdAt"] = createdAt.Format(time.RFC3339Nano)

	raw, err := json.Marshal(fields)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", time.Time{}, ErrClosed
	}
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	s.collections[collection][id] = raw
	s.mu.Unlock()

	metrics.RecordStoreOp(collection, "create")
	s.hub.notify(Change{
		Collection: collection,
		Type:       ChangePut,
		ID:         id,
		RoomID:     stringField(fields, "roomId"),
		At:         createdAt,
	})
	return id, createdAt, nil
}

// Put replaces an existing document, preserving its id and creation
// timestamp.
func (s *MemStore) Put(ctx context.Context, collection, id string, doc any) error {
	fields, err := toFields(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	existing, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	prev, err := rawFields(existing)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	fields["id"] = id
	fields["createdAt"] = prev["createdAt"]
	raw, err := json.Marshal(fields)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	s.collections[collection][id] = raw
	s.mu.Unlock()

	metrics.RecordStoreOp(collection, "put")
	s.hub.notify(Change{
		Collection: collection,
		Type:       ChangePut,
		ID:         id,
		RoomID:     stringField(fields, "roomId"),
		At:         s.now().UTC(),
	})
	return nil
}

// Get unmarshals the document with the given id into out.
func (s *MemStore) Get(ctx context.Context, collection, id string, out any) error {
	s.mu.RLock()
	raw, ok := s.collections[collection][id]
	closed := s.closed
	s.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	metrics.RecordStoreOp(collection, "get")
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// Query unmarshals every document matching the equality filter into out,
// ordered by creation time ascending then id.
func (s *MemStore) Query(ctx context.Context, collection string, filter Filter, out any) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}

	type candidate struct {
		createdAt string
		id        string
		raw       json.RawMessage
	}
	var matched []candidate
	for id, raw := range s.collections[collection] {
		fields, err := rawFields(raw)
		if err != nil {
			s.mu.RUnlock()
			return err
		}
		if !matches(fields, filter) {
			continue
		}
		matched = append(matched, candidate{
			createdAt: stringField(fields, "createdAt"),
			id:        id,
			raw:       raw,
		})
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].createdAt != matched[j].createdAt {
			return matched[i].createdAt < matched[j].createdAt
		}
		return matched[i].id < matched[j].id
	})

	raws := make([]json.RawMessage, len(matched))
	for i, c := range matched {
		raws[i] = c.raw
	}
	metrics.RecordStoreOp(collection, "query")
	return decodeInto(raws, out)
}

// Delete removes a document by id.
func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	raw, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	delete(s.collections[collection], id)
	s.mu.Unlock()

	fields, _ := rawFields(raw)
	metrics.RecordStoreOp(collection, "delete")
	s.hub.notify(Change{
		Collection: collection,
		Type:       ChangeDelete,
		ID:         id,
		RoomID:     stringField(fields, "roomId"),
		At:         s.now().UTC(),
	})
	return nil
}

// Watch subscribes to the collection's change feed.
func (s *MemStore) Watch(ctx context.Context, collection string) (<-chan Change, func()) {
	return s.hub.subscribe(collection)
}

// Close stops the store and closes all change feeds.
func (s *MemStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.hub.closeAll()
	return nil
}

// toFields flattens a document into its top-level JSON fields.
func toFields(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return rawFields(raw)
}

func rawFields(raw json.RawMessage) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: document must be a JSON object: %w", ErrInvalidDocument, err)
	}
	return fields, nil
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}

// matches applies equality on top-level fields. Filter values are
// normalized through a JSON round-trip so ints compare against decoded
// float64s.
func matches(fields map[string]any, filter Filter) bool {
	for key, want := range filter {
		got, ok := fields[key]
		if !ok {
			return false
		}
		if !jsonEqual(got, want) {
			return false
		}
	}
	return true
}

func jsonEqual(got, want any) bool {
	wb, err := json.Marshal(want)
	if err != nil {
		return false
	}
	gb, err := json.Marshal(got)
	if err != nil {
		return false
	}
	return string(wb) == string(gb)
}

// decodeInto marshals the raw documents as a JSON array and unmarshals
// into out (a pointer to a slice).
func decodeInto(raws []json.RawMessage, out any) error {
	if raws == nil {
		raws = []json.RawMessage{}
	}
	b, err := json.Marshal(raws)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// Package docstore defines the document store port used for all persisted
// collections, plus in-memory and SQLite-backed implementations.
//
// Documents are keyed by server-generated id, carry a server-assigned
// creation timestamp, and are queried by equality on top-level JSON
// fields. Each collection exposes a live change feed so consumers can
// recompute derived views on every write.
package docstore

import (
	"context"
	"time"
)

// Collection names for every persisted record kind.
const (
	CollectionRooms       = "rooms"
	CollectionCompetitors = "competitors"
	CollectionTests       = "tests"
	CollectionEvaluations = "evaluations"
	CollectionUsers       = "users"
)

// Filter selects documents by equality on top-level JSON fields.
type Filter map[string]any

// ChangeType distinguishes writes from deletes on the change feed.
type ChangeType string

// Change feed entry kinds.
const (
	ChangePut    ChangeType = "put"
	ChangeDelete ChangeType = "delete"
)

// Change describes one mutation on a collection. RoomID is lifted from the
// document body when present so consumers can scope recomputation without a
// read-back.
type Change struct {
	Collection string
	Type       ChangeType
	ID         string
	RoomID     string
	At         time.Time
}

// Store provides document persistence for all collections.
//
// Create marshals doc, assigns a fresh id and creation timestamp
// server-side, and returns both; client-supplied ids and timestamps are
// overwritten. Put replaces an existing document in place, preserving its
// id and creation timestamp (admin edits to rooms and templates; never
// evaluations, which are write-once by contract). Query unmarshals every
// match into out, which must be a pointer to a slice; matches come back
// ordered by creation time ascending then id, so repeated reads are
// deterministic. Get returns ErrNotFound for unknown ids. Watch returns a
// change feed for one collection plus a cancel func; cancelling just stops
// future notifications.
type Store interface {
	Create(ctx context.Context, collection string, doc any) (id string, createdAt time.Time, err error)
	Put(ctx context.Context, collection, id string, doc any) error
	Get(ctx context.Context, collection, id string, out any) error
	Query(ctx context.Context, collection string, filter Filter, out any) error
	Delete(ctx context.Context, collection, id string) error
	Watch(ctx context.Context, collection string) (<-chan Change, func())
	Close() error
}

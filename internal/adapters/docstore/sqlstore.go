package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/ringsidehq/ringside/pkg/metrics"
)

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	created_at TEXT NOT NULL,
	body       TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection_created
	ON documents (collection, created_at, id);
`

// filterKeyPattern limits filter keys to plain JSON field names before they
// are interpolated into a json_extract path.
var filterKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// SQLStore implements Store on a single SQLite documents table. Equality
// filters compile to json_extract predicates. The change feed is an
// in-process hub; the deployment profile is single-node, so no cross
// process notification is needed.
type SQLStore struct {
	db          *sql.DB
	hub         *watchHub
	now         func() time.Time
	watchBuffer int
}

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// WithSQLWatchBuffer sets the per-subscriber change feed buffer.
func WithSQLWatchBuffer(n int) SQLOption {
	return func(s *SQLStore) {
		if n > 0 {
			s.watchBuffer = n
		}
	}
}

// WithSQLClock overrides the timestamp source.
func WithSQLClock(now func() time.Time) SQLOption {
	return func(s *SQLStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSQLStore opens (or creates) the SQLite database at dsn and ensures
// the schema exists.
func NewSQLStore(ctx context.Context, dsn string, opts ...SQLOption) (*SQLStore, error) {
	if dsn == "" {
		dsn = "file:ringside.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	s := &SQLStore{
		db:          db,
		now:         time.Now,
		watchBuffer: defaultWatchBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newWatchHub(s.watchBuffer)
	return s, nil
}

// Create assigns a fresh id and creation timestamp and inserts the document.
func (s *SQLStore) Create(ctx context.Context, collection string, doc any) (string, time.Time, error) {
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, created_at, body) VALUES (?, ?, ?, ?)`,
		collection, id, createdAt.Format(time.RFC3339Nano), string(raw),
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("insert %s: %w", collection, err)
	}

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
func (s *SQLStore) Put(ctx context.Context, collection, id string, doc any) error {
	fields, err := toFields(doc)
	if err != nil {
		return err
	}

	var createdAt string
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}

	fields["id"] = id
	fields["createdAt"] = createdAt
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE documents SET body = ? WHERE collection = ? AND id = ?`,
		string(raw), collection, id,
	); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}

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
func (s *SQLStore) Get(ctx context.Context, collection, id string, out any) error {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	metrics.RecordStoreOp(collection, "get")
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// Query unmarshals every document matching the equality filter into out,
// ordered by creation time ascending then id.
func (s *SQLStore) Query(ctx context.Context, collection string, filter Filter, out any) error {
	query := strings.Builder{}
	query.WriteString(`SELECT body FROM documents WHERE collection = ?`)
	args := []any{collection}

	// Stable predicate order keeps query plans and logs reproducible.
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !filterKeyPattern.MatchString(key) {
			return fmt.Errorf("%w: bad key %q", ErrInvalidFilter, key)
		}
		fmt.Fprintf(&query, ` AND json_extract(body, '$.%s') = ?`, key)
		args = append(args, filter[key])
	}
	query.WriteString(` ORDER BY created_at ASC, id ASC`)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var raws []json.RawMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return fmt.Errorf("scan %s: %w", collection, err)
		}
		raws = append(raws, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query %s: %w", collection, err)
	}
	metrics.RecordStoreOp(collection, "query")
	return decodeInto(raws, out)
}

// Delete removes a document by id.
func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	var roomID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT json_extract(body, '$.roomId') FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}

	metrics.RecordStoreOp(collection, "delete")
	s.hub.notify(Change{
		Collection: collection,
		Type:       ChangeDelete,
		ID:         id,
		RoomID:     roomID.String,
		At:         s.now().UTC(),
	})
	return nil
}

// Watch subscribes to the collection's change feed.
func (s *SQLStore) Watch(ctx context.Context, collection string) (<-chan Change, func()) {
	return s.hub.subscribe(collection)
}

// Close closes the database and all change feeds.
func (s *SQLStore) Close() error {
	s.hub.closeAll()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

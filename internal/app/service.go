// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	docstore "github.com/ringsidehq/ringside/internal/adapters/docstore"
	eventqueue "github.com/ringsidehq/ringside/internal/adapters/mq/queue"
	workerpool "github.com/ringsidehq/ringside/internal/adapters/mq/worker"
	"github.com/ringsidehq/ringside/internal/auth"
	"github.com/ringsidehq/ringside/internal/domain/model"
	"github.com/ringsidehq/ringside/internal/domain/ranking"
	"github.com/ringsidehq/ringside/internal/domain/scoring"
	"github.com/ringsidehq/ringside/pkg/logger"
	"github.com/ringsidehq/ringside/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount    = 2
	defaultQueueSize      = 4096
	defaultSnapshotBuffer = 8
)

// Snapshot is one computed leaderboard for a room.
type Snapshot struct {
	RoomID     string             `json:"roomId"`
	Standings  []ranking.Standing `json:"standings"`
	ComputedAt time.Time          `json:"computedAt"`
}

// EvaluationSubmission is a judge's raw submission before scoring. Penalty
// entries are referenced by id; their values are resolved from the template
// at submission time, never taken from the client.
type EvaluationSubmission struct {
	RoomID       string
	TestID       string
	CompetitorID string
	Scores       map[string]float64
	PenaltyIDs   []string
	Notes        string
}

// Service wires the document store, the change-event pipeline and the
// pure scoring/ranking domain into the operations the HTTP API needs.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      docstore.Store
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int

	// Leaderboard snapshots and live subscribers, per room.
	snapshots   map[string]Snapshot
	subscribers map[string]map[int]chan Snapshot
	nextSubID   int

	// State
	started      bool
	stopWatchers []func()

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the document store backing the service. Defaults to an
// in-memory store when unset.
func WithStore(store docstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of rebuild workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the change-event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		snapshots:   make(map[string]Snapshot),
		subscribers: make(map[string]map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the pipeline: store watchers feed the change queue,
// workers drain it and recompute leaderboards.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = docstore.NewMemStore()
		s.logger.Info(ctx, "using in-memory document store")
	}

	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s)
	s.workerPool.Start(ctx)

	// Competitor and evaluation changes both invalidate a room's
	// leaderboard; template and room edits do not move any score.
	for _, collection := range []string{docstore.CollectionCompetitors, docstore.CollectionEvaluations} {
		feed, cancel := s.store.Watch(ctx, collection)
		s.stopWatchers = append(s.stopWatchers, cancel)
		go s.forwardChanges(ctx, feed)
	}

	s.started = true
	s.logger.Info(ctx, "judging service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// forwardChanges pushes store change events into the rebuild queue.
func (s *Service) forwardChanges(ctx context.Context, feed <-chan docstore.Change) {
	for change := range feed {
		if !s.eventQueue.Enqueue(ctx, change) {
			s.logger.Warn(ctx, "change event dropped",
				logger.String("collection", change.Collection),
				logger.String("roomID", change.RoomID),
			)
		}
	}
}

// Stop gracefully shuts down the service. The mutex is released while
// workers drain; they take it again inside Rebuild.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	watchers := s.stopWatchers
	s.stopWatchers = nil
	pool := s.workerPool
	queue := s.eventQueue
	store := s.store
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping judging service...")

	for _, cancel := range watchers {
		cancel()
	}
	if pool != nil {
		pool.Stop()
	}
	if queue != nil {
		_ = queue.Close()
	}
	if store != nil {
		_ = store.Close()
	}

	s.mu.Lock()
	for roomID, subs := range s.subscribers {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
		delete(s.subscribers, roomID)
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "judging service stopped")
}

// Store exposes the underlying document store to collaborators that need
// direct reads (auth user lookups).
func (s *Service) Store() docstore.Store {
	return s.store
}

// --- Rooms ---

// CreateRoom persists a new room owned by the acting admin.
func (s *Service) CreateRoom(ctx context.Context, p auth.Principal, name, description string, judgeIDs []string) (model.Room, error) {
	room := model.Room{
		Name:        name,
		Description: description,
		Active:      true,
		CreatedBy:   p.UID,
		JudgeIDs:    judgeIDs,
	}
	id, createdAt, err := s.store.Create(ctx, docstore.CollectionRooms, room)
	if err != nil {
		return model.Room{}, fmt.Errorf("create room: %w", err)
	}
	room.ID = id
	room.CreatedAt = createdAt
	return room, nil
}

// GetRoom fetches one room by id.
func (s *Service) GetRoom(ctx context.Context, roomID string) (model.Room, error) {
	var room model.Room
	if err := s.store.Get(ctx, docstore.CollectionRooms, roomID, &room); err != nil {
		return model.Room{}, err
	}
	return room, nil
}

// ListRooms returns rooms created by the given uid, or every room when
// creator is empty.
func (s *Service) ListRooms(ctx context.Context, creator string) ([]model.Room, error) {
	filter := docstore.Filter{}
	if creator != "" {
		filter["createdBy"] = creator
	}
	var rooms []model.Room
	if err := s.store.Query(ctx, docstore.CollectionRooms, filter, &rooms); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListRoomsForJudge returns rooms the judge is assigned to. The store only
// filters by equality, so membership is resolved here.
func (s *Service) ListRoomsForJudge(ctx context.Context, judgeID string) ([]model.Room, error) {
	var all []model.Room
	if err := s.store.Query(ctx, docstore.CollectionRooms, nil, &all); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	rooms := make([]model.Room, 0, len(all))
	for _, r := range all {
		if r.HasJudge(judgeID) {
			rooms = append(rooms, r)
		}
	}
	return rooms, nil
}

// UpdateRoom replaces a room's editable fields in place.
func (s *Service) UpdateRoom(ctx context.Context, room model.Room) error {
	if err := s.store.Put(ctx, docstore.CollectionRooms, room.ID, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// --- Templates ---

// CreateTemplate persists a scoring template. MaxScore is creator-supplied;
// when zero it is derived from the options as a convenience.
func (s *Service) CreateTemplate(ctx context.Context, tpl model.TestTemplate) (model.TestTemplate, error) {
	if tpl.Modality != "" && !tpl.Modality.Valid() {
		return model.TestTemplate{}, fmt.Errorf("%w: %s", ErrUnknownModality, tpl.Modality)
	}
	if tpl.MaxScore == 0 {
		tpl.MaxScore = tpl.ComputedMaxScore()
	}
	id, _, err := s.store.Create(ctx, docstore.CollectionTests, tpl)
	if err != nil {
		return model.TestTemplate{}, fmt.Errorf("create template: %w", err)
	}
	tpl.ID = id
	return tpl, nil
}

// GetTemplate fetches one template by id.
func (s *Service) GetTemplate(ctx context.Context, testID string) (model.TestTemplate, error) {
	var tpl model.TestTemplate
	if err := s.store.Get(ctx, docstore.CollectionTests, testID, &tpl); err != nil {
		return model.TestTemplate{}, err
	}
	return tpl, nil
}

// ListTemplates returns templates scoped to a room, or all templates when
// roomID is empty.
func (s *Service) ListTemplates(ctx context.Context, roomID string) ([]model.TestTemplate, error) {
	filter := docstore.Filter{}
	if roomID != "" {
		filter["roomId"] = roomID
	}
	var tpls []model.TestTemplate
	if err := s.store.Query(ctx, docstore.CollectionTests, filter, &tpls); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return tpls, nil
}

// UpdateTemplate replaces a template in place. Edits are permitted even
// when evaluations reference the template; stored final scores are not
// re-derived, so historical results are unaffected.
func (s *Service) UpdateTemplate(ctx context.Context, tpl model.TestTemplate) error {
	if tpl.Modality != "" && !tpl.Modality.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownModality, tpl.Modality)
	}
	if err := s.store.Put(ctx, docstore.CollectionTests, tpl.ID, tpl); err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// DeleteTemplate removes a template. Competitors and evaluations keep
// their stale references; historical results are preserved by design.
func (s *Service) DeleteTemplate(ctx context.Context, testID string) error {
	if err := s.store.Delete(ctx, docstore.CollectionTests, testID); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// --- Competitors ---

// CreateCompetitor registers a handler/dog pair in a room.
func (s *Service) CreateCompetitor(ctx context.Context, c model.Competitor) (model.Competitor, error) {
	id, _, err := s.store.Create(ctx, docstore.CollectionCompetitors, c)
	if err != nil {
		return model.Competitor{}, fmt.Errorf("create competitor: %w", err)
	}
	c.ID = id
	return c, nil
}

// ListCompetitors returns all competitors registered in a room.
func (s *Service) ListCompetitors(ctx context.Context, roomID string) ([]model.Competitor, error) {
	var competitors []model.Competitor
	if err := s.store.Query(ctx, docstore.CollectionCompetitors, docstore.Filter{"roomId": roomID}, &competitors); err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	return competitors, nil
}

// DeleteCompetitor removes a competitor registration.
func (s *Service) DeleteCompetitor(ctx context.Context, competitorID string) error {
	if err := s.store.Delete(ctx, docstore.CollectionCompetitors, competitorID); err != nil {
		return fmt.Errorf("delete competitor: %w", err)
	}
	return nil
}

// --- Evaluations ---

// RecordEvaluation computes the final score for a judge submission against
// the referenced template and persists the evaluation. The stored
// finalScore is always the server-side recomputation; write failures
// propagate unchanged so the caller can surface "not saved".
func (s *Service) RecordEvaluation(ctx context.Context, p auth.Principal, sub EvaluationSubmission) (model.Evaluation, error) {
	room, err := s.GetRoom(ctx, sub.RoomID)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("resolve room: %w", err)
	}
	if !p.IsAdmin() && !room.HasJudge(p.UID) {
		return model.Evaluation{}, fmt.Errorf("%w: judge %s in room %s", ErrNotAssigned, p.UID, sub.RoomID)
	}

	tpl, err := s.GetTemplate(ctx, sub.TestID)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("resolve template: %w", err)
	}

	// Penalty values come from the template, not the client. Unknown
	// penalty ids are dropped the same way unknown criterion ids are.
	applied := make([]model.AppliedPenalty, 0, len(sub.PenaltyIDs))
	for _, pid := range sub.PenaltyIDs {
		for _, opt := range tpl.Penalties {
			if opt.ID == pid {
				applied = append(applied, model.AppliedPenalty{PenaltyID: pid, Value: opt.Value})
				break
			}
		}
	}

	ev := model.Evaluation{
		RoomID:       sub.RoomID,
		TestID:       sub.TestID,
		CompetitorID: sub.CompetitorID,
		JudgeID:      p.UID,
		Scores:       sub.Scores,
		Penalties:    applied,
		FinalScore:   scoring.FinalScore(&tpl, sub.Scores, applied),
		Status:       model.StatusNormal,
		Notes:        sub.Notes,
	}
	id, createdAt, err := s.store.Create(ctx, docstore.CollectionEvaluations, ev)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("save evaluation: %w", err)
	}
	ev.ID = id
	ev.CreatedAt = createdAt

	metrics.RecordEvaluation(string(model.StatusNormal))
	return ev, nil
}

// RecordDidNotParticipate records a DNS outcome for a competitor/test: an
// evaluation with empty scores and penalties and a final score of 0,
// bypassing the compute step entirely.
func (s *Service) RecordDidNotParticipate(ctx context.Context, p auth.Principal, roomID, testID, competitorID, notes string) (model.Evaluation, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("resolve room: %w", err)
	}
	if !p.IsAdmin() && !room.HasJudge(p.UID) {
		return model.Evaluation{}, fmt.Errorf("%w: judge %s in room %s", ErrNotAssigned, p.UID, roomID)
	}

	ev := model.Evaluation{
		RoomID:       roomID,
		TestID:       testID,
		CompetitorID: competitorID,
		JudgeID:      p.UID,
		Scores:       map[string]float64{},
		Penalties:    []model.AppliedPenalty{},
		FinalScore:   0,
		Status:       model.StatusDidNotParticipate,
		Notes:        notes,
	}
	id, createdAt, err := s.store.Create(ctx, docstore.CollectionEvaluations, ev)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("save evaluation: %w", err)
	}
	ev.ID = id
	ev.CreatedAt = createdAt

	metrics.RecordEvaluation(string(model.StatusDidNotParticipate))
	return ev, nil
}

// ListEvaluations returns evaluations filtered by room and optionally by
// competitor.
func (s *Service) ListEvaluations(ctx context.Context, roomID, competitorID string) ([]model.Evaluation, error) {
	filter := docstore.Filter{}
	if roomID != "" {
		filter["roomId"] = roomID
	}
	if competitorID != "" {
		filter["competitorId"] = competitorID
	}
	var evs []model.Evaluation
	if err := s.store.Query(ctx, docstore.CollectionEvaluations, filter, &evs); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evs, nil
}

// DeleteEvaluation is the administrative escape hatch; the normal flow
// never mutates or deletes an evaluation.
func (s *Service) DeleteEvaluation(ctx context.Context, evaluationID string) error {
	if err := s.store.Delete(ctx, docstore.CollectionEvaluations, evaluationID); err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	metrics.RecordEvaluationDeleted()
	return nil
}

// --- Leaderboard ---

// Rebuild recomputes a room's leaderboard from a fresh fetch of its
// competitors and evaluations, caches the snapshot and fans it out to
// live subscribers. The competitor and evaluation snapshots are read
// back-to-back, not transactionally; a momentary skew between them is
// accepted and corrected by the next change event.
func (s *Service) Rebuild(ctx context.Context, roomID string) error {
	competitors, err := s.ListCompetitors(ctx, roomID)
	if err != nil {
		return err
	}
	evaluations, err := s.ListEvaluations(ctx, roomID, "")
	if err != nil {
		return err
	}

	snapshot := Snapshot{
		RoomID:     roomID,
		Standings:  ranking.BuildLeaderboard(competitors, evaluations),
		ComputedAt: time.Now().UTC(),
	}

	// Sends are non-blocking, so fanning out under the lock is cheap and
	// cannot race a subscriber cancel closing its channel.
	s.mu.Lock()
	s.snapshots[roomID] = snapshot
	for _, ch := range s.subscribers[roomID] {
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber; it will catch up on the next rebuild.
		}
	}
	s.mu.Unlock()
	return nil
}

// Leaderboard returns the current snapshot for a room, computing it on
// demand when no change has populated the cache yet.
func (s *Service) Leaderboard(ctx context.Context, roomID string) (Snapshot, error) {
	s.mu.RLock()
	snapshot, ok := s.snapshots[roomID]
	s.mu.RUnlock()
	if ok {
		return snapshot, nil
	}

	if err := s.Rebuild(ctx, roomID); err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	snapshot = s.snapshots[roomID]
	s.mu.RUnlock()
	return snapshot, nil
}

// SubscribeLeaderboard registers a live subscriber for a room's snapshots.
// Cancelling stops future deliveries; it never interrupts an in-flight
// rebuild.
func (s *Service) SubscribeLeaderboard(roomID string) (<-chan Snapshot, func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Snapshot, defaultSnapshotBuffer)
	if s.subscribers[roomID] == nil {
		s.subscribers[roomID] = make(map[int]chan Snapshot)
	}
	s.subscribers[roomID][id] = ch
	count := s.subscriberCountLocked()
	s.mu.Unlock()
	metrics.UpdateStreamClients(count)

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subscribers[roomID][id]; ok {
			delete(s.subscribers[roomID], id)
			close(sub)
		}
		count := s.subscriberCountLocked()
		s.mu.Unlock()
		metrics.UpdateStreamClients(count)
	}
	return ch, cancel
}

func (s *Service) subscriberCountLocked() int {
	var n int
	for _, subs := range s.subscribers {
		n += len(subs)
	}
	return n
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"rooms":       len(s.snapshots),
		"subscribers": s.subscriberCountLocked(),
	}
	if s.started && s.eventQueue != nil {
		stats["queueLength"] = s.eventQueue.Len(context.Background())
	}
	return stats
}

package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/practix/internal/clock"
	"github.com/abhisek/practix/internal/logger"
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/topicgraph"
)

// LocationResolver returns the timezone a user's calendar days are counted in.
type LocationResolver interface {
	UserLocation(ctx context.Context, userID string) *time.Location
}

// Tracker maintains per-(user, topic) progress.
type Tracker struct {
	graph  *topicgraph.Graph
	repo   store.ProgressRepo
	policy Policy
	clock  clock.Clock
	locs   LocationResolver
	log    *logger.Logger
}

// NewTracker creates a Tracker. locs may be nil, in which case days are
// counted in UTC.
func NewTracker(graph *topicgraph.Graph, repo store.ProgressRepo, policy Policy, clk clock.Clock, locs LocationResolver, log *logger.Logger) *Tracker {
	if clk == nil {
		clk = clock.System{}
	}
	return &Tracker{
		graph:  graph,
		repo:   repo,
		policy: policy,
		clock:  clk,
		locs:   locs,
		log:    logger.OrNop(log),
	}
}

// Policy returns the mastery policy in use.
func (t *Tracker) Policy() Policy { return t.policy }

// RecordAttempt applies one answered attempt to the user's topic progress
// and returns the updated snapshot. Counters are incremented in the
// database; status and mastery are then recomputed from the stored values.
func (t *Tracker) RecordAttempt(ctx context.Context, userID, topicID string, correct bool) (TopicProgress, error) {
	if !t.graph.Has(topicID) {
		return TopicProgress{}, fmt.Errorf("record attempt: unknown topic %q", topicID)
	}

	now := t.clock.Now()
	day := clock.LocalDate(now, t.location(ctx, userID))
	rec, err := t.repo.IncrementProgress(ctx, userID, topicID, correct, day, now)
	if err != nil {
		return TopicProgress{}, fmt.Errorf("save progress: %w", err)
	}
	tp := fromRecord(*rec)

	prev, prevMastery := tp.Status, tp.Mastery
	t.policy.Apply(&tp)

	if tp.Status != prev || tp.Mastery != prevMastery {
		if err := t.repo.SetProgressStatus(ctx, userID, topicID, string(tp.Status), tp.Mastery); err != nil {
			return TopicProgress{}, fmt.Errorf("save progress status: %w", err)
		}
	}
	if prev != tp.Status {
		t.log.Info("topic status changed",
			"user", userID, "topic", topicID, "from", prev, "to", tp.Status, "mastery", tp.Mastery)
	}
	return tp, nil
}

// Snapshot returns progress for every topic in the graph. Topics the user
// never touched are not_started with mastery 0. Persistence failures are
// logged and yield the all-default map so practice can continue.
func (t *Tracker) Snapshot(ctx context.Context, userID string) map[string]TopicProgress {
	snap := make(map[string]TopicProgress, t.graph.Len())
	for _, tp := range t.graph.Topics() {
		snap[tp.ID] = notStarted(userID, tp.ID)
	}

	recs, err := t.repo.ListProgress(ctx, userID)
	if err != nil {
		t.log.Error("load progress snapshot failed, using defaults", "user", userID, "error", err)
		return snap
	}
	for _, rec := range recs {
		if !t.graph.Has(rec.TopicID) {
			continue
		}
		tp := fromRecord(rec)
		// Thresholds may have changed since the record was written.
		t.policy.Apply(&tp)
		snap[rec.TopicID] = tp
	}
	return snap
}

func (t *Tracker) location(ctx context.Context, userID string) *time.Location {
	if t.locs == nil {
		return time.UTC
	}
	if loc := t.locs.UserLocation(ctx, userID); loc != nil {
		return loc
	}
	return time.UTC
}

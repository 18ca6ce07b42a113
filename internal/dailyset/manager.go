// Package dailyset manages the lifecycle of daily sets and practice
// sessions: creation, answer submission and completion rewards.
package dailyset

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/practix/internal/clock"
	"github.com/abhisek/practix/internal/composer"
	"github.com/abhisek/practix/internal/content"
	"github.com/abhisek/practix/internal/logger"
	"github.com/abhisek/practix/internal/metrics"
	"github.com/abhisek/practix/internal/objectstore"
	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/vision"
)

var tracer = otel.Tracer("github.com/abhisek/practix/internal/dailyset")

// Resolver turns composed requests into problems.
type Resolver interface {
	ResolveAll(ctx context.Context, reqs []content.Request, locale string) ([]problemgen.Problem, content.Report)
}

// Locker serializes set creation for one key across instances. release
// must be safe to call once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Config holds lifecycle settings.
type Config struct {
	// Layout is used for users without a daily goal.
	Layout composer.Layout `mapstructure:"layout"`

	// PracticeSize is the default number of problems in a practice session.
	PracticeSize int `mapstructure:"practice_size"`
}

// recentSetWindow is how many of the user's latest sets feed question
// deduplication.
const recentSetWindow = 7

// DefaultConfig returns the default lifecycle settings.
func DefaultConfig() Config {
	return Config{Layout: composer.DefaultLayout(), PracticeSize: 5}
}

// Deps are the collaborators of a Manager. Analyzer, Images and Locker are
// optional.
type Deps struct {
	Sets     store.SetRepo
	Attempts store.AttemptRepo
	Tracker  *progress.Tracker
	Composer *composer.Composer
	Resolver Resolver
	Ledger   *rewards.Ledger
	Analyzer vision.Analyzer
	Images   objectstore.Resolver
	Locker   Locker
	Clock    clock.Clock
	Log      *logger.Logger
}

// Manager creates sets and accepts answers.
type Manager struct {
	sets     store.SetRepo
	attempts store.AttemptRepo
	tracker  *progress.Tracker
	composer *composer.Composer
	resolver Resolver
	ledger   *rewards.Ledger
	analyzer vision.Analyzer
	images   objectstore.Resolver
	locker   Locker
	clock    clock.Clock
	log      *logger.Logger
	cfg      Config

	// creating collapses concurrent GetOrCreate calls for one user and day.
	creating singleflight.Group
}

// NewManager creates a Manager.
func NewManager(d Deps, cfg Config) *Manager {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if cfg.PracticeSize <= 0 {
		cfg.PracticeSize = DefaultConfig().PracticeSize
	}
	if cfg.Layout.Validate() != nil {
		cfg.Layout = composer.DefaultLayout()
	}
	return &Manager{
		sets:     d.Sets,
		attempts: d.Attempts,
		tracker:  d.Tracker,
		composer: d.Composer,
		resolver: d.Resolver,
		ledger:   d.Ledger,
		analyzer: d.Analyzer,
		images:   d.Images,
		locker:   d.Locker,
		clock:    d.Clock,
		log:      logger.OrNop(d.Log).With("component", "dailyset"),
		cfg:      cfg,
	}
}

// Today returns the user's current calendar date.
func (m *Manager) Today(ctx context.Context, userID string) string {
	return clock.LocalDate(m.clock.Now(), m.ledger.UserLocation(ctx, userID))
}

// GetOrCreate returns the user's set for today, composing and persisting
// it on first request. At most one daily set exists per user and date.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) (_ *Set, err error) {
	ctx, span := tracer.Start(ctx, "dailyset.GetOrCreate", trace.WithAttributes(attribute.String("user", userID)))
	defer endSpan(span, &err)

	today := m.Today(ctx, userID)
	span.SetAttributes(attribute.String("date", today))

	existing, err := m.sets.FindDailySet(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("find daily set: %w", err)
	}
	if existing != nil {
		return setFromRecord(existing), nil
	}

	// The creation is shared by every waiter and must not inherit the
	// first caller's cancellation. Each caller still honors its own ctx.
	ch := m.creating.DoChan(userID+"|"+today, func() (any, error) {
		return m.createDaily(context.WithoutCancel(ctx), userID, today)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Set), nil
	}
}

func (m *Manager) createDaily(ctx context.Context, userID, today string) (*Set, error) {
	if m.locker != nil {
		release, err := m.locker.Acquire(ctx, "practix:daily:"+userID+":"+today)
		if err != nil {
			m.log.Warn("daily set lock unavailable, relying on unique index", "user", userID, "error", err)
		} else {
			defer release()
		}
	}

	// A concurrent request may have finished while we waited.
	if existing, err := m.sets.FindDailySet(ctx, userID, today); err != nil {
		return nil, fmt.Errorf("find daily set: %w", err)
	} else if existing != nil {
		return setFromRecord(existing), nil
	}

	profile, err := m.ledger.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	layout := m.cfg.Layout
	if profile.DailyGoal > 0 {
		layout = composer.LayoutForTotal(profile.DailyGoal)
	}

	comp, err := m.composer.Compose(m.tracker.Snapshot(ctx, userID), layout, "")
	if err != nil {
		return nil, fmt.Errorf("compose daily set: %w", err)
	}
	reqs := content.RequestsFrom(comp.Requests, profile.Locale, m.recentQuestions(ctx, userID))
	problems, report := m.resolver.ResolveAll(ctx, reqs, profile.Locale)

	// Re-check before persisting: generation is slow and another instance
	// may have won meanwhile.
	if existing, err := m.sets.FindDailySet(ctx, userID, today); err != nil {
		return nil, fmt.Errorf("find daily set: %w", err)
	} else if existing != nil {
		metrics.DuplicateSetsSuppressed.Inc()
		m.log.Info("discarding duplicate daily set", "user", userID, "date", today)
		return setFromRecord(existing), nil
	}

	set := &Set{
		ID:             uuid.NewString(),
		UserID:         userID,
		Kind:           KindDaily,
		Date:           today,
		Problems:       problems,
		FocusTopicID:   comp.Focus.ID,
		FocusTopicName: comp.Focus.Name,
		CreatedAt:      m.clock.Now(),
	}
	if err := m.sets.CreateSet(ctx, setToRecord(set)); err != nil {
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("create daily set: %w", err)
		}
		existing, ferr := m.sets.FindDailySet(ctx, userID, today)
		if ferr != nil || existing == nil {
			return nil, fmt.Errorf("create daily set: %w", err)
		}
		metrics.DuplicateSetsSuppressed.Inc()
		m.log.Info("daily set created concurrently, returning existing", "user", userID, "date", today)
		return setFromRecord(existing), nil
	}

	metrics.SetsCreated.WithLabelValues(string(KindDaily)).Inc()
	m.log.Info("daily set created",
		"user", userID, "date", today, "focus", comp.Focus.ID, "layout", layout.String(),
		"generated", report.Generated, "bank", report.Bank, "placeholder", report.Placeholder)
	return set, nil
}

// StartPractice creates an on-demand practice session on one topic. n <= 0
// uses the configured default size.
func (m *Manager) StartPractice(ctx context.Context, userID, topicID string, n int) (_ *Set, err error) {
	ctx, span := tracer.Start(ctx, "dailyset.StartPractice", trace.WithAttributes(
		attribute.String("user", userID),
		attribute.String("topic", topicID),
	))
	defer endSpan(span, &err)

	if n <= 0 {
		n = m.cfg.PracticeSize
	}
	reqs, err := m.composer.ComposePractice(topicID, n)
	if err != nil {
		return nil, err
	}
	profile, err := m.ledger.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	problems, _ := m.resolver.ResolveAll(ctx, content.RequestsFrom(reqs, profile.Locale, m.recentQuestions(ctx, userID)), profile.Locale)

	set := &Set{
		ID:             uuid.NewString(),
		UserID:         userID,
		Kind:           KindPractice,
		Date:           m.Today(ctx, userID),
		Problems:       problems,
		FocusTopicID:   reqs[0].Topic.ID,
		FocusTopicName: reqs[0].Topic.Name,
		CreatedAt:      m.clock.Now(),
	}
	if err := m.sets.CreateSet(ctx, setToRecord(set)); err != nil {
		return nil, fmt.Errorf("create practice set: %w", err)
	}
	metrics.SetsCreated.WithLabelValues(string(KindPractice)).Inc()
	m.log.Info("practice set created", "user", userID, "topic", topicID, "problems", len(problems))
	return set, nil
}

// Set returns one of the user's sets.
func (m *Manager) Set(ctx context.Context, userID, setID string) (*Set, error) {
	rec, err := m.loadSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	return setFromRecord(rec), nil
}

// Attempts returns the attempts made on one of the user's sets.
func (m *Manager) Attempts(ctx context.Context, userID, setID string) ([]Attempt, error) {
	if _, err := m.loadSet(ctx, userID, setID); err != nil {
		return nil, err
	}
	recs, err := m.attempts.ListAttempts(ctx, userID, setID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]Attempt, len(recs))
	for i := range recs {
		out[i] = attemptFromRecord(&recs[i])
	}
	return out, nil
}

// History returns the user's most recent sets, newest first.
func (m *Manager) History(ctx context.Context, userID string, limit int) ([]*Set, error) {
	recs, err := m.sets.ListSets(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	out := make([]*Set, len(recs))
	for i := range recs {
		out[i] = setFromRecord(&recs[i])
	}
	return out, nil
}

// recentQuestions groups the questions of the user's latest sets by topic,
// oldest first. Placeholders are skipped. A failed lookup only disables
// deduplication.
func (m *Manager) recentQuestions(ctx context.Context, userID string) map[string][]string {
	recs, err := m.sets.ListSets(ctx, userID, recentSetWindow)
	if err != nil {
		m.log.Warn("recent sets unavailable, generating without dedup", "user", userID, "error", err)
		return nil
	}
	out := make(map[string][]string)
	for i := len(recs) - 1; i >= 0; i-- {
		for _, p := range recs[i].Problems {
			if p.Question == "" || p.Source == string(problemgen.SourcePlaceholder) {
				continue
			}
			out[p.TopicID] = append(out[p.TopicID], p.Question)
		}
	}
	return out
}

func (m *Manager) loadSet(ctx context.Context, userID, setID string) (*store.SetRecord, error) {
	rec, err := m.sets.GetSet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("load set: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrSetNotFound, setID)
	}
	if rec.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, setID)
	}
	return rec, nil
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}

// Package composer decides which topics and difficulties make up a set.
package composer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/topicgraph"
)

// ErrUnknownTopic is returned when a requested topic is not in the graph.
var ErrUnknownTopic = errors.New("unknown topic")

// ErrInvalidSize is returned for a practice size outside 1..MaxProblems.
var ErrInvalidSize = errors.New("invalid practice size")

// DefaultReviewThreshold is the mastery score at which a topic is
// considered mastered enough to review.
const DefaultReviewThreshold = 60

// Request asks the content resolver for one problem.
type Request struct {
	Topic      topicgraph.Topic
	Difficulty topicgraph.Difficulty
	Slot       problemgen.SlotKind
}

// Composition is the outcome of composing a set.
type Composition struct {
	Focus      topicgraph.Topic
	Review     topicgraph.Topic
	Foundation topicgraph.Topic

	// Requests are in slot order: review, core, foundation, challenge.
	Requests []Request
}

// Composer selects topics for sets. It is safe for concurrent use.
type Composer struct {
	graph           *topicgraph.Graph
	reviewThreshold int

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Composer.
type Option func(*Composer)

// WithReviewThreshold sets the minimum mastery score for review topics.
func WithReviewThreshold(score int) Option {
	return func(c *Composer) { c.reviewThreshold = score }
}

// New creates a Composer. A nil rng uses a randomly seeded source.
func New(graph *topicgraph.Graph, rng *rand.Rand, opts ...Option) *Composer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	c := &Composer{graph: graph, reviewThreshold: DefaultReviewThreshold, rng: rng}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose selects the focus, review and foundation topics from snap and
// emits layout.Total() requests. A non-empty focusOverride replaces the
// focus selection.
func (c *Composer) Compose(snap map[string]progress.TopicProgress, layout Layout, focusOverride string) (Composition, error) {
	if err := layout.Validate(); err != nil {
		return Composition{}, err
	}

	var focus topicgraph.Topic
	if focusOverride != "" {
		t, ok := c.graph.Topic(focusOverride)
		if !ok {
			return Composition{}, fmt.Errorf("%w: %q", ErrUnknownTopic, focusOverride)
		}
		focus = t
	} else {
		focus = c.selectFocus(snap)
	}

	c.mu.Lock()
	review := c.selectReview(snap)
	foundation := c.selectFoundation(focus)
	c.mu.Unlock()

	reqs := make([]Request, 0, layout.Total())
	emit := func(n int, t topicgraph.Topic, d topicgraph.Difficulty, slot problemgen.SlotKind) {
		for range n {
			reqs = append(reqs, Request{Topic: t, Difficulty: t.ClosestDifficulty(d), Slot: slot})
		}
	}
	emit(layout.Review, review, topicgraph.Easy, problemgen.SlotReview)
	emit(layout.Core, focus, topicgraph.Medium, problemgen.SlotCore)
	emit(layout.Foundation, foundation, topicgraph.Easy, problemgen.SlotFoundation)
	emit(layout.Challenge, focus, topicgraph.Hard, problemgen.SlotChallenge)

	return Composition{Focus: focus, Review: review, Foundation: foundation, Requests: reqs}, nil
}

// ComposePractice emits n requests for a single topic, spread across the
// difficulties the topic supports and shuffled.
func (c *Composer) ComposePractice(topicID string, n int) ([]Request, error) {
	t, ok := c.graph.Topic(topicID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topicID)
	}
	if n < 1 || n > MaxProblems {
		return nil, fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidSize, MaxProblems, n)
	}

	diffs := t.Difficulties
	if len(diffs) == 0 {
		diffs = topicgraph.AllDifficulties()
	}
	reqs := make([]Request, n)
	for i := range reqs {
		reqs[i] = Request{Topic: t, Difficulty: diffs[i%len(diffs)], Slot: problemgen.SlotPractice}
	}

	c.mu.Lock()
	c.rng.Shuffle(len(reqs), func(i, j int) { reqs[i], reqs[j] = reqs[j], reqs[i] })
	c.mu.Unlock()
	return reqs, nil
}

// selectFocus returns the first in-progress topic in topological order,
// else the first not-started one, else the default topic.
func (c *Composer) selectFocus(snap map[string]progress.TopicProgress) topicgraph.Topic {
	order := c.graph.TopologicalOrder()
	for _, want := range []progress.Status{progress.StatusInProgress, progress.StatusNotStarted} {
		for _, t := range order {
			if statusOf(snap, t.ID) == want {
				return t
			}
		}
	}
	return c.graph.DefaultTopic()
}

// selectReview prefers the least recently practiced topic with mastery at
// or above the threshold. Never-practiced topics sort first and ties go to
// the lower mastery. Without candidates it picks a random touched topic.
// Callers hold c.mu.
func (c *Composer) selectReview(snap map[string]progress.TopicProgress) topicgraph.Topic {
	var candidates []progress.TopicProgress
	var touched []string
	for _, t := range c.graph.TopologicalOrder() {
		p, ok := snap[t.ID]
		if !ok {
			continue
		}
		if p.Mastery >= c.reviewThreshold {
			candidates = append(candidates, p)
		}
		if p.Touched() {
			touched = append(touched, t.ID)
		}
	}

	if len(candidates) > 0 {
		slices.SortStableFunc(candidates, func(a, b progress.TopicProgress) int {
			switch {
			case a.LastPracticedAt == nil && b.LastPracticedAt != nil:
				return -1
			case a.LastPracticedAt != nil && b.LastPracticedAt == nil:
				return 1
			case a.LastPracticedAt != nil && b.LastPracticedAt != nil && !a.LastPracticedAt.Equal(*b.LastPracticedAt):
				return a.LastPracticedAt.Compare(*b.LastPracticedAt)
			}
			return a.Mastery - b.Mastery
		})
		t, _ := c.graph.Topic(candidates[0].TopicID)
		return t
	}

	if len(touched) > 0 {
		t, _ := c.graph.Topic(touched[c.rng.IntN(len(touched))])
		return t
	}
	return c.graph.DefaultTopic()
}

// selectFoundation picks a random direct prerequisite of focus, or a random
// foundational topic when focus has none. Callers hold c.mu.
func (c *Composer) selectFoundation(focus topicgraph.Topic) topicgraph.Topic {
	pool := c.graph.Prerequisites(focus.ID)
	if len(pool) == 0 {
		pool = c.graph.FoundationTopics()
	}
	if len(pool) == 0 {
		return focus
	}
	return pool[c.rng.IntN(len(pool))]
}

func statusOf(snap map[string]progress.TopicProgress, id string) progress.Status {
	if p, ok := snap[id]; ok {
		return p.Status
	}
	return progress.StatusNotStarted
}

package content

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/practix/internal/composer"
	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/topicgraph"
)

type memBank struct {
	mu        sync.Mutex
	exercises []store.ExerciseRecord
	queries   [][]string
	err       error
}

func (b *memBank) Query(_ context.Context, topicID string, difficulty topicgraph.Difficulty, excludeIDs []string, limit int) ([]store.ExerciseRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, slices.Clone(excludeIDs))
	if b.err != nil {
		return nil, b.err
	}
	var out []store.ExerciseRecord
	for _, e := range b.exercises {
		if e.TopicID != topicID || e.Difficulty != string(difficulty) || slices.Contains(excludeIDs, e.ID) {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b store.ExerciseRecord) int { return a.UsageCount - b.UsageCount })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (b *memBank) IncrementUsage(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.exercises {
		if b.exercises[i].ID == id {
			b.exercises[i].UsageCount++
		}
	}
	return nil
}

func (b *memBank) usage(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.exercises {
		if e.ID == id {
			return e.UsageCount
		}
	}
	return -1
}

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func testTopic(t *testing.T, id string) topicgraph.Topic {
	t.Helper()
	g, err := topicgraph.Default()
	require.NoError(t, err)
	topic, ok := g.Topic(id)
	require.True(t, ok, "topic %s", id)
	return topic
}

func failingGenerator(calls *atomic.Int32) problemgen.Generator {
	return problemgen.GeneratorFunc(func(context.Context, problemgen.GenerateInput) (*problemgen.Generated, error) {
		calls.Add(1)
		return nil, errors.New("provider down")
	})
}

func okGenerator() problemgen.Generator {
	var n atomic.Int32
	return problemgen.GeneratorFunc(func(_ context.Context, in problemgen.GenerateInput) (*problemgen.Generated, error) {
		i := n.Add(1)
		return &problemgen.Generated{
			Question:         fmt.Sprintf("%s question %d", in.Topic.ID, i),
			Answer:           "4",
			AnswerType:       problemgen.AnswerTypeInteger,
			Steps:            []string{"2 + 2 = 4"},
			EstimatedMinutes: 2,
		}, nil
	})
}

func TestResolve_Generated(t *testing.T) {
	sleeps := &recordedSleeps{}
	r := New(okGenerator(), nil, rewards.DefaultConfig(), DefaultConfig(), nil, WithSleep(sleeps.sleep))
	topic := testTopic(t, "fraction-basics")

	p, prov := r.Resolve(context.Background(), Request{Topic: topic, Difficulty: topicgraph.Medium, Slot: problemgen.SlotCore}, nil)

	assert.Equal(t, problemgen.SourceGenerated, prov.Source)
	assert.Equal(t, 1, prov.Attempts)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, topic.ID, p.TopicID)
	assert.Equal(t, topic.Name, p.TopicName)
	assert.Equal(t, problemgen.SlotCore, p.Slot)
	assert.Equal(t, 15, p.XPReward)
	assert.Empty(t, sleeps.delays)
}

func TestResolve_RetriesWithBackoffThenBank(t *testing.T) {
	var calls atomic.Int32
	sleeps := &recordedSleeps{}
	bank := &memBank{exercises: []store.ExerciseRecord{
		{ID: "ex-1", TopicID: "angles", Difficulty: "easy", Question: "Name a 90° angle.", Answer: "right", AnswerType: "text", Steps: []string{"90° is a right angle."}},
	}}
	r := New(failingGenerator(&calls), bank, rewards.DefaultConfig(), DefaultConfig(), nil, WithSleep(sleeps.sleep))

	p, prov := r.Resolve(context.Background(), Request{Topic: testTopic(t, "angles"), Difficulty: topicgraph.Easy}, nil)
	r.Close()

	assert.Equal(t, int32(4), calls.Load(), "one attempt plus three retries")
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, sleeps.delays)
	assert.Equal(t, problemgen.SourceBank, prov.Source)
	assert.Equal(t, 4, prov.Attempts)
	assert.Equal(t, "ex-1", p.SourceRef)
	assert.Equal(t, "right", p.Answer)
	assert.NotEqual(t, "ex-1", p.ID, "problem IDs are fresh, the exercise ID is kept as source ref")
	assert.Equal(t, 1, bank.usage("ex-1"))
}

func TestResolve_NonRetryableValidationStopsEarly(t *testing.T) {
	var calls atomic.Int32
	gen := problemgen.GeneratorFunc(func(context.Context, problemgen.GenerateInput) (*problemgen.Generated, error) {
		calls.Add(1)
		return nil, &problemgen.ValidationError{Validator: "structural", Message: "bad"}
	})
	sleeps := &recordedSleeps{}
	r := New(gen, nil, rewards.DefaultConfig(), DefaultConfig(), nil, WithSleep(sleeps.sleep))

	_, prov := r.Resolve(context.Background(), Request{Topic: testTopic(t, "angles"), Difficulty: topicgraph.Easy}, nil)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, problemgen.SourcePlaceholder, prov.Source)
}

func TestResolve_CancelledContextStopsRetrying(t *testing.T) {
	var calls atomic.Int32
	r := New(failingGenerator(&calls), nil, rewards.DefaultConfig(), DefaultConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, prov := r.Resolve(ctx, Request{Topic: testTopic(t, "angles"), Difficulty: topicgraph.Easy}, nil)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, problemgen.SourcePlaceholder, prov.Source)
	assert.NotEmpty(t, p.Question)
}

func TestResolve_BankErrorFallsToPlaceholder(t *testing.T) {
	bank := &memBank{err: errors.New("db locked")}
	r := New(nil, bank, rewards.DefaultConfig(), DefaultConfig(), nil)

	p, prov := r.Resolve(context.Background(), Request{Topic: testTopic(t, "volume"), Difficulty: topicgraph.Hard}, nil)

	assert.Equal(t, problemgen.SourcePlaceholder, prov.Source)
	assert.Equal(t, 20, p.XPReward)
}

func TestResolveAll_FailingGeneratorEmptyBank(t *testing.T) {
	g, err := topicgraph.Default()
	require.NoError(t, err)
	c := composer.New(g, nil)
	comp, err := c.Compose(nil, composer.LayoutForTotal(10), "")
	require.NoError(t, err)

	var calls atomic.Int32
	xp := rewards.DefaultConfig()
	r := New(failingGenerator(&calls), &memBank{}, xp, DefaultConfig(), nil, WithSleep((&recordedSleeps{}).sleep))

	problems, report := r.ResolveAll(context.Background(), RequestsFrom(comp.Requests, "he", nil), "he")

	require.Len(t, problems, 10)
	assert.Equal(t, 10, report.Placeholder)
	assert.Equal(t, 10, report.Fallbacks())
	assert.Equal(t, 40, report.Attempts)

	ids := make(map[string]bool)
	for i, p := range problems {
		assert.Equal(t, problemgen.SourcePlaceholder, p.Source)
		assert.Equal(t, xp.ProblemXP(p.Difficulty), p.XPReward)
		assert.Positive(t, p.XPReward)
		assert.NotEmpty(t, p.Steps)
		assert.Equal(t, comp.Requests[i].Slot, p.Slot, "slot order preserved")
		assert.False(t, ids[p.ID], "duplicate problem id")
		ids[p.ID] = true
	}
}

func TestResolveAll_BankExclusionGrows(t *testing.T) {
	bank := &memBank{exercises: []store.ExerciseRecord{
		{ID: "ex-a", TopicID: "angles", Difficulty: "easy", Question: "A", Answer: "1", AnswerType: "integer", UsageCount: 0},
		{ID: "ex-b", TopicID: "angles", Difficulty: "easy", Question: "B", Answer: "2", AnswerType: "integer", UsageCount: 3},
	}}
	r := New(nil, bank, rewards.DefaultConfig(), DefaultConfig(), nil)
	topic := testTopic(t, "angles")
	reqs := []Request{
		{Topic: topic, Difficulty: topicgraph.Easy, Slot: problemgen.SlotReview},
		{Topic: topic, Difficulty: topicgraph.Easy, Slot: problemgen.SlotReview},
		{Topic: topic, Difficulty: topicgraph.Easy, Slot: problemgen.SlotFoundation},
	}

	problems, report := r.ResolveAll(context.Background(), reqs, "")
	r.Close()

	assert.Equal(t, "ex-a", problems[0].SourceRef, "least used first")
	assert.Equal(t, "ex-b", problems[1].SourceRef)
	assert.Equal(t, problemgen.SourcePlaceholder, problems[2].Source)
	assert.Equal(t, Report{Bank: 2, Placeholder: 1}, report)
	assert.Equal(t, [][]string{nil, {"ex-a"}, {"ex-a", "ex-b"}}, bank.queries)
	assert.Equal(t, 1, bank.usage("ex-a"))
	assert.Equal(t, 4, bank.usage("ex-b"))
}

func TestResolveAll_DuplicateGeneratedQuestionFallsBack(t *testing.T) {
	gen := problemgen.GeneratorFunc(func(_ context.Context, in problemgen.GenerateInput) (*problemgen.Generated, error) {
		return &problemgen.Generated{
			Question:         "What is 6 × 7?",
			Answer:           "42",
			AnswerType:       problemgen.AnswerTypeInteger,
			Steps:            []string{"6 × 7 = 42"},
			EstimatedMinutes: 1,
		}, nil
	})
	r := New(gen, nil, rewards.DefaultConfig(), DefaultConfig(), nil)
	topic := testTopic(t, "multiplication-facts")
	reqs := []Request{
		{Topic: topic, Difficulty: topicgraph.Medium, Slot: problemgen.SlotCore},
		{Topic: topic, Difficulty: topicgraph.Medium, Slot: problemgen.SlotCore},
	}

	problems, report := r.ResolveAll(context.Background(), reqs, "")

	assert.Equal(t, problemgen.SourceGenerated, problems[0].Source)
	assert.Equal(t, problemgen.SourcePlaceholder, problems[1].Source)
	assert.Equal(t, 1, report.Generated)
	assert.Equal(t, 2, report.Attempts)
}

func TestResolveAll_DoesNotMutateRequests(t *testing.T) {
	r := New(okGenerator(), nil, rewards.DefaultConfig(), DefaultConfig(), nil)
	reqs := []Request{{Topic: testTopic(t, "angles"), Difficulty: topicgraph.Easy}}

	r.ResolveAll(context.Background(), reqs, "he")

	assert.Empty(t, reqs[0].Locale)
}

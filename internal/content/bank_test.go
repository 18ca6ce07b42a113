package content

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/topicgraph"
)

func TestStoreBank_LeastUsedFirst(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "bank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := s.ExerciseRepo()
	for _, rec := range []store.ExerciseRecord{
		{ID: "e1", TopicID: "decimals", Difficulty: "medium", Question: "0.5 + 0.25?", Answer: "0.75", AnswerType: "decimal", Steps: []string{"Line up the points."}, UsageCount: 2},
		{ID: "e2", TopicID: "decimals", Difficulty: "medium", Question: "1.2 × 3?", Answer: "3.6", AnswerType: "decimal", Steps: []string{"12 × 3 = 36."}},
		{ID: "e3", TopicID: "decimals", Difficulty: "easy", Question: "0.1 + 0.2?", Answer: "0.3", AnswerType: "decimal"},
	} {
		require.NoError(t, repo.UpsertExercise(ctx, &rec))
	}

	bank := NewStoreBank(repo)
	recs, err := bank.Query(ctx, "decimals", topicgraph.Medium, nil, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "e2", recs[0].ID)

	require.NoError(t, bank.IncrementUsage(ctx, "e2"))
	require.NoError(t, bank.IncrementUsage(ctx, "e2"))
	require.NoError(t, bank.IncrementUsage(ctx, "e2"))

	recs, err = bank.Query(ctx, "decimals", topicgraph.Medium, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "e1", recs[0].ID)

	recs, err = bank.Query(ctx, "decimals", topicgraph.Medium, []string{"e1"}, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "e2", recs[0].ID)

	p := fromExercise(recs[0])
	assert.Equal(t, problemgen.SourceBank, p.Source)
	assert.Equal(t, "e2", p.SourceRef)
	assert.Equal(t, []string{"12 × 3 = 36."}, p.Steps)
}

package content

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/topicgraph"
)

const sampleBank = `
exercises:
  - id: dec-1
    topic: decimals
    difficulty: easy
    question: "0.4 + 0.3 = ?"
    question_localized: "0.4 + 0.3 = ?"
    answer: "0.7"
    answer_type: decimal
    steps: ["Add the tenths: 4 + 3 = 7."]
    estimated_minutes: 1
  - topic: angles
    difficulty: medium
    question: "Two angles of a triangle are 50° and 60°. Find the third."
    answer: "70"
    answer_type: integer
`

func TestParseBankFile(t *testing.T) {
	g, err := topicgraph.Default()
	require.NoError(t, err)

	f, err := ParseBankFile([]byte(sampleBank), g)
	require.NoError(t, err)
	require.Len(t, f.Exercises, 2)
	assert.Equal(t, "dec-1", f.Exercises[0].ID)
	assert.NotEmpty(t, f.Exercises[1].ID, "missing id is derived")

	again, err := ParseBankFile([]byte(sampleBank), g)
	require.NoError(t, err)
	assert.Equal(t, f.Exercises[1].ID, again.Exercises[1].ID, "derived id is stable")
}

func TestParseBankFile_Invalid(t *testing.T) {
	g, err := topicgraph.Default()
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "exercises: []", "no exercises"},
		{"bad yaml", "exercises: [", "decode bank file"},
		{"unknown topic", `
exercises:
  - {topic: calculus, difficulty: easy, question: q, answer: "1"}`, "unknown topic"},
		{"bad difficulty", `
exercises:
  - {topic: decimals, difficulty: brutal, question: q, answer: "1"}`, "unknown difficulty"},
		{"unsupported difficulty", `
exercises:
  - {topic: volume, difficulty: easy, question: q, answer: "1"}`, "has no easy problems"},
		{"no answer", `
exercises:
  - {topic: decimals, difficulty: easy, question: q, answer: " "}`, "answer is empty"},
		{"bad answer type", `
exercises:
  - {topic: decimals, difficulty: easy, question: q, answer: "1", answer_type: roman}`, "unknown answer type"},
		{"duplicate id", `
exercises:
  - {id: x, topic: decimals, difficulty: easy, question: q, answer: "1"}
  - {id: x, topic: decimals, difficulty: easy, question: r, answer: "2"}`, "duplicate id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBankFile([]byte(tt.doc), g)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImportBank(t *testing.T) {
	ctx := context.Background()
	g, err := topicgraph.Default()
	require.NoError(t, err)
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	repo := s.ExerciseRepo()

	n, err := ImportBank(ctx, repo, g, []byte(sampleBank))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-importing replaces instead of duplicating.
	_, err = ImportBank(ctx, repo, g, []byte(sampleBank))
	require.NoError(t, err)
	total, err := repo.CountExercises(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	recs, err := NewStoreBank(repo).Query(ctx, "decimals", topicgraph.Easy, nil, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "0.7", recs[0].Answer)
	assert.Equal(t, []string{"Add the tenths: 4 + 3 = 7."}, recs[0].Steps)

	_, err = ImportBank(ctx, repo, g, []byte("exercises: []"))
	assert.Error(t, err)
}

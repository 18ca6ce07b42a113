package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/practix/internal/config"
	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/problemgen"
)

func TestProblemRef(t *testing.T) {
	set := &dailyset.Set{Problems: []problemgen.Problem{{ID: "p-a"}, {ID: "p-b"}}}
	tests := []struct {
		ref  string
		want string
	}{
		{"1", "p-a"},
		{"2", "p-b"},
		{"3", "3"},
		{"0", "0"},
		{"p-b", "p-b"},
	}
	for _, tt := range tests {
		if got := problemRef(set, tt.ref); got != tt.want {
			t.Errorf("problemRef(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestLocalized(t *testing.T) {
	assert.True(t, localized("he"))
	assert.False(t, localized("en"))
	assert.False(t, localized("en-GB"))
	assert.False(t, localized(""))
}

func TestNewServices_SQLiteWithMockProvider(t *testing.T) {
	t.Setenv("PRACTIX_STORE_DSN", filepath.Join(t.TempDir(), "cli.db"))
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	c, err := config.Load(config.New(), "")
	require.NoError(t, err)
	require.Equal(t, "mock", c.LLM.Provider)

	ctx := context.Background()
	svc, err := newServices(ctx, c, nil)
	require.NoError(t, err)
	defer svc.Close()
	assert.Nil(t, svc.cache)
	assert.Nil(t, svc.images)

	set, err := svc.sets.GetOrCreate(ctx, "cli-user")
	require.NoError(t, err)
	assert.NotEmpty(t, set.Problems)

	again, err := lookupSet(ctx, svc, "cli-user", "today")
	require.NoError(t, err)
	assert.Equal(t, set.ID, again.ID)

	res, err := svc.sets.SubmitAnswer(ctx, dailyset.Submission{
		UserID:    "cli-user",
		SetID:     set.ID,
		ProblemID: problemRef(set, "1"),
		Skipped:   true,
	})
	require.NoError(t, err)
	assert.True(t, res.Attempt.Skipped)
}

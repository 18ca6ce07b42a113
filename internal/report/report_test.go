package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/topicgraph"
)

func TestWrite(t *testing.T) {
	cfg := rewards.DefaultConfig()
	d := &Data{
		Profile: rewards.Profile{UserID: "u1", TotalXP: 175, CurrentStreak: 3, LongestStreak: 4, LastPracticeDate: "2026-03-10", Timezone: "UTC"},
		Level:   cfg.LevelProgress(175),
		Branches: []progress.BranchView{{
			Branch: topicgraph.Branch{ID: "foundations", Name: "Foundations"},
			Topics: []progress.TopicView{{
				Topic:       topicgraph.Topic{ID: "add-sub-within-100", Name: "Addition and subtraction"},
				Progress:    progress.TopicProgress{CorrectAttempts: 3, TotalAttempts: 4, Mastery: 40, DaysPracticed: progress.NewDaySet("2026-03-09", "2026-03-10")},
				State:       progress.DisplayInProgress,
				Recommended: true,
			}},
		}},
		Sets: []*dailyset.Set{{
			Date:           "2026-03-10",
			Kind:           dailyset.KindDaily,
			FocusTopicName: "Addition and subtraction",
			Problems:       make([]problemgen.Problem, 5),
			CompletedCount: 5,
			XPEarned:       145,
		}},
		GeneratedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetTopics, sheetHistory}, f.GetSheetList())

	summary, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total XP", "175"}, summary[2])
	assert.Equal(t, []string{"Level", "2"}, summary[3])
	assert.Equal(t, []string{"Progress to next level (%)", "50"}, summary[4])

	topics, err := f.GetRows(sheetTopics)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, []string{"Foundations", "Addition and subtraction", "in_progress", "3", "4", "75", "40", "2", "yes"}, topics[1])

	history, err := f.GetRows(sheetHistory)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, []string{"2026-03-10", "daily", "Addition and subtraction", "5", "5", "yes", "145"}, history[1])
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Data{Level: rewards.DefaultConfig().LevelProgress(0)}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetHistory)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

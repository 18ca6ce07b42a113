// Package report exports a learner's progress and set history as an xlsx
// workbook.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/rewards"
)

const (
	sheetSummary = "Summary"
	sheetTopics  = "Topics"
	sheetHistory = "History"
)

// Data is everything the workbook shows.
type Data struct {
	Profile     rewards.Profile
	Level       rewards.LevelProgress
	Branches    []progress.BranchView
	Sets        []*dailyset.Set
	GeneratedAt time.Time
}

// Builder collects report data for a user.
type Builder struct {
	Tracker *progress.Tracker
	Ledger  *rewards.Ledger
	Sets    *dailyset.Manager

	// HistoryLimit caps the number of sets listed. Default: 90.
	HistoryLimit int
}

// Collect loads the data for userID.
func (b *Builder) Collect(ctx context.Context, userID string, now time.Time) (*Data, error) {
	profile, err := b.Ledger.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit := b.HistoryLimit
	if limit <= 0 {
		limit = 90
	}
	sets, err := b.Sets.History(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return &Data{
		Profile:     profile,
		Level:       b.Ledger.Config().LevelProgress(profile.TotalXP),
		Branches:    b.Tracker.View(ctx, userID),
		Sets:        sets,
		GeneratedAt: now,
	}, nil
}

// Write renders d as an xlsx workbook to w.
func Write(w io.Writer, d *Data) error {
	f := excelize.NewFile()
	defer f.Close()

	// A new file starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	for _, name := range []string{sheetTopics, sheetHistory} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, d); err != nil {
		return err
	}
	if err := writeTable(f, sheetTopics, header, topicHeader, topicRows(d.Branches)); err != nil {
		return err
	}
	if err := writeTable(f, sheetHistory, header, historyHeader, historyRows(d.Sets)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, d *Data) error {
	p := d.Profile
	rows := [][]any{
		{"User", p.UserID},
		{"Generated", d.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Total XP", p.TotalXP},
		{"Level", d.Level.Level},
		{"Progress to next level (%)", d.Level.Percent()},
		{"Current streak", p.CurrentStreak},
		{"Longest streak", p.LongestStreak},
		{"Last practice", p.LastPracticeDate},
		{"Timezone", p.Timezone},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return f.SetColWidth(sheetSummary, "A", "A", 28)
}

var topicHeader = []any{"Branch", "Topic", "State", "Correct", "Attempts", "Accuracy (%)", "Mastery", "Days practiced", "Recommended"}

func topicRows(branches []progress.BranchView) [][]any {
	var rows [][]any
	for _, b := range branches {
		for _, t := range b.Topics {
			rows = append(rows, []any{
				b.Branch.Name,
				t.Topic.Name,
				string(t.State),
				t.Progress.CorrectAttempts,
				t.Progress.TotalAttempts,
				int(t.Progress.Accuracy()*100 + 0.5),
				t.Progress.Mastery,
				t.Progress.DaysPracticed.Len(),
				yesNo(t.Recommended),
			})
		}
	}
	return rows
}

var historyHeader = []any{"Date", "Kind", "Focus topic", "Answered", "Problems", "Completed", "XP"}

func historyRows(sets []*dailyset.Set) [][]any {
	rows := make([][]any, 0, len(sets))
	for _, s := range sets {
		rows = append(rows, []any{
			s.Date,
			string(s.Kind),
			s.FocusTopicName,
			s.CompletedCount,
			s.Total(),
			yesNo(s.IsCompleted()),
			s.XPEarned,
		})
	}
	return rows
}

func writeTable(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package dailyset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/practix/internal/clock"
	"github.com/abhisek/practix/internal/metrics"
	"github.com/abhisek/practix/internal/objectstore"
	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/vision"
)

// feedbackUndetermined is shown when an image answer could not be judged.
const feedbackUndetermined = "We could not determine whether this answer is correct."

// SubmitAnswer records an answer. Submitting the same problem twice is not
// an error: the second call changes nothing and reports AlreadyAnswered.
func (m *Manager) SubmitAnswer(ctx context.Context, sub Submission) (_ *SubmitResult, err error) {
	ctx, span := tracer.Start(ctx, "dailyset.SubmitAnswer", trace.WithAttributes(
		attribute.String("user", sub.UserID),
		attribute.String("set", sub.SetID),
		attribute.String("problem", sub.ProblemID),
	))
	defer endSpan(span, &err)

	rec, err := m.loadSet(ctx, sub.UserID, sub.SetID)
	if err != nil {
		return nil, err
	}
	set := setFromRecord(rec)
	problem, _, ok := set.Problem(sub.ProblemID)
	if !ok {
		return nil, fmt.Errorf("%w: %s in set %s", ErrProblemNotFound, sub.ProblemID, sub.SetID)
	}

	prev, err := m.attempts.FindAttempt(ctx, sub.UserID, sub.SetID, sub.ProblemID)
	if err != nil {
		return nil, fmt.Errorf("find attempt: %w", err)
	}
	if prev != nil {
		return m.alreadyAnswered(set, problem, prev), nil
	}

	sub.Answer = strings.TrimSpace(sub.Answer)
	if !sub.Skipped && sub.Answer == "" && sub.ImageRef == "" {
		return nil, fmt.Errorf("%w: an answer, an image or a skip is required", ErrInvalidSubmission)
	}

	attempt := &store.AttemptRecord{
		ID:        uuid.NewString(),
		UserID:    sub.UserID,
		SetID:     sub.SetID,
		ProblemID: sub.ProblemID,
		TopicID:   problem.TopicID,
		Skipped:   sub.Skipped,
		Answer:    sub.Answer,
		ImageRef:  sub.ImageRef,
		CreatedAt: m.clock.Now(),
	}
	if !sub.Skipped {
		if err := m.evaluate(ctx, problem, sub, attempt); err != nil {
			return nil, err
		}
	}

	if err := m.attempts.CreateAttempt(ctx, attempt); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost a race with an identical submission.
			if prev, ferr := m.attempts.FindAttempt(ctx, sub.UserID, sub.SetID, sub.ProblemID); ferr == nil && prev != nil {
				return m.alreadyAnswered(set, problem, prev), nil
			}
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	metrics.Submissions.WithLabelValues(outcome(attempt)).Inc()

	// Counting stored attempts keeps completedCount exact under concurrent
	// submissions to the same set.
	answered, err := m.attempts.CountAttempts(ctx, sub.UserID, sub.SetID)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	set.CompletedCount = min(answered, set.Total())
	set.CurrentIndex = min(set.CompletedCount, set.Total()-1)
	if err := m.sets.UpdateSetProgress(ctx, set.ID, set.CompletedCount, set.CurrentIndex); err != nil {
		return nil, fmt.Errorf("update set progress: %w", err)
	}

	if attempt.IsCorrect != nil {
		if _, err := m.tracker.RecordAttempt(ctx, sub.UserID, problem.TopicID, *attempt.IsCorrect); err != nil {
			m.log.Error("progress update failed", "user", sub.UserID, "topic", problem.TopicID, "error", err)
		}
	}

	res := &SubmitResult{
		CorrectAnswer: problem.Answer,
		Steps:         problem.Steps,
	}
	if attempt.IsCorrect != nil && *attempt.IsCorrect {
		xp := problem.XPReward
		if _, err := m.ledger.AwardXP(ctx, sub.UserID, xp); err != nil {
			return nil, err
		}
		if err := m.sets.AddSetXP(ctx, set.ID, xp); err != nil {
			return nil, fmt.Errorf("add set xp: %w", err)
		}
		if err := m.attempts.SetAttemptXP(ctx, attempt.ID, xp); err != nil {
			return nil, fmt.Errorf("record attempt xp: %w", err)
		}
		attempt.XPAwarded = xp
		res.XPAwarded = xp
	}

	if set.CompletedCount == set.Total() {
		if err := m.complete(ctx, set, res); err != nil {
			return nil, err
		}
	}

	updated, err := m.sets.GetSet(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("reload set: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrSetNotFound, set.ID)
	}
	res.Set = setFromRecord(updated)
	res.Attempt = attemptFromRecord(attempt)
	return res, nil
}

// evaluate fills in correctness for a non-skipped answer.
func (m *Manager) evaluate(ctx context.Context, problem problemgen.Problem, sub Submission, attempt *store.AttemptRecord) error {
	if sub.ImageRef == "" {
		correct := problemgen.CheckAnswer(sub.Answer, problem.Answer, problem.AnswerType)
		attempt.IsCorrect = &correct
		return nil
	}

	if m.analyzer == nil || m.images == nil {
		m.log.Warn("image answer received but image analysis is not configured", "set", sub.SetID, "problem", sub.ProblemID)
		attempt.Feedback = feedbackUndetermined
		return nil
	}
	img, err := m.images.Resolve(ctx, sub.ImageRef)
	if err != nil {
		if errors.Is(err, objectstore.ErrInvalidRef) {
			return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
		}
		m.log.Warn("image reference could not be resolved", "ref", sub.ImageRef, "error", err)
		attempt.Feedback = feedbackUndetermined
		return nil
	}

	locale := ""
	if p, err := m.ledger.Profile(ctx, sub.UserID); err == nil {
		locale = p.Locale
	}
	analysis, err := m.analyzer.Analyze(ctx, vision.AnalyzeInput{Problem: problem, Image: img, Locale: locale})
	if err != nil {
		m.log.Warn("image analysis failed", "set", sub.SetID, "problem", sub.ProblemID, "error", err)
		attempt.Feedback = feedbackUndetermined
		return nil
	}
	attempt.IsCorrect = analysis.IsCorrect
	attempt.Feedback = analysis.Feedback
	attempt.ExtractedAnswer = analysis.ExtractedAnswer
	if attempt.IsCorrect == nil && attempt.Feedback == "" {
		attempt.Feedback = feedbackUndetermined
	}
	return nil
}

// complete awards the completion rewards once per set. Only daily sets
// earn bonuses and move the streak.
func (m *Manager) complete(ctx context.Context, set *Set, res *SubmitResult) error {
	now := m.clock.Now()
	won, err := m.sets.MarkSetCompleted(ctx, set.ID, now)
	if err != nil {
		return fmt.Errorf("mark set completed: %w", err)
	}
	if !won {
		return nil
	}
	res.SetCompleted = true
	if set.Kind != KindDaily {
		return nil
	}

	attempts, err := m.attempts.ListAttempts(ctx, set.UserID, set.ID)
	if err != nil {
		return fmt.Errorf("list attempts: %w", err)
	}
	allCorrect := len(attempts) == set.Total()
	for _, a := range attempts {
		if a.IsCorrect == nil || !*a.IsCorrect {
			allCorrect = false
			break
		}
	}

	today := clock.LocalDate(now, m.ledger.UserLocation(ctx, set.UserID))
	day, err := m.ledger.CompleteDay(ctx, set.UserID, today, allCorrect)
	if err != nil {
		return err
	}
	if err := m.sets.AddSetXP(ctx, set.ID, day.Bonus.Total()); err != nil {
		return fmt.Errorf("add set bonus xp: %w", err)
	}
	res.Bonus = &day.Bonus
	res.Streak = day.Streak.Current
	return nil
}

func (m *Manager) alreadyAnswered(set *Set, problem problemgen.Problem, prev *store.AttemptRecord) *SubmitResult {
	metrics.Submissions.WithLabelValues(metrics.OutcomeDuplicate).Inc()
	return &SubmitResult{
		Attempt:         attemptFromRecord(prev),
		AlreadyAnswered: true,
		CorrectAnswer:   problem.Answer,
		Steps:           problem.Steps,
		Set:             set,
	}
}

func outcome(a *store.AttemptRecord) string {
	switch {
	case a.Skipped:
		return metrics.OutcomeSkipped
	case a.IsCorrect == nil:
		return metrics.OutcomeUndetermined
	case *a.IsCorrect:
		return metrics.OutcomeCorrect
	}
	return metrics.OutcomeIncorrect
}

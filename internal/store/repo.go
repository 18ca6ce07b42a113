package store

import (
	"context"
	"errors"
	"time"
)

// ErrConflict is returned when a write violates a uniqueness constraint,
// e.g. a second daily set for the same user and date.
var ErrConflict = errors.New("store: conflict")

// Set kinds.
const (
	KindDaily    = "daily"
	KindPractice = "practice"
)

// ProgressRecord is the stored form of a learner's progress on one topic.
type ProgressRecord struct {
	UserID          string
	TopicID         string
	Status          string
	CorrectAttempts int
	TotalAttempts   int
	LastPracticedAt *time.Time
	DaysPracticed   []string
	Mastery         int
	UpdatedAt       time.Time
}

// ProgressRepo persists per-(user, topic) progress.
type ProgressRepo interface {
	// GetProgress returns the record, or nil if the user never touched the topic.
	GetProgress(ctx context.Context, userID, topicID string) (*ProgressRecord, error)

	// ListProgress returns every record for the user.
	ListProgress(ctx context.Context, userID string) ([]ProgressRecord, error)

	// IncrementProgress counts one attempt in the database, adds day to the
	// practiced days and returns the updated record. Concurrent calls never
	// lose an increment.
	IncrementProgress(ctx context.Context, userID, topicID string, correct bool, day string, at time.Time) (*ProgressRecord, error)

	// SetProgressStatus stores a recomputed status and mastery score.
	SetProgressStatus(ctx context.Context, userID, topicID, status string, mastery int) error
}

// ProblemRecord is a problem snapshot embedded in a set.
type ProblemRecord struct {
	ID                string   `json:"id"`
	TopicID           string   `json:"topicId"`
	TopicName         string   `json:"topicName"`
	Slot              string   `json:"slot"`
	Difficulty        string   `json:"difficulty"`
	Question          string   `json:"question"`
	QuestionLocalized string   `json:"questionLocalized,omitempty"`
	Answer            string   `json:"answer"`
	AnswerType        string   `json:"answerType"`
	Steps             []string `json:"steps,omitempty"`
	StepsLocalized    []string `json:"stepsLocalized,omitempty"`
	Hint              string   `json:"hint,omitempty"`
	HintLocalized     string   `json:"hintLocalized,omitempty"`
	EstimatedMinutes  int      `json:"estimatedMinutes"`
	XPReward          int      `json:"xpReward"`
	Source            string   `json:"source"`
	SourceRef         string   `json:"sourceRef,omitempty"`
}

// SetRecord is the stored form of a daily set or practice session.
type SetRecord struct {
	ID             string
	UserID         string
	Kind           string
	LocalDate      string
	Problems       []ProblemRecord
	CurrentIndex   int
	CompletedCount int
	CompletedAt    *time.Time
	XPEarned       int
	FocusTopicID   string
	FocusTopicName string
	CreatedAt      time.Time
}

// SetRepo persists problem sets.
type SetRepo interface {
	// CreateSet inserts a new set. Returns ErrConflict if a daily set for
	// the same user and date already exists.
	CreateSet(ctx context.Context, rec *SetRecord) error

	// GetSet returns the set, or nil if it does not exist.
	GetSet(ctx context.Context, id string) (*SetRecord, error)

	// FindDailySet returns the user's daily set for the date, or nil.
	FindDailySet(ctx context.Context, userID, localDate string) (*SetRecord, error)

	// ListSets returns the user's sets, newest first.
	ListSets(ctx context.Context, userID string, limit int) ([]SetRecord, error)

	// UpdateSetProgress stores the completed count and current index. A
	// lower count than the stored one is ignored.
	UpdateSetProgress(ctx context.Context, id string, completedCount, currentIndex int) error

	// AddSetXP atomically adds xp to the set's running total.
	AddSetXP(ctx context.Context, id string, xp int) error

	// MarkSetCompleted sets completed_at if it is still unset and reports
	// whether this call performed the transition.
	MarkSetCompleted(ctx context.Context, id string, at time.Time) (bool, error)
}

// AttemptRecord is one answer to one problem of one set.
type AttemptRecord struct {
	ID              string
	UserID          string
	SetID           string
	ProblemID       string
	TopicID         string
	IsCorrect       *bool
	Skipped         bool
	Answer          string
	ImageRef        string
	Feedback        string
	ExtractedAnswer string
	XPAwarded       int
	CreatedAt       time.Time
}

// AttemptRepo persists answer attempts.
type AttemptRepo interface {
	// FindAttempt returns the attempt for the triple, or nil.
	FindAttempt(ctx context.Context, userID, setID, problemID string) (*AttemptRecord, error)

	// CreateAttempt inserts an attempt. Returns ErrConflict when an attempt
	// for the same (user, set, problem) already exists.
	CreateAttempt(ctx context.Context, rec *AttemptRecord) error

	// ListAttempts returns the attempts for a set in creation order.
	ListAttempts(ctx context.Context, userID, setID string) ([]AttemptRecord, error)

	// CountAttempts returns how many problems of the set have an attempt.
	CountAttempts(ctx context.Context, userID, setID string) (int, error)

	// SetAttemptXP records the XP awarded for an attempt.
	SetAttemptXP(ctx context.Context, id string, xp int) error
}

// ProfileRecord is the gamification slice of a user profile.
type ProfileRecord struct {
	UserID           string
	TotalXP          int
	Level            int
	CurrentStreak    int
	LongestStreak    int
	LastPracticeDate string
	Timezone         string
	Locale           string
	DailyGoal        int
	UpdatedAt        time.Time
}

// ProfileRepo persists user profiles.
type ProfileRepo interface {
	// GetProfile returns the profile, or nil if the user has none.
	GetProfile(ctx context.Context, userID string) (*ProfileRecord, error)

	// EnsureProfile inserts defaults when no profile exists and returns the
	// stored profile either way.
	EnsureProfile(ctx context.Context, defaults *ProfileRecord) (*ProfileRecord, error)

	// AddXP atomically adds delta to total XP and returns the new total.
	AddXP(ctx context.Context, userID string, delta int) (int, error)

	// UpdateLevel stores the derived level.
	UpdateLevel(ctx context.Context, userID string, level int) error

	// UpdateStreak stores streak bookkeeping.
	UpdateStreak(ctx context.Context, userID string, current, longest int, lastPracticeDate string) error

	// UpdatePreferences stores timezone, locale and daily goal.
	UpdatePreferences(ctx context.Context, userID, timezone, locale string, dailyGoal int) error
}

// ExerciseRecord is a stored bank exercise.
type ExerciseRecord struct {
	ID                string
	TopicID           string
	Difficulty        string
	Question          string
	QuestionLocalized string
	Answer            string
	AnswerType        string
	Steps             []string
	StepsLocalized    []string
	Hint              string
	HintLocalized     string
	EstimatedMinutes  int
	UsageCount        int
	CreatedAt         time.Time
}

// ExerciseRepo persists the exercise bank.
type ExerciseRepo interface {
	// QueryExercises returns matching exercises, least used first.
	QueryExercises(ctx context.Context, topicID, difficulty string, excludeIDs []string, limit int) ([]ExerciseRecord, error)

	// IncrementExerciseUsage bumps the usage counter by one.
	IncrementExerciseUsage(ctx context.Context, id string) error

	// UpsertExercise inserts or replaces an exercise by ID.
	UpsertExercise(ctx context.Context, rec *ExerciseRecord) error

	// CountExercises returns the number of exercises, optionally per topic.
	CountExercises(ctx context.Context, topicID string) (int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// EventRepo provides append access to audit events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// LLMUsage sums tokens and counts requests, grouped by purpose.
	LLMUsage(ctx context.Context, since time.Time) ([]LLMUsageRow, error)
}

// LLMUsageRow is one aggregate row of LLM usage.
type LLMUsageRow struct {
	Purpose      string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
}

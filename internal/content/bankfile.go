package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/topicgraph"
)

// bankNamespace seeds deterministic IDs for exercises imported without one.
var bankNamespace = uuid.MustParse("6f1c2a9e-4b7d-4c35-9a0e-2d8b51f3c7a4")

// BankFile is a YAML document of curated exercises.
type BankFile struct {
	Exercises []BankExercise `yaml:"exercises"`
}

// BankExercise is one curated exercise. ID is optional; imports without
// one derive a stable ID from topic and question so re-imports replace.
type BankExercise struct {
	ID                string   `yaml:"id"`
	Topic             string   `yaml:"topic"`
	Difficulty        string   `yaml:"difficulty"`
	Question          string   `yaml:"question"`
	QuestionLocalized string   `yaml:"question_localized"`
	Answer            string   `yaml:"answer"`
	AnswerType        string   `yaml:"answer_type"`
	Steps             []string `yaml:"steps"`
	StepsLocalized    []string `yaml:"steps_localized"`
	Hint              string   `yaml:"hint"`
	HintLocalized     string   `yaml:"hint_localized"`
	EstimatedMinutes  int      `yaml:"estimated_minutes"`
}

// ParseBankFile decodes a bank document and validates every entry against g.
// All problems are reported together.
func ParseBankFile(data []byte, g *topicgraph.Graph) (*BankFile, error) {
	var f BankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode bank file: %w", err)
	}
	if len(f.Exercises) == 0 {
		return nil, errors.New("bank file has no exercises")
	}

	var errs []error
	seen := make(map[string]int, len(f.Exercises))
	for i := range f.Exercises {
		ex := &f.Exercises[i]
		if ex.ID == "" {
			ex.ID = uuid.NewSHA1(bankNamespace, []byte(ex.Topic+"\x00"+ex.Question)).String()
		}
		if prev, dup := seen[ex.ID]; dup {
			errs = append(errs, fmt.Errorf("exercise %d: duplicate id %q (first at %d)", i+1, ex.ID, prev))
			continue
		}
		seen[ex.ID] = i + 1
		if err := ex.validate(g); err != nil {
			errs = append(errs, fmt.Errorf("exercise %d (%s): %w", i+1, ex.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &f, nil
}

func (ex *BankExercise) validate(g *topicgraph.Graph) error {
	topic, ok := g.Topic(ex.Topic)
	if !ok {
		return fmt.Errorf("unknown topic %q", ex.Topic)
	}
	d, err := topicgraph.ParseDifficulty(ex.Difficulty)
	if err != nil {
		return err
	}
	if !topic.Supports(d) {
		return fmt.Errorf("topic %q has no %s problems", ex.Topic, d)
	}
	if strings.TrimSpace(ex.Question) == "" {
		return errors.New("question is empty")
	}
	if strings.TrimSpace(ex.Answer) == "" {
		return errors.New("answer is empty")
	}
	if ex.AnswerType == "" {
		ex.AnswerType = string(problemgen.AnswerTypeText)
	}
	if !problemgen.AnswerType(ex.AnswerType).Valid() {
		return fmt.Errorf("unknown answer type %q", ex.AnswerType)
	}
	if ex.EstimatedMinutes < 0 {
		return fmt.Errorf("negative estimated minutes %d", ex.EstimatedMinutes)
	}
	return nil
}

func (ex BankExercise) record() *store.ExerciseRecord {
	return &store.ExerciseRecord{
		ID:                ex.ID,
		TopicID:           ex.Topic,
		Difficulty:        ex.Difficulty,
		Question:          ex.Question,
		QuestionLocalized: ex.QuestionLocalized,
		Answer:            ex.Answer,
		AnswerType:        ex.AnswerType,
		Steps:             ex.Steps,
		StepsLocalized:    ex.StepsLocalized,
		Hint:              ex.Hint,
		HintLocalized:     ex.HintLocalized,
		EstimatedMinutes:  ex.EstimatedMinutes,
	}
}

// ImportBank parses data and upserts every exercise into repo. Nothing is
// written when validation fails. It returns the number of exercises stored.
func ImportBank(ctx context.Context, repo store.ExerciseRepo, g *topicgraph.Graph, data []byte) (int, error) {
	f, err := ParseBankFile(data, g)
	if err != nil {
		return 0, err
	}
	for i, ex := range f.Exercises {
		if err := repo.UpsertExercise(ctx, ex.record()); err != nil {
			return i, fmt.Errorf("store exercise %s: %w", ex.ID, err)
		}
	}
	return len(f.Exercises), nil
}

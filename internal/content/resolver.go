// Package content turns composed (topic, difficulty) requests into concrete
// problems through a fallback chain: generated content, the stored exercise
// bank, then a deterministic placeholder.
package content

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/practix/internal/composer"
	"github.com/abhisek/practix/internal/logger"
	"github.com/abhisek/practix/internal/metrics"
	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/topicgraph"
)

var tracer = otel.Tracer("github.com/abhisek/practix/internal/content")

// Config controls retries and concurrency of the resolver.
type Config struct {
	// Backoff lists the waits before each generation retry. Its length is
	// the number of retries after the first attempt.
	Backoff []time.Duration `mapstructure:"backoff"`

	// Concurrency bounds parallel generation within one set.
	Concurrency int `mapstructure:"concurrency"`

	// UsageTimeout bounds the background bank usage update.
	UsageTimeout time.Duration `mapstructure:"usage_timeout"`
}

// DefaultConfig returns three retries at 2s, 4s and 8s.
func DefaultConfig() Config {
	return Config{
		Backoff:      []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second},
		Concurrency:  4,
		UsageTimeout: 5 * time.Second,
	}
}

// Request asks for one problem.
type Request struct {
	Topic      topicgraph.Topic
	Difficulty topicgraph.Difficulty
	Slot       problemgen.SlotKind
	Locale     string

	// PriorQuestions are questions the learner saw recently on the same
	// topic. The generator is asked not to repeat them.
	PriorQuestions []string
}

// RequestsFrom converts composer output into resolver requests. prior maps
// topic IDs to recently seen questions and may be nil.
func RequestsFrom(reqs []composer.Request, locale string, prior map[string][]string) []Request {
	out := make([]Request, len(reqs))
	for i, r := range reqs {
		out[i] = Request{
			Topic:          r.Topic,
			Difficulty:     r.Difficulty,
			Slot:           r.Slot,
			Locale:         locale,
			PriorQuestions: prior[r.Topic.ID],
		}
	}
	return out
}

// Provenance describes how one problem was resolved.
type Provenance struct {
	Source problemgen.Source

	// Attempts is the number of generator calls made.
	Attempts int
}

// Report aggregates provenance over a set.
type Report struct {
	Generated   int
	Bank        int
	Placeholder int
	Attempts    int
}

// Fallbacks is the number of problems not produced by the generator.
func (r Report) Fallbacks() int { return r.Bank + r.Placeholder }

func (r *Report) add(p Provenance) {
	switch p.Source {
	case problemgen.SourceGenerated:
		r.Generated++
	case problemgen.SourceBank:
		r.Bank++
	default:
		r.Placeholder++
	}
	r.Attempts += p.Attempts
}

// Resolver resolves problem requests. It never fails: the placeholder is
// the last resort.
type Resolver struct {
	gen   problemgen.Generator
	bank  Bank
	xp    rewards.Config
	cfg   Config
	log   *logger.Logger
	sleep func(ctx context.Context, d time.Duration) error

	wg sync.WaitGroup
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Resolver) { r.sleep = fn }
}

// New creates a Resolver. gen and bank may be nil to skip that stage.
func New(gen problemgen.Generator, bank Bank, xp rewards.Config, cfg Config, log *logger.Logger, opts ...Option) *Resolver {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.UsageTimeout <= 0 {
		cfg.UsageTimeout = 5 * time.Second
	}
	r := &Resolver{
		gen:   gen,
		bank:  bank,
		xp:    xp,
		cfg:   cfg,
		log:   logger.OrNop(log).With("component", "content"),
		sleep: sleepCtx,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve produces one problem, skipping bank exercises in usedIDs.
func (r *Resolver) Resolve(ctx context.Context, req Request, usedIDs []string) (problemgen.Problem, Provenance) {
	gen, attempts := r.generate(ctx, req)
	if gen != nil {
		return r.finish(req, fromGenerated(gen), Provenance{Source: problemgen.SourceGenerated, Attempts: attempts})
	}
	p, prov := r.fallback(ctx, req, usedIDs)
	prov.Attempts = attempts
	return r.finish(req, p, prov)
}

// ResolveAll resolves a whole set. Generation runs concurrently across
// slots; the bank phase then runs in slot order so every slot sees the
// exercises already taken. The result preserves request order.
func (r *Resolver) ResolveAll(ctx context.Context, reqs []Request, locale string) ([]problemgen.Problem, Report) {
	ctx, span := tracer.Start(ctx, "content.ResolveAll", trace.WithAttributes(
		attribute.Int("slots", len(reqs)),
		attribute.String("locale", locale),
	))
	defer span.End()

	reqs = slices.Clone(reqs)
	for i := range reqs {
		if reqs[i].Locale == "" {
			reqs[i].Locale = locale
		}
	}

	generated := make([]*problemgen.Generated, len(reqs))
	attempts := make([]int, len(reqs))

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i := range reqs {
		g.Go(func() error {
			generated[i], attempts[i] = r.generate(ctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()

	var (
		report  Report
		used    []string
		seen    = make(map[string]bool, len(reqs))
		results = make([]problemgen.Problem, len(reqs))
	)
	for i, req := range reqs {
		var (
			p    problemgen.Problem
			prov Provenance
		)
		gen := generated[i]
		if gen != nil && seen[problemgen.NormalizeText(gen.Question)] {
			r.log.Debug("duplicate generated question, falling back", "topic", req.Topic.ID, "slot", req.Slot)
			gen = nil
		}
		if gen != nil {
			seen[problemgen.NormalizeText(gen.Question)] = true
			p, prov = fromGenerated(gen), Provenance{Source: problemgen.SourceGenerated}
		} else {
			p, prov = r.fallback(ctx, req, used)
			if prov.Source == problemgen.SourceBank {
				used = append(used, p.SourceRef)
			}
		}
		prov.Attempts = attempts[i]
		results[i], prov = r.finish(req, p, prov)
		report.add(prov)
	}

	span.SetAttributes(
		attribute.Int("generated", report.Generated),
		attribute.Int("bank", report.Bank),
		attribute.Int("placeholder", report.Placeholder),
	)
	if report.Fallbacks() > 0 {
		r.log.Info("set resolved with fallbacks",
			"generated", report.Generated, "bank", report.Bank, "placeholder", report.Placeholder)
	}
	return results, report
}

// Close waits for background usage updates to finish.
func (r *Resolver) Close() {
	r.wg.Wait()
}

// generate calls the generator with retries. It returns nil when every
// attempt failed.
func (r *Resolver) generate(ctx context.Context, req Request) (*problemgen.Generated, int) {
	if r.gen == nil {
		return nil, 0
	}
	input := problemgen.GenerateInput{
		Topic:          req.Topic,
		Difficulty:     req.Difficulty,
		Locale:         req.Locale,
		PriorQuestions: req.PriorQuestions,
	}

	attempts := 0
	for i := 0; i <= len(r.cfg.Backoff); i++ {
		if i > 0 {
			if err := r.sleep(ctx, r.cfg.Backoff[i-1]); err != nil {
				break
			}
		}
		attempts++
		out, err := r.gen.Generate(ctx, input)
		if err == nil {
			metrics.GenerationAttempts.WithLabelValues("success").Inc()
			return out, attempts
		}
		metrics.GenerationAttempts.WithLabelValues("failure").Inc()
		r.log.Warn("content generation failed",
			"topic", req.Topic.ID, "difficulty", req.Difficulty, "attempt", attempts, "error", err)

		var valErr *problemgen.ValidationError
		if errors.As(err, &valErr) && !valErr.Retryable {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, attempts
}

// fallback tries the bank, then the placeholder.
func (r *Resolver) fallback(ctx context.Context, req Request, usedIDs []string) (problemgen.Problem, Provenance) {
	if r.bank != nil {
		recs, err := r.bank.Query(ctx, req.Topic.ID, req.Difficulty, usedIDs, 1)
		switch {
		case err != nil:
			r.log.Warn("exercise bank query failed", "topic", req.Topic.ID, "difficulty", req.Difficulty, "error", err)
		case len(recs) > 0:
			r.incrementUsage(ctx, recs[0].ID)
			return fromExercise(recs[0]), Provenance{Source: problemgen.SourceBank}
		}
	}
	return Placeholder(req.Topic, req.Difficulty), Provenance{Source: problemgen.SourcePlaceholder}
}

// incrementUsage updates the usage counter in the background. Failures are
// logged only.
func (r *Resolver) incrementUsage(ctx context.Context, id string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.UsageTimeout)
		defer cancel()
		if err := r.bank.IncrementUsage(uctx, id); err != nil {
			r.log.Warn("exercise usage update failed", "exercise", id, "error", err)
		}
	}()
}

// finish stamps identity, slot and reward onto a resolved problem.
func (r *Resolver) finish(req Request, p problemgen.Problem, prov Provenance) (problemgen.Problem, Provenance) {
	p.ID = uuid.NewString()
	p.TopicID = req.Topic.ID
	p.TopicName = req.Topic.Name
	p.Slot = req.Slot
	p.Difficulty = req.Difficulty
	p.XPReward = r.xp.ProblemXP(req.Difficulty)
	p.Source = prov.Source
	metrics.ContentResolved.WithLabelValues(string(prov.Source)).Inc()
	return p, prov
}

func fromGenerated(g *problemgen.Generated) problemgen.Problem {
	return problemgen.Problem{
		Question:          g.Question,
		QuestionLocalized: g.QuestionLocalized,
		Answer:            g.Answer,
		AnswerType:        g.AnswerType,
		Steps:             g.Steps,
		StepsLocalized:    g.StepsLocalized,
		Hint:              g.Hint,
		HintLocalized:     g.HintLocalized,
		EstimatedMinutes:  g.EstimatedMinutes,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

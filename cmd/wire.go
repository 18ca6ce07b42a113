package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/practix/internal/cache"
	"github.com/abhisek/practix/internal/clock"
	"github.com/abhisek/practix/internal/composer"
	"github.com/abhisek/practix/internal/config"
	"github.com/abhisek/practix/internal/content"
	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/llm"
	"github.com/abhisek/practix/internal/logger"
	"github.com/abhisek/practix/internal/objectstore"
	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/topicgraph"
	"github.com/abhisek/practix/internal/vision"
)

// services is the fully wired engine shared by the server and the CLI.
type services struct {
	store    *store.Store
	graph    *topicgraph.Graph
	cache    *cache.Cache
	images   *objectstore.Store
	ledger   *rewards.Ledger
	tracker  *progress.Tracker
	resolver *content.Resolver
	sets     *dailyset.Manager
}

// openStore opens the configured database. An empty sqlite DSN uses the
// per-user data directory.
func openStore(ctx context.Context, c *config.Config) (*store.Store, error) {
	opts := c.Store
	if (opts.Driver == "" || opts.Driver == store.DriverSQLite) && opts.DSN == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		opts.DSN = p
	}
	s, err := store.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

func loadGraph(c *config.Config) (*topicgraph.Graph, error) {
	g, err := topicgraph.Load(c.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load topic catalog: %w", err)
	}
	return g, nil
}

func newLedger(st *store.Store, c *config.Config, log *logger.Logger) *rewards.Ledger {
	return rewards.NewLedger(st.ProfileRepo(), c.Rewards, c.Clock.DefaultTimezone, c.Clock.DefaultLocale, log)
}

// newServices builds every collaborator from configuration. Optional
// backends (redis, object storage, a real LLM) are wired only when
// configured.
func newServices(ctx context.Context, c *config.Config, log *logger.Logger) (_ *services, err error) {
	log = logger.OrNop(log)
	s := &services{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if s.store, err = openStore(ctx, c); err != nil {
		return nil, err
	}
	if s.graph, err = loadGraph(c); err != nil {
		return nil, err
	}

	clk := clock.System{}
	s.ledger = newLedger(s.store, c, log)
	s.tracker = progress.NewTracker(s.graph, s.store.ProgressRepo(), c.Mastery, clk, s.ledger, log)

	provider, err := llm.NewBaseProvider(ctx, c.LLM, s.store.EventRepo(), log)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	var (
		gen      problemgen.Generator
		analyzer vision.Analyzer
	)
	if c.LLM.Provider != "mock" {
		// Generation retries live in the content resolver.
		gen = problemgen.New(provider, problemgen.DefaultConfig())
		analyzer = vision.New(llm.WithRetry(provider, c.LLM.Retry), c.Vision)
	} else {
		log.Warn("no LLM provider configured, problems come from the bank and placeholders")
	}
	s.resolver = content.New(gen, content.NewStoreBank(s.store.ExerciseRepo()), c.Rewards, c.Content, log)

	var images objectstore.Resolver = objectstore.URLResolver{}
	if c.ObjectStore.Enabled() {
		if s.images, err = objectstore.New(c.ObjectStore); err != nil {
			return nil, err
		}
		images = s.images
	}

	var locker dailyset.Locker
	if c.Redis.URL != "" {
		if s.cache, err = cache.New(ctx, c.Redis.URL); err != nil {
			return nil, err
		}
		locker = cache.NewKeyLocker(s.cache, c.Redis.LockTTL, c.Redis.LockWait, log)
	}

	s.sets = dailyset.NewManager(dailyset.Deps{
		Sets:     s.store.SetRepo(),
		Attempts: s.store.AttemptRepo(),
		Tracker:  s.tracker,
		Composer: composer.New(s.graph, nil),
		Resolver: s.resolver,
		Ledger:   s.ledger,
		Analyzer: analyzer,
		Images:   images,
		Locker:   locker,
		Clock:    clk,
		Log:      log,
	}, c.Sets)
	return s, nil
}

// Close waits for background work and releases connections.
func (s *services) Close() {
	if s.resolver != nil {
		s.resolver.Close()
	}
	if s.cache != nil {
		s.cache.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/practix/internal/store"
)

type fakeEventRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}

func (f *fakeEventRepo) LLMUsage(context.Context, time.Time) ([]store.LLMUsageRow, error) {
	return nil, nil
}

func TestLogging_RecordsEvent(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"ok":true}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 7},
	})
	repo := &fakeEventRepo{}
	p := WithLogging(mock, repo, nil)

	ctx := WithPurpose(context.Background(), "answer-check")
	if _, err := p.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Purpose != "answer-check" || !ev.Success || ev.InputTokens != 12 || ev.OutputTokens != 7 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestLogging_RecordsFailure(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})
	repo := &fakeEventRepo{}
	p := WithLogging(mock, repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("unexpected events %+v", repo.events)
	}
}

func TestLogging_EventRepoErrorIgnored(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, &fakeEventRepo{err: errors.New("disk full")}, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("event repo failure must not fail the request: %v", err)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, nil, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock, got %q", p.ModelID())
	}
}

func TestSerializeRequest(t *testing.T) {
	out := serializeRequest(Request{
		System: "sys",
		Messages: []Message{{
			Role:    RoleUser,
			Content: "check this",
			Images:  []Image{{URL: "https://example.test/a.png", MediaType: "image/png"}},
		}},
		Schema: &Schema{Name: "verdict", Definition: map[string]any{"type": "object"}},
	})
	for _, want := range []string{"[system]\nsys", "[user]\ncheck this", "[image image/png]", "[schema: verdict]"} {
		if !strings.Contains(out, want) {
			t.Errorf("serialized request missing %q:\n%s", want, out)
		}
	}
}

func TestRateLimit_DisabledReturnsInner(t *testing.T) {
	mock := NewMockProvider()
	if p := WithRateLimit(mock, RateLimitConfig{}); p != Provider(mock) {
		t.Fatal("expected provider to be returned unwrapped")
	}
}

func TestRateLimit_HonorsContext(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRateLimit(mock, RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("first call within burst failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected limiter to give up when ctx expires")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call to reach the provider, got %d", mock.CallCount())
	}
}

func TestRetry_ZeroAttemptsStillCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithRetry(mock, RetryConfig{})

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_RetryAfterCappedByMaxWait(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Hour}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRetry(mock, RetryConfig{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("expected retry to succeed quickly, got %v", err)
	}
}

package cache

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
		{"bad-scheme", "http://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	_, err := New(t.Context(), "redis://localhost:59999")
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}

// testCache connects to PRACTIX_TEST_REDIS_URL or skips.
func testCache(t *testing.T) *Cache {
	t.Helper()
	url := os.Getenv("PRACTIX_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PRACTIX_TEST_REDIS_URL not set")
	}
	c, err := New(t.Context(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLock_Exclusive(t *testing.T) {
	c := testCache(t)
	ctx := t.Context()
	key := "practix:test:lock:" + uuid.NewString()

	l, err := c.TryLock(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if _, err := c.TryLock(ctx, key, 5*time.Second); !errors.Is(err, ErrLockHeld) {
		t.Fatalf("second TryLock error = %v, want ErrLockHeld", err)
	}
	if _, err := c.Lock(ctx, key, 5*time.Second, 150*time.Millisecond); !errors.Is(err, ErrLockHeld) {
		t.Fatalf("Lock should time out, got %v", err)
	}

	if err := l.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	l2, err := c.Lock(ctx, key, 5*time.Second, time.Second)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	l2.Release(ctx)
}

func TestLock_ReleaseKeepsForeignToken(t *testing.T) {
	c := testCache(t)
	ctx := t.Context()
	key := "practix:test:lock:" + uuid.NewString()

	stale := &Lock{client: c.Client, key: key, token: "stale"}
	l, err := c.TryLock(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	defer l.Release(ctx)

	if err := stale.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := c.TryLock(ctx, key, time.Second); !errors.Is(err, ErrLockHeld) {
		t.Fatal("a stale holder must not release someone else's lock")
	}
}

func TestKeyLocker_AcquireRelease(t *testing.T) {
	c := testCache(t)
	ctx := t.Context()
	key := "practix:test:lock:" + uuid.NewString()
	k := NewKeyLocker(c, 5*time.Second, 100*time.Millisecond, nil)

	release, err := k.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := k.Acquire(ctx, key); !errors.Is(err, ErrLockHeld) {
		t.Fatalf("second Acquire error = %v, want ErrLockHeld", err)
	}
	release()

	release, err = k.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release()
}

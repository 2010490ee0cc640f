package idempotency

import (
	"context"
	"errors"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupTracker(t *testing.T) *StateTracker {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	opt, err := goredis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := goredis.NewClient(opt)
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("close redis client: %v", err)
		}
	})

	return New(client)
}

func TestStateTracker(t *testing.T) {
	tracker := setupTracker(t)
	ctx := context.Background()

	t.Run("CompletedKeyRejectsRerun", func(t *testing.T) {

		// Arrange
		calls := 0
		run := func(context.Context) error {
			calls++
			return nil
		}
		if err := tracker.Exec(ctx, "key-completed", run); err != nil {
			t.Fatalf("unexpected error on first exec: %v", err)
		}

		// Act
		err := tracker.Exec(ctx, "key-completed", run)

		// Assert
		if !errors.Is(err, ErrAlreadyCompleted) {
			t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected exactly one run, got %d", calls)
		}
	})

	t.Run("InProgressKeyRejectsRerun", func(t *testing.T) {

		// Arrange
		if _, err := tracker.Acquire(ctx, "key-in-progress", defaultLockDuration); err != nil {
			t.Fatalf("acquire: %v", err)
		}

		// Act
		err := tracker.Exec(ctx, "key-in-progress", func(context.Context) error {
			t.Fatal("fn must not run while the key is in progress")
			return nil
		})

		// Assert
		if !errors.Is(err, ErrAlreadyInProgress) {
			t.Fatalf("expected ErrAlreadyInProgress, got %v", err)
		}
	})

	t.Run("FailedKeyRunsAgain", func(t *testing.T) {

		// Arrange
		failure := errors.New("delivery down")
		calls := 0
		if err := tracker.Exec(ctx, "key-failed", func(context.Context) error {
			calls++
			return failure
		}); !errors.Is(err, failure) {
			t.Fatalf("expected the task error back, got %v", err)
		}

		// Act
		err := tracker.Exec(ctx, "key-failed", func(context.Context) error {
			calls++
			return nil
		})

		// Assert
		if err != nil {
			t.Fatalf("expected retry after failure to run, got %v", err)
		}
		if calls != 2 {
			t.Fatalf("expected two runs, got %d", calls)
		}

		err = tracker.Exec(ctx, "key-failed", func(context.Context) error { return nil })
		if !errors.Is(err, ErrAlreadyCompleted) {
			t.Fatalf("expected ErrAlreadyCompleted after successful retry, got %v", err)
		}
	})
}

package jobs_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"log/slog"

	dbfs "github.com/mfreitas/devmarket/db"
	"github.com/mfreitas/devmarket/internal/db"
	"github.com/mfreitas/devmarket/internal/jobs"
)

func setupJobs(t *testing.T) *jobs.Repository {
	t.Helper()
	ctx := context.Background()

	// use shared in-memory DB so multiple connections see the same schema
	d, err := db.New(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return jobs.NewRepository(d)
}

func TestEnqueueAndProcess(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	repo := setupJobs(t)

	handled := make(chan struct{}, 1)
	handlers := map[string]jobs.Handler{
		"test": func(ctx context.Context, j *jobs.Job) error {
			handled <- struct{}{}
			return nil
		},
	}
	pool := jobs.NewWorkerPool(repo, handlers, logger, 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "test", map[string]string{"foo": "bar"}, 10, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-handled:
		// ok
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}
}

func TestFailingJobMovesToDeadLetter(t *testing.T) {
	ctx := context.Background()
	repo := setupJobs(t)

	failed := make(chan struct{}, 4)
	handlers := map[string]jobs.Handler{
		"boom": func(ctx context.Context, j *jobs.Job) error {
			failed <- struct{}{}
			return fmt.Errorf("always fails")
		},
	}
	pool := jobs.NewWorkerPool(repo, handlers, slog.Default(), 1)
	pool.Start(ctx)
	defer pool.Stop()

	// maxAttempts 1 fails straight into the dead letter table
	if _, err := pool.Enqueue(ctx, "boom", nil, 10, 1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-failed:
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		j, err := repo.FetchNext(ctx)
		if err != nil {
			t.Fatalf("fetch next: %v", err)
		}
		if j == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job was not drained from the queue")
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func TestFetchNextClaimsJob(t *testing.T) {
	ctx := context.Background()
	repo := setupJobs(t)

	if _, err := repo.Enqueue(ctx, &jobs.Job{Type: "sweep", ScheduledAt: time.Now()}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	first, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if first == nil {
		t.Fatalf("expected a job from the first fetch")
	}
	if first.Status != "processing" {
		t.Fatalf("fetched job should be claimed as processing, got %q", first.Status)
	}

	// a second worker polling now must not see the claimed job
	second, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if second != nil {
		t.Fatalf("claimed job was fetched twice: %+v", second)
	}

	// releasing for retry makes it fetchable again
	first.Status = "retry"
	if err := repo.UpdateJob(ctx, first); err != nil {
		t.Fatalf("update job: %v", err)
	}
	third, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("third fetch: %v", err)
	}
	if third == nil || third.ID != first.ID {
		t.Fatalf("retried job should be fetchable again, got %+v", third)
	}
}

func TestBackoffDuration(t *testing.T) {
	if d := jobs.BackoffDuration(0); d != time.Second {
		t.Fatalf("attempt 0: got %v", d)
	}
	if d := jobs.BackoffDuration(3); d != 8*time.Second {
		t.Fatalf("attempt 3: got %v", d)
	}
	if d := jobs.BackoffDuration(20); d != 5*time.Minute {
		t.Fatalf("attempt 20 should cap at 5m, got %v", d)
	}
}

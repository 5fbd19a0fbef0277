package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
)

func TestJobStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	ctx := context.Background()
	job := catalog.ScrapeJob{ID: "job-1", Status: catalog.JobStatusPending, TriggeredBy: "bob"}

	if err := store.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if err := store.CreateJob(ctx, job); err == nil {
		t.Fatal("expected duplicate job error")
	}
	if err := store.UpdateJobStatus(ctx, job.ID, catalog.JobStatusRunning, "", 0); err != nil {
		t.Fatalf("UpdateJobStatus running error = %v", err)
	}
	running, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if running.Started == nil || running.Finished != nil {
		t.Fatalf("expected only start timestamp, got %+v", running)
	}

	if err := store.UpdateJobStatus(ctx, job.ID, catalog.JobStatusSucceeded, "", 12); err != nil {
		t.Fatalf("UpdateJobStatus succeeded error = %v", err)
	}
	final, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if final.Status != catalog.JobStatusSucceeded || final.Started == nil || final.Finished == nil {
		t.Fatalf("expected timestamps set, got %+v", final)
	}
	if final.BooksScraped != 12 || final.TriggeredBy != "bob" {
		t.Fatalf("expected counters and audit subject to persist, got %+v", final)
	}

	if err := store.UpdateJobStatus(ctx, job.ID, catalog.JobStatusFailed, "late", 0); err == nil {
		t.Fatal("expected terminal job to reject further transitions")
	}
}

func TestJobStoreUnknownJob(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	_, err := store.GetJob(context.Background(), "missing")
	if !errors.Is(err, catalog.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	err = store.UpdateJobStatus(context.Background(), "missing", catalog.JobStatusRunning, "", 0)
	if !errors.Is(err, catalog.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestJobStoreListJobsOrdersByCreation(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()
	for i, id := range []string{"c", "a", "b"} {
		job := catalog.ScrapeJob{ID: id, Status: catalog.JobStatusPending, Created: base.Add(time.Duration(2-i) * time.Minute)}
		if err := store.CreateJob(ctx, job); err != nil {
			t.Fatalf("CreateJob(%s) error = %v", id, err)
		}
	}

	jobs, err := store.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	got := []string{jobs[0].ID, jobs[1].ID, jobs[2].ID}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

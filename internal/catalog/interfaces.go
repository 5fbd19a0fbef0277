package catalog

import (
	"context"
	"time"
)

// BookStore persists catalog rows.
type BookStore interface {
	// ReplaceBooks overwrites the whole catalog with books.
	ReplaceBooks(ctx context.Context, books []Book) error
	ListBooks(ctx context.Context, filter BookFilter) ([]Book, error)
	GetBook(ctx context.Context, id string) (Book, error)
	ListCategories(ctx context.Context, filter CategoryFilter) ([]string, error)
	CountBooks(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// JobStore persists scrape job metadata.
type JobStore interface {
	CreateJob(ctx context.Context, job ScrapeJob) error
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errText string, booksScraped int) error
	GetJob(ctx context.Context, jobID string) (ScrapeJob, error)
	ListJobs(ctx context.Context) ([]ScrapeJob, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

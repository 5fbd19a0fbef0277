// Package catalog defines the book catalog and scrape job types shared across subsystems.
package catalog

import (
	"errors"
	"time"
)

// ErrBookNotFound is returned when a book ID has no row in the store.
var ErrBookNotFound = errors.New("book not found")

// ErrJobNotFound is returned when a scrape job ID is unknown.
var ErrJobNotFound = errors.New("scrape job not found")

// JobStatus represents the lifecycle state of a scrape job.
type JobStatus string

// Scrape job status values persisted in the job store.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// ScrapeJob is the supervisor's record of one scraping run.
type ScrapeJob struct {
	ID           string     `json:"id"`
	Status       JobStatus  `json:"status"`
	TriggeredBy  string     `json:"triggered_by"`
	Runner       string     `json:"runner"`
	Created      time.Time  `json:"created_at"`
	Started      *time.Time `json:"started_at,omitempty"`
	Finished     *time.Time `json:"finished_at,omitempty"`
	ErrorText    string     `json:"error_text,omitempty"`
	BooksScraped int        `json:"books_scraped"`
}

// Book is a single catalog row.
type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Price        float64   `json:"price"`
	Rating       int       `json:"rating"`
	Availability string    `json:"availability"`
	Stock        int       `json:"stock"`
	Category     string    `json:"category"`
	ImageURL     string    `json:"image_url"`
	URL          string    `json:"url"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// InStock reports whether at least one copy is available.
func (b Book) InStock() bool {
	return b.Stock > 0
}

// BookFilter narrows ListBooks results. Zero values mean "no constraint".
// Title and Category are case-insensitive substring matches.
type BookFilter struct {
	Title       string
	Category    string
	MinPrice    *float64
	MaxPrice    *float64
	InStockOnly bool
	Limit       int
	Offset      int
}

// CategoryFilter narrows ListCategories results.
type CategoryFilter struct {
	InStockOnly bool
}

// Overview summarizes the whole catalog.
type Overview struct {
	TotalBooks         int         `json:"total_books"`
	TotalCategories    int         `json:"total_categories"`
	AveragePrice       float64     `json:"average_price"`
	InStock            int         `json:"in_stock"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// CategoryStats summarizes one category.
type CategoryStats struct {
	Category      string  `json:"category"`
	Books         int     `json:"books"`
	AveragePrice  float64 `json:"average_price"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
	AverageRating float64 `json:"average_rating"`
}

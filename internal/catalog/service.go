package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidQuery is returned for out-of-range query parameters.
var ErrInvalidQuery = errors.New("invalid query")

const (
	defaultPageSize = 50
	maxPageSize     = 1000
	defaultTopRated = 10
)

// Service answers the read-only catalog queries served by the API.
type Service struct {
	store BookStore
}

// NewService constructs a Service over store.
func NewService(store BookStore) *Service {
	return &Service{store: store}
}

// List returns one page of in-stock books ordered by title.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Book, error) {
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must be >= 0", ErrInvalidQuery)
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	books, err := s.store.ListBooks(ctx, BookFilter{InStockOnly: true, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Get fetches a single book.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return Book{}, fmt.Errorf("get book %q: %w", id, err)
	}
	return book, nil
}

// Search matches books by title and/or category substring, ignoring case.
func (s *Service) Search(ctx context.Context, title, category string) ([]Book, error) {
	if title == "" && category == "" {
		return nil, fmt.Errorf("%w: title or category required", ErrInvalidQuery)
	}
	books, err := s.store.ListBooks(ctx, BookFilter{Title: title, Category: category})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// PriceRange returns books priced within [minPrice, maxPrice].
func (s *Service) PriceRange(ctx context.Context, minPrice, maxPrice float64) ([]Book, error) {
	if math.IsNaN(minPrice) || math.IsNaN(maxPrice) || minPrice < 0 || maxPrice < minPrice {
		return nil, fmt.Errorf("%w: need 0 <= min <= max", ErrInvalidQuery)
	}
	books, err := s.store.ListBooks(ctx, BookFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	if err != nil {
		return nil, fmt.Errorf("price range: %w", err)
	}
	return books, nil
}

// TopRated returns the highest rated books, cheapest first among equals.
func (s *Service) TopRated(ctx context.Context, limit int) ([]Book, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be >= 0", ErrInvalidQuery)
	}
	if limit == 0 {
		limit = defaultTopRated
	}
	books, err := s.store.ListBooks(ctx, BookFilter{})
	if err != nil {
		return nil, fmt.Errorf("top rated: %w", err)
	}
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].Rating != books[j].Rating {
			return books[i].Rating > books[j].Rating
		}
		if books[i].Price != books[j].Price {
			return books[i].Price < books[j].Price
		}
		return books[i].Title < books[j].Title
	})
	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

// Categories lists distinct categories that have a book in stock.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.ListCategories(ctx, CategoryFilter{InStockOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Overview computes catalog-wide statistics.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	books, err := s.store.ListBooks(ctx, BookFilter{})
	if err != nil {
		return Overview{}, fmt.Errorf("overview: %w", err)
	}
	return Summarize(books), nil
}

// CategoryStats computes per-category statistics.
func (s *Service) CategoryStats(ctx context.Context) ([]CategoryStats, error) {
	books, err := s.store.ListBooks(ctx, BookFilter{})
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	return SummarizeByCategory(books), nil
}

// Count returns the number of stored books regardless of stock.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.CountBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// Ready reports whether the backing store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("book store ping: %w", err)
	}
	return nil
}

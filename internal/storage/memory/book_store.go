package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
)

// BookStore keeps the catalog in memory, sorted by title.
type BookStore struct {
	mu    sync.RWMutex
	books []catalog.Book
	byID  map[string]int
}

// NewBookStore constructs an empty BookStore.
func NewBookStore() *BookStore {
	return &BookStore{byID: make(map[string]int)}
}

// ReplaceBooks swaps the whole catalog in one step.
func (s *BookStore) ReplaceBooks(_ context.Context, books []catalog.Book) error {
	next := make([]catalog.Book, len(books))
	copy(next, books)
	sortBooks(next)
	index := make(map[string]int, len(next))
	for i, b := range next {
		if b.ID == "" {
			return fmt.Errorf("book %q has no id", b.Title)
		}
		if _, dup := index[b.ID]; dup {
			return fmt.Errorf("duplicate book id %q", b.ID)
		}
		index[b.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = next
	s.byID = index
	return nil
}

// ListBooks returns the books matching filter.
func (s *BookStore) ListBooks(_ context.Context, filter catalog.BookFilter) ([]catalog.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	title := strings.ToLower(filter.Title)
	category := strings.ToLower(filter.Category)
	out := make([]catalog.Book, 0)
	skipped := 0
	for _, b := range s.books {
		if title != "" && !strings.Contains(strings.ToLower(b.Title), title) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(b.Category), category) {
			continue
		}
		if filter.InStockOnly && !b.InStock() {
			continue
		}
		if filter.MinPrice != nil && b.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && b.Price > *filter.MaxPrice {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, b)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// GetBook fetches a book by ID.
func (s *BookStore) GetBook(_ context.Context, id string) (catalog.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return catalog.Book{}, catalog.ErrBookNotFound
	}
	return s.books[i], nil
}

// ListCategories returns distinct categories in alphabetical order.
func (s *BookStore) ListCategories(_ context.Context, filter catalog.CategoryFilter) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, b := range s.books {
		if _, ok := seen[b.Category]; ok || b.Category == "" {
			continue
		}
		if filter.InStockOnly && !b.InStock() {
			continue
		}
		seen[b.Category] = struct{}{}
		out = append(out, b.Category)
	}
	sort.Strings(out)
	return out, nil
}

// CountBooks returns the number of stored books.
func (s *BookStore) CountBooks(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books), nil
}

// Ping always succeeds.
func (s *BookStore) Ping(context.Context) error {
	return nil
}

func sortBooks(books []catalog.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].Title != books[j].Title {
			return books[i].Title < books[j].Title
		}
		return books[i].ID < books[j].ID
	})
}

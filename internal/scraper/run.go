// Package scraper provides the collaborators that repopulate the catalog:
// an in-process colly crawler of books.toscrape.com and an external command.
package scraper

import (
	"sync"

	"github.com/JakeFAU/books-catalog-api/internal/supervisor"
)

// run is the supervisor.Handle shared by both runners.
type run struct {
	done   chan struct{}
	once   sync.Once
	result supervisor.Result
	err    error
}

func newRun() *run {
	return &run{done: make(chan struct{})}
}

func (r *run) finish(result supervisor.Result, err error) {
	r.once.Do(func() {
		r.result = result
		r.err = err
		close(r.done)
	})
}

// Wait blocks until the run finishes.
func (r *run) Wait() (supervisor.Result, error) {
	<-r.done
	return r.result, r.err
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	if max <= 0 {
		max = 4096
	}
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

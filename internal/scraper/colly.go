package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
	"github.com/JakeFAU/books-catalog-api/internal/supervisor"
)

// DefaultStartURL is the first listing page of the public catalog.
const DefaultStartURL = "https://books.toscrape.com/"

// ErrNoBooks fails a run that finished without scraping anything.
var ErrNoBooks = errors.New("no books scraped")

var (
	stockPattern = regexp.MustCompile(`\((\d+) available\)`)
	ratingWords  = map[string]int{"One": 1, "Two": 2, "Three": 3, "Four": 4, "Five": 5}
)

// CollyConfig configures CollyRunner.
type CollyConfig struct {
	StartURL       string
	UserAgent      string
	MaxPages       int // listing pages to follow; 0 means all
	Parallelism    int
	RequestTimeout time.Duration
	// Delay is the pause between requests to the catalog host.
	Delay         time.Duration
	RespectRobots bool
}

// CollyRunner crawls the catalog in-process and replaces the book store.
type CollyRunner struct {
	cfg    CollyConfig
	books  catalog.BookStore
	clock  catalog.Clock
	logger *zap.Logger
}

// NewCollyRunner builds a CollyRunner writing into books.
func NewCollyRunner(cfg CollyConfig, books catalog.BookStore, clock catalog.Clock, logger *zap.Logger) *CollyRunner {
	if cfg.StartURL == "" {
		cfg.StartURL = DefaultStartURL
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollyRunner{cfg: cfg, books: books, clock: clock, logger: logger}
}

// Name implements supervisor.Runner.
func (r *CollyRunner) Name() string {
	return "colly"
}

// Start validates the start URL and crawls in the background.
func (r *CollyRunner) Start(ctx context.Context, job catalog.ScrapeJob) (supervisor.Handle, error) {
	start, err := url.Parse(r.cfg.StartURL)
	if err != nil {
		return nil, fmt.Errorf("parse start url: %w", err)
	}
	if (start.Scheme != "http" && start.Scheme != "https") || start.Host == "" {
		return nil, fmt.Errorf("start url %q must be an absolute http(s) URL", r.cfg.StartURL)
	}

	h := newRun()
	go func() {
		h.finish(r.crawl(ctx, job, start))
	}()
	return h, nil
}

type crawlState struct {
	mu       sync.Mutex
	books    map[string]catalog.Book
	firstErr error
	failures int
	pages    atomic.Int64
}

func (s *crawlState) add(b catalog.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[b.ID] = b
}

func (s *crawlState) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	if s.firstErr == nil {
		s.firstErr = err
	}
}

func (s *crawlState) collected() []catalog.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *CollyRunner) crawl(ctx context.Context, job catalog.ScrapeJob, start *url.URL) (supervisor.Result, error) {
	logger := r.logger.With(zap.String("job_id", job.ID), zap.String("start_url", start.String()))
	state := &crawlState{books: make(map[string]catalog.Book)}
	state.pages.Store(1)

	opts := []colly.CollectorOption{
		colly.AllowedDomains(start.Hostname()),
		colly.Async(true),
		colly.StdlibContext(ctx),
	}
	if r.cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(r.cfg.UserAgent))
	}
	collector := colly.NewCollector(opts...)
	collector.IgnoreRobotsTxt = !r.cfg.RespectRobots
	collector.SetRequestTimeout(r.cfg.RequestTimeout)
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: r.cfg.Parallelism,
		Delay:       r.cfg.Delay,
	}); err != nil {
		return supervisor.Result{}, fmt.Errorf("set collector limits: %w", err)
	}

	collector.OnRequest(func(req *colly.Request) {
		if ctx.Err() != nil {
			req.Abort()
		}
	})
	collector.OnHTML("body", func(e *colly.HTMLElement) {
		if e.DOM.Find("article.product_page").Length() > 0 {
			r.handleDetail(e, state, logger)
			return
		}
		r.handleListing(e, state, logger)
	})
	collector.OnError(func(resp *colly.Response, err error) {
		logger.Warn("scrape request failed",
			zap.String("url", resp.Request.URL.String()),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err),
		)
		state.fail(fmt.Errorf("%s: %w", resp.Request.URL, err))
	})

	if err := collector.Visit(start.String()); err != nil {
		return supervisor.Result{}, fmt.Errorf("visit %s: %w", start, err)
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return supervisor.Result{}, fmt.Errorf("scrape canceled: %w", err)
	}
	books := state.collected()
	if len(books) == 0 {
		if state.firstErr != nil {
			return supervisor.Result{}, fmt.Errorf("%w: %w", ErrNoBooks, state.firstErr)
		}
		return supervisor.Result{}, ErrNoBooks
	}
	if state.failures > 0 {
		logger.Warn("scrape finished with failed requests",
			zap.Int("failures", state.failures),
			zap.Error(state.firstErr),
		)
	}
	if err := r.books.ReplaceBooks(ctx, books); err != nil {
		return supervisor.Result{BooksScraped: len(books)}, fmt.Errorf("store books: %w", err)
	}
	logger.Info("catalog replaced",
		zap.Int("books", len(books)),
		zap.Int64("listing_pages", state.pages.Load()),
	)
	return supervisor.Result{BooksScraped: len(books)}, nil
}

func (r *CollyRunner) handleListing(e *colly.HTMLElement, state *crawlState, logger *zap.Logger) {
	e.ForEach("article.product_pod h3 a", func(_ int, a *colly.HTMLElement) {
		visit(e.Request, a.Attr("href"), logger)
	})
	next := e.ChildAttr("li.next a", "href")
	if next == "" {
		return
	}
	if r.cfg.MaxPages > 0 && state.pages.Load() >= int64(r.cfg.MaxPages) {
		return
	}
	state.pages.Add(1)
	visit(e.Request, next, logger)
}

func (r *CollyRunner) handleDetail(e *colly.HTMLElement, state *crawlState, logger *zap.Logger) {
	book := parseBook(e)
	if book.ID == "" {
		logger.Warn("book page without UPC", zap.String("url", e.Request.URL.String()))
		return
	}
	book.ScrapedAt = r.clock.Now()
	state.add(book)
}

func visit(req *colly.Request, href string, logger *zap.Logger) {
	if href == "" {
		return
	}
	err := req.Visit(href)
	var alreadyVisited *colly.AlreadyVisitedError
	if err != nil && !errors.As(err, &alreadyVisited) && !errors.Is(err, colly.ErrForbiddenDomain) {
		logger.Debug("skip link", zap.String("href", href), zap.Error(err))
	}
}

func parseBook(e *colly.HTMLElement) catalog.Book {
	book := catalog.Book{
		Title:    strings.TrimSpace(e.ChildText("div.product_main h1")),
		Price:    parsePrice(e.ChildText("div.product_main p.price_color")),
		Rating:   parseRating(e.ChildAttr("div.product_main p.star-rating", "class")),
		Category: strings.TrimSpace(e.ChildText("ul.breadcrumb li:nth-child(3) a")),
		URL:      e.Request.URL.String(),
	}
	if src := e.ChildAttr("div.item.active img", "src"); src != "" {
		book.ImageURL = e.Request.AbsoluteURL(src)
	}
	e.ForEach("table tr", func(_ int, row *colly.HTMLElement) {
		value := strings.TrimSpace(row.ChildText("td"))
		switch strings.TrimSpace(row.ChildText("th")) {
		case "UPC":
			book.ID = value
		case "Availability":
			book.Availability = value
			book.Stock = parseStock(value)
		}
	})
	return book
}

func parsePrice(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}

func parseRating(class string) int {
	for _, field := range strings.Fields(class) {
		if n, ok := ratingWords[field]; ok {
			return n
		}
	}
	return 0
}

func parseStock(availability string) int {
	m := stockPattern.FindStringSubmatch(availability)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JakeFAU/books-catalog-api/internal/auth"
	"github.com/JakeFAU/books-catalog-api/internal/catalog"
	"github.com/JakeFAU/books-catalog-api/internal/policy/ratelimit"
	"github.com/JakeFAU/books-catalog-api/internal/storage/memory"
	"github.com/JakeFAU/books-catalog-api/internal/supervisor"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeIDGen struct {
	n atomic.Int64
}

func (g *fakeIDGen) NewID() (string, error) {
	return fmt.Sprintf("id-%d", g.n.Add(1)), nil
}

// slowRunner starts jobs that only finish when release is closed.
type slowRunner struct {
	release  chan struct{}
	startErr error
	started  atomic.Int64
}

type slowHandle struct{ release chan struct{} }

func (h slowHandle) Wait() (supervisor.Result, error) {
	<-h.release
	return supervisor.Result{BooksScraped: 1}, nil
}

func (r *slowRunner) Name() string { return "slow" }

func (r *slowRunner) Start(context.Context, catalog.ScrapeJob) (supervisor.Handle, error) {
	if r.startErr != nil {
		return nil, r.startErr
	}
	r.started.Add(1)
	return slowHandle{release: r.release}, nil
}

type testEnv struct {
	server      *Server
	clock       *fakeClock
	runner      *slowRunner
	books       *memory.BookStore
	jobs        *memory.JobStore
	predictions *memory.PredictionStore
	sup         *supervisor.Supervisor
}

func newTestEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	ids := &fakeIDGen{}
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    "api-test-secret",
		Algorithm: "HS256",
		TTL:       30 * time.Minute,
	}, clock, ids)
	require.NoError(t, err)

	authSvc := auth.NewService(memory.NewUserStore(), auth.NewBcryptHasher(bcrypt.MinCost), tokens, zap.NewNop())
	runner := &slowRunner{release: make(chan struct{})}
	jobs := memory.NewJobStore()
	sup := supervisor.New(runner, jobs, ids, clock, supervisor.Config{}, zap.NewNop())
	books := memory.NewBookStore()
	predictions := memory.NewPredictionStore()

	deps := Deps{
		Auth:        authSvc,
		Verifier:    tokens,
		Scraper:     sup,
		Catalog:     catalog.NewService(books),
		Jobs:        sup,
		Predictions: catalog.NewPredictionService(predictions, clock, ids),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	env := &testEnv{
		server:      NewServer(deps, zap.NewNop()),
		clock:       clock,
		runner:      runner,
		books:       books,
		jobs:        jobs,
		predictions: predictions,
		sup:         sup,
	}
	t.Cleanup(func() {
		select {
		case <-runner.release:
		default:
			close(runner.release)
		}
		require.NoError(t, sup.Shutdown(context.Background()))
	})
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	req := httptest.NewRequest(http.MethodPost, "/add_user", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *testEnv) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *testEnv) withAuth(method, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return e.do(req)
}

func (e *testEnv) postJSON(path, header, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return e.do(req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) accessToken(t *testing.T, username, password string) string {
	t.Helper()
	require.Equal(t, http.StatusOK, e.register(t, username, password).Code)
	rec := e.login(t, username, password)
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[tokenResponse](t, rec).AccessToken
}

func TestServer_EndToEndScenario(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.register(t, "bob", "pw123")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, registerResponse{Message: "user created", Username: "bob"}, decode[registerResponse](t, rec))

	rec = env.login(t, "bob", "pw123")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[tokenResponse](t, rec)
	require.Equal(t, "bearer", login.TokenType)
	require.NotEmpty(t, login.AccessToken)
	require.EqualValues(t, 1800, login.ExpiresIn)

	rec = env.withAuth(http.MethodGet, "/api/v1/scraping/trigger", "Bearer "+login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	trigger := decode[map[string]any](t, rec)
	require.Equal(t, "accepted", trigger["status"])
	require.Equal(t, "bob", trigger["usuario"])
	require.NotEmpty(t, trigger["job_id"])

	rec = env.withAuth(http.MethodGet, "/api/v1/scraping/trigger", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.withAuth(http.MethodPost, "/api/v1/auth/refresh", "Bearer "+login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decode[tokenResponse](t, rec)
	require.NotEqual(t, login.AccessToken, refreshed.AccessToken)

	for _, token := range []string{login.AccessToken, refreshed.AccessToken} {
		rec = env.withAuth(http.MethodGet, "/api/v1/scraping/trigger", "Bearer "+token)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestServer_TokenRejectionsAreUniform(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.accessToken(t, "alice", "secret")

	wrongScheme := env.withAuth(http.MethodGet, "/api/v1/scraping/trigger", "Token abc")
	env.clock.Advance(time.Hour)
	expired := env.withAuth(http.MethodGet, "/api/v1/scraping/trigger", "Bearer "+token)
	refreshExpired := env.withAuth(http.MethodPost, "/api/v1/auth/refresh", "Bearer "+token)
	refreshMissing := env.withAuth(http.MethodPost, "/api/v1/auth/refresh", "")

	for _, rec := range []*httptest.ResponseRecorder{wrongScheme, expired, refreshExpired, refreshMissing} {
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
		require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	}
	require.Equal(t, wrongScheme.Body.String(), expired.Body.String())
	require.Zero(t, env.runner.started.Load())
}

func TestServer_TriggerDoesNotWaitForJob(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.accessToken(t, "alice", "secret")

	var wg sync.WaitGroup
	codes := make([]int, 2)
	start := time.Now()
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = env.withAuth(http.MethodGet, "/api/v1/scraping/trigger", "Bearer "+token).Code
		}()
	}
	wg.Wait()

	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)
	require.EqualValues(t, 2, env.runner.started.Load())
	require.Len(t, env.sup.Running(), 2)
}

func TestServer_TriggerLaunchFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.runner.startErr = errors.New("executable file not found")
	token := env.accessToken(t, "alice", "secret")

	rec := env.withAuth(http.MethodGet, "/api/v1/scraping/trigger", "Bearer "+token)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, rec.Body.String(), "executable")

	jobs, err := env.jobs.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, catalog.JobStatusFailed, jobs[0].Status)
}

func TestServer_RegisterValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/add_user", bytes.NewBufferString("{invalid"))
	rec := env.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid JSON")

	rec = env.register(t, "", "pw")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "username")

	rec = env.register(t, "carol", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, env.register(t, "carol", "pw").Code)
	rec = env.register(t, "carol", "other")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "already registered")
}

func TestServer_LoginFailures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.register(t, "bob", "pw123").Code)

	rec := env.login(t, "bob", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	wrongPassword := env.login(t, "bob", "nope")
	unknownUser := env.login(t, "nobody", "pw123")
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	require.JSONEq(t, `{"error":"invalid credentials"}`, unknownUser.Body.String())
	require.Equal(t, "Bearer", wrongPassword.Header().Get("WWW-Authenticate"))
	require.Equal(t, "Bearer", unknownUser.Header().Get("WWW-Authenticate"))
}

func seedBooks(t *testing.T, store *memory.BookStore) {
	t.Helper()
	require.NoError(t, store.ReplaceBooks(context.Background(), []catalog.Book{
		{ID: "a1", Title: "A Light in the Attic", Price: 51.77, Rating: 3, Stock: 22, Category: "Poetry"},
		{ID: "b2", Title: "Tipping the Velvet", Price: 53.74, Rating: 1, Stock: 20, Category: "Historical Fiction"},
		{ID: "c3", Title: "Soumission", Price: 50.10, Rating: 5, Stock: 0, Category: "Fiction"},
		{ID: "d4", Title: "Sharp Objects", Price: 47.82, Rating: 4, Stock: 20, Category: "Mystery"},
	}))
}

func TestServer_CatalogRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedBooks(t, env.books)
	get := func(path string) *httptest.ResponseRecorder {
		return env.do(httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := get("/api/v1/books?limit=2&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[[]catalog.Book](t, rec)
	require.Len(t, page, 2)
	require.Equal(t, []string{"Sharp Objects", "Tipping the Velvet"}, []string{page[0].Title, page[1].Title})

	rec = get("/api/v1/books")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, b := range decode[[]catalog.Book](t, rec) {
		require.NotEqual(t, "c3", b.ID, "out of stock books are not listed")
	}

	rec = get("/api/v1/books/c3")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Soumission", decode[catalog.Book](t, rec).Title)

	rec = get("/api/v1/books/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = get("/api/v1/books/search?title=velvet")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]catalog.Book](t, rec), 1)

	rec = get("/api/v1/books/search?category=fict")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]catalog.Book](t, rec), 2)

	rec = get("/api/v1/books/search")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get("/api/v1/books/top-rated?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[[]catalog.Book](t, rec)
	require.Equal(t, []string{"c3", "d4"}, []string{top[0].ID, top[1].ID})

	rec = get("/api/v1/books/price-range?min=50&max=52")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]catalog.Book](t, rec), 2)

	for _, query := range []string{"min=abc&max=52", "min=0&max=NaN", "min=NaN&max=10", "min=0&max=Inf", "min=-Inf&max=10"} {
		rec = get("/api/v1/books/price-range?" + query)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
	}

	rec = get("/api/v1/books?limit=x")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get("/api/v1/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"categories":["Historical Fiction","Mystery","Poetry"]}`, rec.Body.String())

	rec = get("/api/v1/stats/overview")
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decode[catalog.Overview](t, rec)
	require.Equal(t, 4, overview.TotalBooks)
	require.Equal(t, 3, overview.InStock)

	rec = get("/api/v1/stats/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]catalog.CategoryStats](t, rec), 4)
}

func TestServer_LivenessReadinessAndMetrics(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestServer_RequestIDIsPropagated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := env.do(req)
	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestCredentialRoutesAreThrottled(t *testing.T) {
	t.Parallel()
	limiterClock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	env := newTestEnv(t, func(d *Deps) {
		d.Limiter = ratelimit.New(ratelimit.Config{RPS: 1, Burst: 2}, limiterClock)
	})

	require.Equal(t, http.StatusOK, env.register(t, "carol", "pw").Code)
	require.Equal(t, http.StatusOK, env.login(t, "carol", "pw").Code)

	rec := env.login(t, "carol", "pw")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.JSONEq(t, `{"error":"too many requests"}`, rec.Body.String())

	limiterClock.Advance(time.Second)
	require.Equal(t, http.StatusOK, env.login(t, "carol", "pw").Code)
}

func TestServer_HealthReportsBookCount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","total_livros":0}`, rec.Body.String())

	seedBooks(t, env.books)
	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","total_livros":4}`, rec.Body.String())
}

type countFailingCatalog struct {
	Catalog
}

func (countFailingCatalog) Count(context.Context) (int, error) {
	return 0, errors.New("connection refused")
}

func TestServer_HealthUnavailable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(d *Deps) {
		d.Catalog = countFailingCatalog{Catalog: d.Catalog}
	})
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "error", decode[map[string]string](t, rec)["status"])
	require.NotContains(t, rec.Body.String(), "refused")
}

func TestServer_EndpointsListsRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/endpoints", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]endpoint](t, rec)

	byPath := make(map[string][]string, len(listed))
	paths := make([]string, 0, len(listed))
	for _, e := range listed {
		byPath[e.Path] = e.Methods
		paths = append(paths, e.Path)
	}
	require.IsIncreasing(t, paths)
	require.Equal(t, []string{"POST"}, byPath["/add_user"])
	require.Equal(t, []string{"GET"}, byPath["/api/v1/books"])
	require.Equal(t, []string{"GET"}, byPath["/api/v1/books/{id}"])
	require.Equal(t, []string{"GET"}, byPath["/api/v1/endpoints"])
	require.Equal(t, []string{"GET", "POST"}, byPath["/api/v1/ml/predictions"])
	require.Equal(t, []string{"GET"}, byPath["/api/v1/scraping/trigger"])
}

func TestServer_MLFeaturesAndTrainingData(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedBooks(t, env.books)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/ml/features", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	features := decode[featuresResponse](t, rec)
	require.Equal(t, 4, features.Total)
	require.Equal(t, catalog.FeatureRow{
		Title:    "A Light in the Attic",
		Rating:   3,
		Price:    51.77,
		Category: "Poetry",
		Stock:    22,
	}, features.Features[0])

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/ml/training-data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	set := decode[catalog.TrainingSet](t, rec)
	require.Equal(t, []string{"Fiction", "Historical Fiction", "Mystery", "Poetry"}, set.Categories)
	require.Equal(t, 4, set.Total)
	require.Equal(t, catalog.TrainingSample{Rating: 3, Category: []int{0, 0, 0, 1}, Price: 51.77}, set.Samples[0])
	require.Contains(t, rec.Body.String(), `"X_categoria_ohe"`)
	require.Contains(t, rec.Body.String(), `"one_hot_encoding_map"`)
}

func TestServer_Predictions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := "Bearer " + env.accessToken(t, "alice", "secret")

	rec := env.postJSON("/api/v1/ml/predictions", "", `[{"predicted_price": 1}]`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.postJSON("/api/v1/ml/predictions", token, `[
		{"predicted_price": 42.5, "input_features": {"rating": 4, "categoria": "Poetry"}, "model_version": "lr-v1"},
		{"predicted_price": "cheap"},
		{"input_features": {"rating": 2}}
	]`)
	require.Equal(t, http.StatusOK, rec.Code)
	batch := decode[catalog.PredictionBatch](t, rec)
	require.Equal(t, catalog.PredictionsPartial, batch.Status)
	require.Equal(t, 3, batch.Received)
	require.Equal(t, 1, batch.Stored)

	rec = env.postJSON("/api/v1/ml/predictions", token, `[{"predicted_price": 17}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, catalog.PredictionsStored, decode[catalog.PredictionBatch](t, rec).Status)

	for _, body := range []string{`{"predicted_price": 1}`, `[1, 2]`, `null`, `[{"predicted_price": 1}`} {
		rec = env.postJSON("/api/v1/ml/predictions", token, body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec = env.withAuth(http.MethodGet, "/api/v1/ml/predictions", token)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decode[[]catalog.Prediction](t, rec)
	require.Len(t, stored, 2)
	require.Equal(t, 17.0, stored[0].PredictedPrice)
	require.Equal(t, "lr-v1", stored[1].ModelVersion)
	require.Equal(t, "alice", stored[1].SubmittedBy)
	require.JSONEq(t, `{"rating": 4, "categoria": "Poetry"}`, string(stored[1].InputFeatures))
}

func TestServer_ScrapeJobsAreReadable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := "Bearer " + env.accessToken(t, "alice", "secret")

	rec := env.withAuth(http.MethodGet, "/api/v1/scraping/trigger", token)
	require.Equal(t, http.StatusOK, rec.Code)
	jobID := decode[triggerResponse](t, rec).JobID

	rec = env.withAuth(http.MethodGet, "/api/v1/scraping/jobs", token)
	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decode[[]catalog.ScrapeJob](t, rec)
	require.Len(t, jobs, 1)
	require.Equal(t, jobID, jobs[0].ID)
	require.Equal(t, catalog.JobStatusRunning, jobs[0].Status)

	rec = env.withAuth(http.MethodGet, "/api/v1/scraping/jobs/"+jobID, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", decode[catalog.ScrapeJob](t, rec).TriggeredBy)

	rec = env.withAuth(http.MethodGet, "/api/v1/scraping/jobs/nope", token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.withAuth(http.MethodGet, "/api/v1/scraping/jobs", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

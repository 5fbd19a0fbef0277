// Package main hosts the books catalog API entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server routes user registration, JWT login and refresh, the read-only
//     catalog queries, the ML export and prediction routes, and the Bearer-guarded scraping trigger.
//   - Auth: internal/auth hashes passwords with bcrypt and signs HMAC JWTs; the Guard middleware
//     resolves the Bearer token to a subject and rejects everything else with one uniform 401.
//   - Scraping: the trigger hands off to internal/supervisor, which records a job and starts the
//     configured runner (in-process Colly crawl or an external command) on its own context, so the
//     HTTP response never waits for the scrape.
//   - Persistence: users, books and ML predictions live in Postgres when db.dsn is set, otherwise
//     in memory. Job records are always in memory.
//   - Plumbing: Viper reads config.yaml and BOOKS_* env vars (a .env file is loaded first when
//     present); zap logs; Prometheus metrics are served on /metrics.
//
// Quick checklist:
//   - Set BOOKS_AUTH_JWT_SECRET. Nothing starts without it.
//   - Run locally: go run ./cmd/booksapi -config config.yaml
//   - SIGINT/SIGTERM drains HTTP requests and waits for running scrape jobs up to
//     server.shutdown_timeout_seconds before canceling them.
package main

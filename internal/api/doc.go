// Package api hosts the HTTP server, middleware, and handlers of the books
// catalog service. Notable routes:
//   - POST /add_user, POST /api/v1/auth/login and POST /api/v1/auth/refresh
//     for the credential and token lifecycle. Registration and login are
//     throttled per client IP when Deps.Limiter is set.
//   - GET /api/v1/scraping/trigger (bearer protected) to start a background
//     scrape that repopulates the catalog, and GET /api/v1/scraping/jobs[/{id}]
//     to read back what the runs recorded.
//   - GET /api/v1/books..., /api/v1/categories and /api/v1/stats/... for
//     read-only catalog browsing. Listings and categories only show books
//     in stock.
//   - GET /api/v1/ml/features and /api/v1/ml/training-data export the catalog
//     for model training; /api/v1/ml/predictions (bearer protected) stores
//     and lists model outputs.
//   - GET /api/v1/health reports the book count and /api/v1/endpoints lists
//     every route for API explorer clients.
//   - GET /healthz, /readyz and /metrics for liveness, readiness and Prometheus.
package api

// Package http implements the HTTP handlers of the strength service. It is a
// thin layer between chi routing and the services package: handlers parse
// and validate query parameters, call a service and render JSON.
//
// # Routes
//
//	GET  /api/v1/health                 liveness summary
//	GET  /api/v1/health/ready           503 until the first run completes
//	GET  /api/v1/version                build and runtime information
//	GET  /api/v1/stats                  data directory statistics
//	GET  /api/v1/strength               results of the latest run
//	GET  /api/v1/strength/thresholds    percentile cut-offs of one series
//	POST /api/v1/strength/refresh       reload inputs and rerun
//	GET  /metrics                       Prometheus scrape endpoint
//
// # Error Handling
//
// Every error is rendered as an RFC 7807 problem by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/strength/insufficient-history",
//	    "title": "Insufficient History",
//	    "status": 422,
//	    "detail": "...",
//	    "instance": "/api/v1/strength",
//	    "have": 12,
//	    "need": 20
//	}
//
// Service sentinels map to 503 (no run yet), 409 (refresh already running)
// and 404 (no participant input).
package http

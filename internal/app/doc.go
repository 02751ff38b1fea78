// Package app wires the strength server together: configuration, logging,
// OpenTelemetry, the strength, report and health services, and the chi
// router that exposes them.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, an optional YAML file and FNO_* env vars
//	2. Initialize logging and OpenTelemetry (Prometheus exporter)
//	3. Resolve and create the data, downloads, reports and logs directories
//	4. Build the participant loader and the strength, report and health services
//	5. Set up middleware and routes under /api/v1 plus /metrics
//	6. Start the HTTP server and the first strength refresh
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout and flushes telemetry.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app

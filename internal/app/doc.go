// Package app wires the service together: configuration, logging, the
// dataset cache, the analytics services, HTTP transport and metrics, and
// graceful shutdown.
//
// Initialization order:
//
//	1. Load configuration (YAML file, then environment)
//	2. Initialize the slog logger
//	3. Create the dataset cache and services
//	4. Build the router with middleware and handlers
//	5. Start the HTTP server; shut down on SIGINT/SIGTERM
package app

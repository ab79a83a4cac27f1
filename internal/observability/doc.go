// Package observability exposes the Prometheus metrics recorded for each filter run.
package observability

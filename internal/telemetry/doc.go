// Package telemetry wires OpenTelemetry tracing. The hub records one
// router.dispatch span per dispatched event; this package decides where the
// spans go.
package telemetry

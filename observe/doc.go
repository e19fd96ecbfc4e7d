// Package observe provides telemetry for gated database operations.
//
// It wires OpenTelemetry tracing and metrics plus a small JSON logger.
// Spans are named db.<operation>[.<model>] and metrics live under the
// dbpool.* namespace. Exporters are selected by name in the exporters
// subpackage.
package observe

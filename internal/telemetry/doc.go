// Package telemetry wires OTLP export for the trace spans emitted around
// pipeline runs and graph nodes. With export disabled the global providers
// remain noop and no collector connection is made.
package telemetry

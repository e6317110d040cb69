// Package trace provides the event log used by bracefmt.
//
// The trace package records walk and per-file events so slow or failing
// runs can be inspected after the fact.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	bracefmt fmt --trace=- --trace-level=detail src/classes
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only failures
//   - LevelPhase: Run boundaries
//   - LevelDetail: Directory walk events
//   - LevelDebug: Everything including per-file events
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeRun: Top-level CLI operations
//   - ScopeWalk: Directory traversal
//   - ScopeFile: Per-file formatting
//
// # Context Propagation
//
// Tracers travel through the driver via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "file", parentID)
//	defer span.End("")
package trace

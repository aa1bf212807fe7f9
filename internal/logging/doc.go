// Package logging provides structured logging for inquest pipeline runs.
// It wraps Go's log/slog package to provide JSON-formatted logs with
// persistent attributes for correlating entries by query and phase.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("pipeline started", "query", query)
//
// # Attribute Propagation
//
// Child loggers carry persistent attributes so every entry produced during
// a run is tagged with its query identifier and phase:
//
//	run := logger.WithQuery(queryID).WithPhase("gathering")
//	run.Info("search complete", "sources", n)
//
// For testing, use [NopLogger] to discard all log output.
package logging

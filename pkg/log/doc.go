/*
Package log provides structured logging for Strato built on zerolog.

Init configures a single global logger; components derive child loggers with
contextual fields rather than constructing their own:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	logger := log.WithComponent("scheduler")
	logger.Info().Str("workload_id", id).Msg("workload placed")

# Output Modes

JSONOutput selects machine-readable JSON lines (production default);
otherwise a human-friendly console writer with RFC3339 timestamps is used for
interactive runs.

# Contextual Fields

WithComponent, WithNodeID and WithWorkloadID attach the standard fields that
operators filter on. Components should create their child logger once at
construction and reuse it, so every line they emit carries the component tag.
*/
package log

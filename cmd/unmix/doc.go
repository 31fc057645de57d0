// Package main hosts the unmix CLI entrypoint and command graph.
//
// The Cobra-based command tree maps terminal invocations onto the extraction
// pipeline: the root command runs a full job, while subcommands cover
// dependency diagnostics, configuration scaffolding, and version reporting.
// Configuration resolution, logger setup, and exit-code mapping live here so
// the internal packages stay free of terminal concerns.
package main

// Package main hosts the loom CLI entrypoint and command graph.
//
// The Cobra-based command tree wires configuration resolution, logging setup,
// and distributed-context discovery so subcommands can focus on user
// experience. Heavy lifting lives in the internal packages; commands stay
// declarative and surface internal functionality through flags and tables.
package main

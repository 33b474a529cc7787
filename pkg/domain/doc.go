// Package domain holds the conversation state model shared by the
// orchestrator, the stores, and the transport adapters. It has no
// dependencies beyond the standard library so it can sit at the bottom of the
// dependency graph.
package domain

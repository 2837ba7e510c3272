// Package stack is the stack relationship engine: heuristic detection of
// branch parent/child topology from the commit graph, durable explicit stack
// metadata in the repository's local config, and a sync engine that detects
// drift against moving parents and replays branches with conflict rollback.
//
// The heuristic model (GraphBuilder/TopologyHeuristic) is recomputed on
// every call and never persisted; the explicit model (RelationshipStore) is
// the durable source of truth mutated by user commands. The two are
// independent.
package stack

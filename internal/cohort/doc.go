// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package cohort provides the in-memory shape of a cohort identification
// configuration: the tree of set-operation containers, the aggregates they
// hold, the filter trees attached to each aggregate, and the patient index
// tables (joinables) attached to the configuration as a whole.
//
// # Core Concepts
//
//   - Configuration: the root object. It owns one root Container and a flat
//     list of Joinables.
//
//   - Container: a set-operation node (UNION, INTERSECT, EXCEPT, or a plain
//     grouping). Its children are ContainerNodes, which are either nested
//     Containers or Aggregates. Child order is significant.
//
//   - Aggregate: a named query definition with at most one root
//     FilterContainer.
//
//   - FilterContainer: a boolean combination (AND, OR) of sub-containers and
//     Filter leaves.
//
// Why a separate package?
//
// The tree is produced by more than one source (the catalogue database and
// offline HCL snapshots) and consumed by the renderer. Keeping the shape in
// its own package means neither side depends on the other. Everything here is
// read-only once a Source has returned it; nil nodes and nil slices are valid
// and mean "nothing".
package cohort

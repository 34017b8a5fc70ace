// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package dag assembles concrete modules into a directed dependency graph.
//
// Nodes are modules that survived context resolution; an edge from A to B
// means "A depends on B" and carries the visibility of that dependency. The
// builder rejects edges that point outside the supplied module set and graphs
// that contain a cycle, reporting the full cycle path.
//
// A Graph is owned by one resolution run and is not safe for concurrent
// mutation. Concurrent reads of a finished graph are fine.
package dag

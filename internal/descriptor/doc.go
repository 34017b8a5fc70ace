// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package descriptor holds the in-memory representation of one module's raw
// build declarations: identity, kind, precompiled-header policy, include
// paths, visibility-tagged dependency declarations and dynamically-loaded
// module references.
//
// # Why conditions are data
//
// Build descriptors traditionally express conditional dependencies as
// imperative branches ("if this is an editor build, add X"). Here every
// declaration carries its own Condition, a conjunction of clauses over named
// build-context fields. A Module therefore describes every possible build at
// once, and the evaluator package decides which declarations are active for a
// concrete context. Each conditional dependency can be tested on its own.
//
// A Module is validated on construction and is read-only afterwards. The
// accessors return copies.
package descriptor

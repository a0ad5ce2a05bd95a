// Package inspect implements the debugger variable-inspection tree:
// an asynchronous, incrementally loading tree of runtime object values
// backing watch and locals views.
//
// # Architecture
//
// The tree is built from three pieces:
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      TreeController                              │
//	│  - Owns the root node                                           │
//	│  - Deduplicates in-flight per-node child fetches                │
//	│  - Pages enumerable children                                    │
//	│  - Tracks evaluation watches on still-evaluating values         │
//	│  - Fans out notifications to observers                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                          Node                                    │
//	│  - Root: synthetic container for top-level watches/locals       │
//	│  - Live: backed by an evaluated runtime value                   │
//	│  - ShowMore: placeholder for the unfetched tail of a sequence   │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                          Value                                   │
//	│  - Capability flags (enumerable, evaluating, error, ...)        │
//	│  - Full and ranged child enumeration                            │
//	│  - Change-notification subscription                             │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Loading Protocol
//
// Expanding a node fetches an initial page of children when the node is
// enumerable and all children otherwise. At most one backend fetch is in
// flight per node: a second expansion request joins the outstanding fetch
// instead of issuing a duplicate backend call. Children are strictly
// appended in call order, and a short page marks the node fully loaded,
// after which no further backend fetch is issued until the node is
// explicitly reset.
//
// # Notifications
//
// The controller raises four notification kinds to observers:
// children loaded, node expanded, evaluation completed, and load failed.
// These are the sole UI-facing signals; the controller never pushes UI
// state directly.
package inspect

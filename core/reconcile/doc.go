// Package reconcile provides the generic engine for converging remote
// mailbox-provider state to locally declared state.
//
// The engine compares two maps of entities keyed by identity, desired
// (from configuration) against observed (from the provider API), and plans
// the minimal set of create, update, and delete actions.
//
// # Architecture
//
// The engine consists of three parts:
//
//  1. Resource: the entity contract. Each entity kind (account, alias,
//     spam settings, ACL) implements Key and Diff, producing a
//     kind-specific Change. Capabilities are a closed set of optional
//     interfaces: Creatable for kinds the provider can create, Deletable
//     for kinds it can delete. The engine dispatches on these interfaces,
//     never on reflection.
//
//  2. BuildPlan: pure planning. Given the two maps it computes actions
//     without touching the network; planning is deterministic for fixed
//     inputs.
//
//  3. Apply: sequential execution through a per-kind Applier, with
//     per-entity failure isolation, audit logging of every action before
//     transmission, and dry-run gating.
//
// # Diff semantics
//
// Accounts use a directional replace diff: every scalar field has exactly
// one correct desired value, so the diff only carries values to set.
// Aliases and ACLs are sets of strings and diff to explicit add/remove
// deltas, because the provider's list endpoints are additive/subtractive.
// Spam settings diff field-wise but always serialize their entire active
// field set on update, since the provider supports no partial settings
// update.
package reconcile

// Package roles implements a hierarchical, in-memory role-based access
// control engine for gating inbound command dispatch by user or chat id.
//
// # Overview
//
// A Role is a node in a mutable directed acyclic graph. It holds a set of
// directly authorized principal ids and a set of child roles; a role can do
// everything its child roles can do. A process-wide admin root, created on
// first use, dominates every role by construction, so bot admins pass every
// gate.
//
// Roles evaluate updates as predicates:
//
//	mods := roles.NewRole(roles.WithName("mods"), roles.WithMembers(200))
//	mods.Match(roles.UserUpdate(200)) // true
//
// Evaluation searches the hierarchy downward from the admin root toward the
// guarding role, so a principal matching any role in between is allowed.
//
// # Hierarchy
//
// Domination is the reachability order of the graph: B dominates A when A is
// reachable from B by descending child edges. AddChild rejects edges that
// would introduce a cycle. Unrelated roles compare false in both directions:
//
//	staff.AddChild(mods)
//	mods.DominatedBy(staff) // true
//	staff.Dominates(mods)   // true
//
// Role equality is instance identity, which keeps roles usable as map keys;
// Equals performs deep structural comparison of member sets and child
// shapes instead.
//
// # Registry
//
// A Registry collects named roles under one shared admins root and owns the
// two dynamic roles:
//
//	rg := roles.NewRegistry(roles.RegistryConfig{Provider: provider})
//	rg.AddAdmin(100)
//	mods, err := rg.AddRole("mods", []int64{200})
//
// # Dynamic roles
//
// ChatAdminsRole and ChatCreatorRole replace static membership with
// externally sourced, cached lookups through a MembershipProvider. Lookup
// failures are absorbed into a non-match; they never abort evaluation.
//
// # Combinators
//
// Role.Match satisfies filter.Predicate[roles.Update], so roles compose with
// the generic combinators:
//
//	gate := filter.And[roles.Update](group, filter.Not[roles.Update](muted))
//
// Inverting a role (Inverted) yields the raw exclusion view described in the
// package documentation of filter.Not: direct members and descendants of the
// inverted role are excluded, roles dominating it are unaffected.
//
// # Concurrency
//
// Each role owns a private lock guarding its own state; mutation of one role
// never takes another role's lock. Evaluation reads snapshots and holds at
// most one lock at a time, so it cannot deadlock against a structurally
// valid graph. Evaluations may observe either side of a concurrent mutation;
// authorization decisions are inherently point-in-time.
package roles

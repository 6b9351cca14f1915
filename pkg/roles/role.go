package roles

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// DefaultAdminName is the name of the process-wide admin root role.
const DefaultAdminName = "admins"

var (
	defaultAdminOnce sync.Once
	defaultAdmin     *Role
)

// DefaultAdmin returns the process-wide admin root. It is created exactly
// once, on first use; every role constructed with NewRole is attached as a
// direct child of it until re-parented, so the root dominates every role in
// the process by construction. The sync.Once gate guarantees that no caller
// ever observes a partially constructed root.
func DefaultAdmin() *Role {
	defaultAdminOnce.Do(func() {
		defaultAdmin = newRole(DefaultAdminName)
	})
	return defaultAdmin
}

// variant is the closed set of role behaviors: the static-membership Role,
// ChatAdminsRole and ChatCreatorRole. Children always hold *Role; dispatch
// to the owning variant goes through the role's self pointer.
type variant interface {
	evaluate(u Update, target *Role) bool
	copyRole(memo map[*Role]*Role) *Role
}

// Role is a node in the permission hierarchy. A role grants access to its
// direct members and, transitively, to the members of every role that
// dominates it. Two roles are equal only if they are the same instance; use
// Equals for structural comparison.
//
// All mutation goes through accessor methods guarded by a per-role lock.
// Reads used during evaluation (Members, Children) return snapshots taken
// under the lock, so recursive evaluation never holds more than one lock at
// a time.
type Role struct {
	id       uuid.UUID
	name     string
	inverted bool

	// mu guards members, children and admin. It is a pointer so that
	// inverted views share the lock of the role they were derived from.
	mu       *sync.Mutex
	members  map[int64]struct{}
	children map[*Role]struct{}

	// admin is the root this role is currently attached under, nil for
	// detached roles and for admin roots themselves.
	admin *Role

	self variant
}

// RoleOption configures a role at construction time.
type RoleOption func(*Role)

// WithName sets the role's name.
func WithName(name string) RoleOption {
	return func(r *Role) { r.name = name }
}

// WithMembers adds the given principal ids to the role's member set.
func WithMembers(ids ...int64) RoleOption {
	return func(r *Role) {
		for _, id := range ids {
			r.members[id] = struct{}{}
		}
	}
}

// WithChildren adds the given roles as children. Construction-time children
// cannot form a cycle because the role under construction is not reachable
// from anywhere yet.
func WithChildren(children ...*Role) RoleOption {
	return func(r *Role) {
		for _, c := range children {
			if c != nil && c != r {
				r.children[c] = struct{}{}
			}
		}
	}
}

// newRole builds a detached role. Callers attach it to an admin root.
func newRole(name string) *Role {
	r := &Role{
		id:       uuid.New(),
		name:     name,
		mu:       &sync.Mutex{},
		members:  make(map[int64]struct{}),
		children: make(map[*Role]struct{}),
	}
	r.self = r
	return r
}

// NewRole creates a role and registers it as a direct child of the process
// admin root.
func NewRole(opts ...RoleOption) *Role {
	r := newRole("")
	for _, opt := range opts {
		opt(r)
	}
	attachToDefaultAdmin(r)
	return r
}

func attachToDefaultAdmin(r *Role) {
	admin := DefaultAdmin()
	// Fails only if the root was handed in as a construction-time child;
	// such a role stays detached rather than forming a cycle.
	if err := admin.AddChild(r); err != nil {
		return
	}
	r.mu.Lock()
	r.admin = admin
	r.mu.Unlock()
}

// reparent detaches the role from its current admin root and attaches it
// under newAdmin. Used by registries to anchor their roles under a shared
// admins role.
func (r *Role) reparent(newAdmin *Role) error {
	if newAdmin != nil {
		if err := newAdmin.AddChild(r); err != nil {
			return err
		}
	}
	r.mu.Lock()
	old := r.admin
	r.admin = newAdmin
	r.mu.Unlock()
	if old != nil && old != newAdmin {
		old.RemoveChild(r)
	}
	return nil
}

// ID returns the role's stable identity tag.
func (r *Role) ID() uuid.UUID { return r.id }

// Name returns the role's name, empty for anonymous roles.
func (r *Role) Name() string { return r.name }

// AddMember adds one or more principal ids to the role. Adding an id that is
// already present is a no-op.
func (r *Role) AddMember(ids ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.members[id] = struct{}{}
	}
}

// RemoveMember removes one or more principal ids from the role. Removing an
// id that is not present is a no-op.
func (r *Role) RemoveMember(ids ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.members, id)
	}
}

// HasMember reports whether id is a direct member of the role.
func (r *Role) HasMember(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[id]
	return ok
}

// Members returns a sorted snapshot of the role's direct member ids.
func (r *Role) Members() []int64 {
	r.mu.Lock()
	out := make([]int64, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	r.mu.Unlock()
	slices.Sort(out)
	return out
}

func (r *Role) memberSet() map[int64]struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.members)
}

// AddChild adds child to the role's child set. It fails with ErrCycle if
// child is the role itself or already dominates it. The reachability check
// runs before the role's own lock is taken, so checking never deadlocks
// against concurrent mutation of other roles. The check is therefore not
// atomic with the insertion: two concurrent calls closing a cycle from both
// ends (a.AddChild(b) racing b.AddChild(a)) can both pass the check and
// corrupt the hierarchy. Callers wiring roles into each other concurrently
// must serialize those edges themselves.
func (r *Role) AddChild(child *Role) error {
	if child == nil {
		return nil
	}
	if child == r {
		return fmt.Errorf("%w: %s cannot be its own child", ErrCycle, r)
	}
	if r.DominatedBy(child) {
		return fmt.Errorf("%w: %s already dominates %s", ErrCycle, child, r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.children[child] = struct{}{}
	return nil
}

// RemoveChild removes child from the role's child set, a no-op if absent.
func (r *Role) RemoveChild(child *Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.children, child)
}

// Children returns a snapshot of the role's direct children. Callers may
// iterate it freely; it never reflects later mutation.
func (r *Role) Children() []*Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Role, 0, len(r.children))
	for c := range r.children {
		out = append(out, c)
	}
	return out
}

// DominatedBy reports whether other strictly dominates the role, i.e. the
// role is reachable from other by descending child edges. Unrelated roles
// compare false in both directions.
func (r *Role) DominatedBy(other *Role) bool {
	if other == nil || r == other {
		return false
	}
	for _, c := range other.Children() {
		if r == c || r.DominatedBy(c) {
			return true
		}
	}
	return false
}

// DominatedByOrEqual reports whether other is the role itself or dominates it.
func (r *Role) DominatedByOrEqual(other *Role) bool {
	return r == other || r.DominatedBy(other)
}

// Dominates reports whether the role strictly dominates other.
func (r *Role) Dominates(other *Role) bool {
	return other != nil && other.DominatedBy(r)
}

// DominatesOrEqual reports whether other is the role itself or is dominated
// by it.
func (r *Role) DominatesOrEqual(other *Role) bool {
	return r == other || r.Dominates(other)
}

// Equals performs deep structural comparison: member sets must be equal and
// the children must match pairwise under Equals, order-independent, with no
// child matched twice. The result changes as members or children change.
func (r *Role) Equals(other *Role) bool {
	if other == nil {
		return false
	}
	if !maps.Equal(r.memberSet(), other.memberSet()) {
		return false
	}
	mine := r.Children()
	theirs := other.Children()
	if len(mine) != len(theirs) {
		return false
	}
	// Greedy first-match with an injective used set; duplicate-shaped
	// subtrees are interchangeable, so first-match suffices.
	used := make([]bool, len(theirs))
	for _, c := range mine {
		matched := false
		for i, oc := range theirs {
			if !used[i] && c.Equals(oc) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Inverted returns a view of the role with inverted evaluation semantics.
// The view shares the role's member set, child set and lock, so mutations on
// either side are visible on both. Raw evaluation of an inverted role
// answers "is the principal a direct member of this role or of one of its
// children"; the consuming combinator (filter.Not) negates that outcome.
// Roles that dominate the original are unaffected by the negation.
//
// Dynamic roles cannot be inverted and return ErrNotInvertible.
func (r *Role) Inverted() (*Role, error) {
	if _, ok := r.self.(*Role); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInvertible, r)
	}
	r.mu.Lock()
	admin := r.admin
	r.mu.Unlock()
	v := &Role{
		id:       uuid.New(),
		name:     r.name,
		inverted: true,
		mu:       r.mu,
		members:  r.members,
		children: r.children,
		admin:    admin,
	}
	v.self = v
	return v, nil
}

// Match reports whether the update's principal is authorized by this role.
// A principal matches if it is a direct member of the role or of any role
// sitting between the process admin root and this role in the hierarchy, so
// dominating roles can do everything their dominated roles can. Match
// satisfies filter.Predicate[Update].
func (r *Role) Match(u Update) bool {
	return r.self.evaluate(u, nil)
}

func (r *Role) evaluate(u Update, target *Role) bool {
	if u.User == nil && u.Chat == nil {
		return false
	}
	if u.User != nil && r.HasMember(u.User.ID) {
		return true
	}
	if u.Chat != nil && r.HasMember(u.Chat.ID) {
		return true
	}

	if r.inverted {
		// The principal is not a direct member. Only this role's children
		// may flip the outcome; ancestors stay unaffected. A nil target
		// would send the child recursion back through the admin-root
		// search, so each child becomes its own target instead, which
		// limits the check to the child's direct membership.
		for _, c := range r.Children() {
			tgt := target
			if tgt == nil {
				tgt = c
			}
			if c.self.evaluate(u, tgt) {
				return true
			}
		}
		return false
	}

	root := r
	if target == nil {
		// Top-level call: this role is the target guarding the operation
		// and the search starts from the process admin root.
		target = r
		root = DefaultAdmin()
	}
	for _, c := range root.Children() {
		if target.DominatedByOrEqual(c) && c.self.evaluate(u, target) {
			return true
		}
	}
	return false
}

// copyRole deep-copies the role. Shared subtrees are copied once via memo.
func (r *Role) copyRole(memo map[*Role]*Role) *Role {
	if dup, ok := memo[r]; ok {
		return dup
	}
	dup := NewRole(WithName(r.name), WithMembers(r.Members()...))
	memo[r] = dup
	for _, child := range r.Children() {
		// The source graph is acyclic, so re-adding copies cannot fail.
		_ = dup.AddChild(child.self.copyRole(memo))
	}
	return dup
}

// Copy returns a deep copy of the role: a new identity-distinct role that is
// structurally equal to the original and fully independent of it. Copies are
// registered under the process admin root.
func (r *Role) Copy() *Role {
	return r.self.copyRole(make(map[*Role]*Role))
}

// String renders the role for logs: by name if it has one, otherwise by its
// member ids, otherwise by a short identity tag.
func (r *Role) String() string {
	if r.name != "" {
		return "Role(" + r.name + ")"
	}
	if ids := r.Members(); len(ids) > 0 {
		return fmt.Sprintf("Role(%v)", ids)
	}
	return "Role(" + r.id.String()[:8] + ")"
}

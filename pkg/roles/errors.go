package roles

import "errors"

var (
	// ErrCycle indicates that adding a child role would introduce a cycle
	// into the hierarchy, either by adding a role as its own child or by
	// adding a role that already dominates the would-be parent.
	ErrCycle = errors.New("child role would create a cycle")

	// ErrNameTaken indicates that a role name is already registered.
	ErrNameTaken = errors.New("role name already taken")

	// ErrUnknownRole indicates that no role is registered under the given name.
	ErrUnknownRole = errors.New("unknown role")

	// ErrProviderConfigured indicates an attempt to replace a registry's
	// membership provider after one has already been set.
	ErrProviderConfigured = errors.New("membership provider already configured")

	// ErrNotInvertible indicates an attempt to invert a dynamic role.
	ErrNotInvertible = errors.New("role cannot be inverted")
)

// Provider-side sentinels. Implementations of MembershipProvider should wrap
// these so the dynamic roles can distinguish a clean "no" from a transport
// fault; either way evaluation absorbs the failure into a non-match.
var (
	// ErrNotAMember indicates the user is not a member of the chat.
	ErrNotAMember = errors.New("user is not a chat member")

	// ErrAccessDenied indicates the provider may not inspect the chat.
	ErrAccessDenied = errors.New("access to chat denied")
)

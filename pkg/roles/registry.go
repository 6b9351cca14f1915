package roles

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Provider performs external membership lookups for the chat_admins
	// and chat_creator roles. May be nil and set later with SetProvider.
	Provider MembershipProvider

	// AdminCacheTTL is the chat_admins cache TTL, DefaultAdminCacheTTL if
	// zero.
	AdminCacheTTL time.Duration

	// CacheSize bounds the dynamic-role caches, DefaultCacheSize if zero.
	CacheSize int

	// Logger receives mutation and absorbed-failure logs. A default
	// logger is created if nil.
	Logger *logrus.Logger

	// Metrics is an optional metrics sink.
	Metrics *Metrics
}

// Registry is a named collection of roles anchored under one shared admins
// root: every role it registers is a child of Admins, so bot admins can do
// everything any registered role can. The two dynamic roles chat_admins and
// chat_creator are created with the registry and live under the same root.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*Role
	provider MembershipProvider

	admins      *Role
	chatAdmins  *ChatAdminsRole
	chatCreator *ChatCreatorRole

	log     *logrus.Logger
	metrics *Metrics
}

// NewRegistry creates a registry with its admins root and dynamic roles.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.AdminCacheTTL <= 0 {
		cfg.AdminCacheTTL = DefaultAdminCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	rg := &Registry{
		entries:  make(map[string]*Role),
		provider: cfg.Provider,
		admins:   NewRole(WithName(DefaultAdminName)),
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
	}
	dynOpts := []DynamicOption{
		WithCacheTTL(cfg.AdminCacheTTL),
		WithCacheSize(cfg.CacheSize),
		WithLogger(cfg.Logger),
		WithMetrics(cfg.Metrics),
	}
	rg.chatAdmins = NewChatAdminsRole(cfg.Provider, dynOpts...)
	rg.chatCreator = NewChatCreatorRole(cfg.Provider, dynOpts...)

	// The dynamic roles answer to this registry's admins root rather than
	// the process root. Fresh roles cannot form a cycle here.
	_ = rg.chatAdmins.reparent(rg.admins)
	_ = rg.chatCreator.reparent(rg.admins)

	return rg
}

// Admins returns the registry's shared admins root.
func (rg *Registry) Admins() *Role { return rg.admins }

// ChatAdmins returns the registry's chat_admins role.
func (rg *Registry) ChatAdmins() *ChatAdminsRole { return rg.chatAdmins }

// ChatCreator returns the registry's chat_creator role.
func (rg *Registry) ChatCreator() *ChatCreatorRole { return rg.chatCreator }

// SetProvider configures the membership provider for the dynamic roles in
// case it could not be passed at construction time. It may be called exactly
// once, and only if no provider was configured yet; a second configuration
// attempt fails with ErrProviderConfigured.
func (rg *Registry) SetProvider(p MembershipProvider) error {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if rg.provider != nil {
		return ErrProviderConfigured
	}
	rg.provider = p
	rg.chatAdmins.setProvider(p)
	rg.chatCreator.setProvider(p)
	return nil
}

// AddRole creates a role, anchors it under the registry's admins root and
// registers it under name. It fails with ErrNameTaken if the name is already
// registered, and with ErrCycle if the supplied children make the admins
// root unreachable-safe insertion impossible.
func (rg *Registry) AddRole(name string, members []int64, children ...*Role) (*Role, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if _, exists := rg.entries[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	if name == NameChatAdmins || name == NameChatCreator {
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}

	role := NewRole(WithName(name), WithMembers(members...), WithChildren(children...))
	if err := role.reparent(rg.admins); err != nil {
		return nil, err
	}
	rg.entries[name] = role
	rg.log.WithField("role", name).Debug("registered role")
	return role, nil
}

// RemoveRole removes the named role and returns it. The role is detached
// from the admins root and re-parented under the process admin root, so any
// previously held reference stays usable; its own children are untouched.
func (rg *Registry) RemoveRole(name string) (*Role, error) {
	rg.mu.Lock()
	role, ok := rg.entries[name]
	if !ok {
		rg.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	delete(rg.entries, name)
	rg.mu.Unlock()

	_ = role.reparent(DefaultAdmin())
	rg.log.WithField("role", name).Debug("removed role")
	return role, nil
}

// Get returns the role registered under name. The dynamic role names
// chat_admins and chat_creator resolve to the registry's dynamic roles by
// convention.
func (rg *Registry) Get(name string) (*Role, error) {
	switch name {
	case NameChatAdmins:
		return rg.chatAdmins.Role, nil
	case NameChatCreator:
		return rg.chatCreator.Role, nil
	}
	rg.mu.Lock()
	defer rg.mu.Unlock()
	role, ok := rg.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	return role, nil
}

// Has reports whether a role is registered under name.
func (rg *Registry) Has(name string) bool {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	_, ok := rg.entries[name]
	return ok
}

// Names returns the sorted names of all registered roles.
func (rg *Registry) Names() []string {
	rg.mu.Lock()
	names := make([]string, 0, len(rg.entries))
	for name := range rg.entries {
		names = append(names, name)
	}
	rg.mu.Unlock()
	slices.Sort(names)
	return names
}

// Len returns the number of registered roles.
func (rg *Registry) Len() int {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	return len(rg.entries)
}

// AddAdmin adds one or more principals to the admins root.
func (rg *Registry) AddAdmin(ids ...int64) {
	rg.admins.AddMember(ids...)
}

// KickAdmin removes one or more principals from the admins root.
func (rg *Registry) KickAdmin(ids ...int64) {
	rg.admins.RemoveMember(ids...)
}

// Evaluate looks up the named role and matches the update against it,
// recording the decision metric. It fails with ErrUnknownRole for names that
// are not registered.
func (rg *Registry) Evaluate(name string, u Update) (bool, error) {
	role, err := rg.Get(name)
	if err != nil {
		return false, err
	}
	allowed := role.Match(u)
	rg.metrics.recordEvaluation(name, allowed)
	return allowed, nil
}

// Equals performs structural comparison of two registries: the same set of
// names, each pair of same-named roles structurally equal, and structurally
// equal admins roots.
func (rg *Registry) Equals(other *Registry) bool {
	if other == nil {
		return false
	}
	mine := rg.snapshot()
	theirs := other.snapshot()
	if len(mine) != len(theirs) {
		return false
	}
	for name, role := range mine {
		counterpart, ok := theirs[name]
		if !ok || !role.Equals(counterpart) {
			return false
		}
	}
	return rg.admins.Equals(other.admins)
}

func (rg *Registry) snapshot() map[string]*Role {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	out := make(map[string]*Role, len(rg.entries))
	for name, role := range rg.entries {
		out[name] = role
	}
	return out
}

// Copy returns a deep copy of the registry: a new admins root, new
// identity-distinct roles for every entry, and fresh dynamic roles with the
// same configuration and provider. Cached membership data is carried over
// into the new caches since it represents externally verified truth, not
// graph state.
func (rg *Registry) Copy() *Registry {
	rg.mu.Lock()
	provider := rg.provider
	rg.mu.Unlock()

	dup := NewRegistry(RegistryConfig{
		Provider:      provider,
		AdminCacheTTL: rg.chatAdmins.ttl,
		CacheSize:     rg.chatAdmins.size,
		Logger:        rg.log,
		Metrics:       rg.metrics,
	})
	dup.chatAdmins.adoptCache(rg.chatAdmins)
	dup.chatCreator.adoptCache(rg.chatCreator)
	dup.AddAdmin(rg.admins.Members()...)

	memo := make(map[*Role]*Role)
	for name, role := range rg.snapshot() {
		copied, err := dup.AddRole(name, role.Members())
		if err != nil {
			// Names were unique in the source, so this cannot happen.
			continue
		}
		for _, child := range role.Children() {
			_ = copied.AddChild(child.self.copyRole(memo))
		}
	}
	return dup
}

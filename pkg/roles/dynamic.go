package roles

import (
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	expirable "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

// Reserved names of the dynamic roles.
const (
	NameChatAdmins  = "chat_admins"
	NameChatCreator = "chat_creator"
)

const (
	// DefaultAdminCacheTTL is how long a chat's administrator list stays
	// cached before it is re-fetched.
	DefaultAdminCacheTTL = 30 * time.Minute

	// DefaultCacheSize bounds the number of chats a dynamic role caches.
	DefaultCacheSize = 1024
)

type dynamicConfig struct {
	ttl     time.Duration
	size    int
	log     *logrus.Logger
	metrics *Metrics
}

// DynamicOption configures a dynamic role.
type DynamicOption func(*dynamicConfig)

// WithCacheTTL sets the admin-list cache TTL (chat-admins role only; the
// chat-creator cache never expires).
func WithCacheTTL(ttl time.Duration) DynamicOption {
	return func(c *dynamicConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheSize bounds the per-chat membership cache.
func WithCacheSize(size int) DynamicOption {
	return func(c *dynamicConfig) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithLogger sets the logger used for absorbed lookup failures.
func WithLogger(log *logrus.Logger) DynamicOption {
	return func(c *dynamicConfig) { c.log = log }
}

// WithMetrics sets the metrics sink for fetch and cache counters.
func WithMetrics(m *Metrics) DynamicOption {
	return func(c *dynamicConfig) { c.metrics = m }
}

func newDynamicConfig(opts []DynamicOption) dynamicConfig {
	cfg := dynamicConfig{ttl: DefaultAdminCacheTTL, size: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logrus.New()
	}
	return cfg
}

// ChatAdminsRole matches the current administrators of the update's chat.
// Private chats always match. Administrator lists are fetched through the
// membership provider and cached per chat for the configured TTL, so
// repeated evaluations within the TTL perform no lookups. Lookup failures
// are absorbed as a non-match: an inability to prove privilege is a "no",
// never an error.
type ChatAdminsRole struct {
	*Role

	provMu   sync.RWMutex
	provider MembershipProvider

	ttl     time.Duration
	size    int
	cache   *expirable.LRU[int64, []int64]
	log     *logrus.Logger
	metrics *Metrics
}

// NewChatAdminsRole creates a chat-admins role. provider may be nil and set
// later through a registry; until then group-chat evaluations never match.
func NewChatAdminsRole(provider MembershipProvider, opts ...DynamicOption) *ChatAdminsRole {
	cfg := newDynamicConfig(opts)
	r := &ChatAdminsRole{
		Role:     newRole(NameChatAdmins),
		provider: provider,
		ttl:      cfg.ttl,
		size:     cfg.size,
		cache:    expirable.NewLRU[int64, []int64](cfg.size, nil, cfg.ttl),
		log:      cfg.log,
		metrics:  cfg.metrics,
	}
	r.Role.self = r
	attachToDefaultAdmin(r.Role)
	return r
}

// CacheTTL returns the configured admin-list cache TTL.
func (r *ChatAdminsRole) CacheTTL() time.Duration { return r.ttl }

// CacheSize returns the configured cache bound.
func (r *ChatAdminsRole) CacheSize() int { return r.size }

func (r *ChatAdminsRole) getProvider() MembershipProvider {
	r.provMu.RLock()
	defer r.provMu.RUnlock()
	return r.provider
}

func (r *ChatAdminsRole) setProvider(p MembershipProvider) {
	r.provMu.Lock()
	defer r.provMu.Unlock()
	r.provider = p
}

func (r *ChatAdminsRole) evaluate(u Update, _ *Role) bool {
	if u.User == nil || u.Chat == nil {
		return false
	}
	if u.Chat.Kind == ChatPrivate {
		return true
	}

	if admins, ok := r.cache.Get(u.Chat.ID); ok {
		r.metrics.recordCacheHit(NameChatAdmins)
		return slices.Contains(admins, u.User.ID)
	}
	r.metrics.recordCacheMiss(NameChatAdmins)

	provider := r.getProvider()
	if provider == nil {
		r.log.WithField("chat_id", u.Chat.ID).Debug("chat_admins: no membership provider configured")
		return false
	}

	admins, err := provider.ChatAdministrators(u.Context(), u.Chat.ID)
	if err != nil {
		r.metrics.recordFetch(NameChatAdmins, "error")
		r.log.WithError(err).WithField("chat_id", u.Chat.ID).
			Debug("chat_admins: administrator lookup failed, treating as non-match")
		return false
	}
	r.metrics.recordFetch(NameChatAdmins, "ok")
	r.cache.Add(u.Chat.ID, admins)
	return slices.Contains(admins, u.User.ID)
}

// copyRole deep-copies the role's hierarchy state. The provider handle and
// the live cache are shared with the copy so it keeps answering from the
// same externally sourced data.
func (r *ChatAdminsRole) copyRole(memo map[*Role]*Role) *Role {
	if dup, ok := memo[r.Role]; ok {
		return dup
	}
	clone := NewChatAdminsRole(r.getProvider(),
		WithCacheTTL(r.ttl), WithCacheSize(r.size), WithLogger(r.log), WithMetrics(r.metrics))
	clone.cache = r.cache
	clone.AddMember(r.Members()...)
	memo[r.Role] = clone.Role
	for _, child := range r.Children() {
		_ = clone.AddChild(child.self.copyRole(memo))
	}
	return clone.Role
}

// adoptCache copies src's cached admin lists into the role's own cache,
// carrying over already verified membership data without re-fetching.
func (r *ChatAdminsRole) adoptCache(src *ChatAdminsRole) {
	for _, chatID := range src.cache.Keys() {
		if admins, ok := src.cache.Peek(chatID); ok {
			r.cache.Add(chatID, admins)
		}
	}
}

// ChatCreatorRole matches only the creator of the update's chat. Private
// chats always match. A confirmed creator is cached per chat and never
// expires, a chat's creator being immutable for the process lifetime.
// "Not a member" and "access denied" lookups are clean non-matches.
type ChatCreatorRole struct {
	*Role

	provMu   sync.RWMutex
	provider MembershipProvider

	cache   *lru.Cache[int64, int64]
	log     *logrus.Logger
	metrics *Metrics
}

// NewChatCreatorRole creates a chat-creator role. provider may be nil and
// set later through a registry.
func NewChatCreatorRole(provider MembershipProvider, opts ...DynamicOption) *ChatCreatorRole {
	cfg := newDynamicConfig(opts)
	cache, _ := lru.New[int64, int64](cfg.size)
	r := &ChatCreatorRole{
		Role:     newRole(NameChatCreator),
		provider: provider,
		cache:    cache,
		log:      cfg.log,
		metrics:  cfg.metrics,
	}
	r.Role.self = r
	attachToDefaultAdmin(r.Role)
	return r
}

func (r *ChatCreatorRole) getProvider() MembershipProvider {
	r.provMu.RLock()
	defer r.provMu.RUnlock()
	return r.provider
}

func (r *ChatCreatorRole) setProvider(p MembershipProvider) {
	r.provMu.Lock()
	defer r.provMu.Unlock()
	r.provider = p
}

func (r *ChatCreatorRole) evaluate(u Update, _ *Role) bool {
	if u.User == nil || u.Chat == nil {
		return false
	}
	if u.Chat.Kind == ChatPrivate {
		return true
	}

	if creator, ok := r.cache.Get(u.Chat.ID); ok {
		r.metrics.recordCacheHit(NameChatCreator)
		return creator == u.User.ID
	}
	r.metrics.recordCacheMiss(NameChatCreator)

	provider := r.getProvider()
	if provider == nil {
		r.log.WithField("chat_id", u.Chat.ID).Debug("chat_creator: no membership provider configured")
		return false
	}

	status, err := provider.MemberStatus(u.Context(), u.Chat.ID, u.User.ID)
	if err != nil {
		// Not being a member and not being allowed to look are ordinary
		// "no" answers here, same as any transport fault.
		r.metrics.recordFetch(NameChatCreator, "error")
		r.log.WithError(err).WithField("chat_id", u.Chat.ID).
			Debug("chat_creator: member status lookup failed, treating as non-match")
		return false
	}
	r.metrics.recordFetch(NameChatCreator, "ok")
	if status == StatusCreator {
		r.cache.Add(u.Chat.ID, u.User.ID)
		return true
	}
	return false
}

// copyRole deep-copies the role's hierarchy state, sharing the provider
// handle and the live creator cache with the copy.
func (r *ChatCreatorRole) copyRole(memo map[*Role]*Role) *Role {
	if dup, ok := memo[r.Role]; ok {
		return dup
	}
	clone := NewChatCreatorRole(r.getProvider(), WithLogger(r.log), WithMetrics(r.metrics))
	clone.cache = r.cache
	clone.AddMember(r.Members()...)
	memo[r.Role] = clone.Role
	for _, child := range r.Children() {
		_ = clone.AddChild(child.self.copyRole(memo))
	}
	return clone.Role
}

// adoptCache copies src's confirmed creators into the role's own cache.
func (r *ChatCreatorRole) adoptCache(src *ChatCreatorRole) {
	for _, chatID := range src.cache.Keys() {
		if creator, ok := src.cache.Peek(chatID); ok {
			r.cache.Add(chatID, creator)
		}
	}
}

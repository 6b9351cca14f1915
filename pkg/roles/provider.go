package roles

import (
	"context"
	"sync"
)

// MemberStatus is a user's standing within a chat, as reported by the
// membership provider.
type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusBanned        MemberStatus = "banned"
)

// MembershipProvider lists the currently privileged principals of a chat.
// It is the only collaborator the engine performs I/O through; calls happen
// on cache miss or expiry only, and never while a hierarchy lock is held.
// Implementations should honor ctx for timeouts and cancellation. Any error
// is absorbed by the calling role and converted into a non-match.
type MembershipProvider interface {
	// ChatAdministrators returns the user ids of the chat's current
	// administrators, creator included.
	ChatAdministrators(ctx context.Context, chatID int64) ([]int64, error)

	// MemberStatus returns userID's standing in the chat. Implementations
	// should return ErrNotAMember or ErrAccessDenied (wrapped is fine)
	// for the corresponding conditions.
	MemberStatus(ctx context.Context, chatID, userID int64) (MemberStatus, error)
}

// StaticProvider is an in-memory MembershipProvider backed by fixed data.
// It counts its calls, which makes it useful both as a seedable provider for
// small deployments and as a fake in tests that assert on fetch counts.
type StaticProvider struct {
	mu       sync.Mutex
	admins   map[int64][]int64
	creators map[int64]int64
	denied   map[int64]struct{}

	adminCalls  int
	statusCalls int
}

// NewStaticProvider creates an empty StaticProvider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		admins:   make(map[int64][]int64),
		creators: make(map[int64]int64),
		denied:   make(map[int64]struct{}),
	}
}

// SetAdmins replaces the administrator list for a chat.
func (p *StaticProvider) SetAdmins(chatID int64, userIDs ...int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admins[chatID] = append([]int64(nil), userIDs...)
}

// SetCreator sets the creator of a chat.
func (p *StaticProvider) SetCreator(chatID, userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.creators[chatID] = userID
}

// DenyAccess makes all lookups for a chat fail with ErrAccessDenied.
func (p *StaticProvider) DenyAccess(chatID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied[chatID] = struct{}{}
}

// ChatAdministrators implements MembershipProvider.
func (p *StaticProvider) ChatAdministrators(ctx context.Context, chatID int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.adminCalls++
	if _, ok := p.denied[chatID]; ok {
		return nil, ErrAccessDenied
	}
	ids, ok := p.admins[chatID]
	if !ok {
		return nil, ErrAccessDenied
	}
	return append([]int64(nil), ids...), nil
}

// MemberStatus implements MembershipProvider.
func (p *StaticProvider) MemberStatus(ctx context.Context, chatID, userID int64) (MemberStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusCalls++
	if _, ok := p.denied[chatID]; ok {
		return "", ErrAccessDenied
	}
	if creator, ok := p.creators[chatID]; ok && creator == userID {
		return StatusCreator, nil
	}
	for _, id := range p.admins[chatID] {
		if id == userID {
			return StatusAdministrator, nil
		}
	}
	return "", ErrNotAMember
}

// AdminCalls returns how many ChatAdministrators lookups were performed.
func (p *StaticProvider) AdminCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.adminCalls
}

// StatusCalls returns how many MemberStatus lookups were performed.
func (p *StaticProvider) StatusCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusCalls
}

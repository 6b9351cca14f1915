package roles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatAdminsRole(t *testing.T) {
	t.Run("private chat always matches", func(t *testing.T) {
		r := NewChatAdminsRole(nil)
		assert.True(t, r.Match(ChatUpdate(1, 1, ChatPrivate)))
	})

	t.Run("requires user and chat", func(t *testing.T) {
		r := NewChatAdminsRole(NewStaticProvider())
		assert.False(t, r.Match(UserUpdate(1)))
		assert.False(t, r.Match(Update{}))
	})

	t.Run("no provider never matches", func(t *testing.T) {
		r := NewChatAdminsRole(nil)
		assert.False(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
	})

	t.Run("matches fetched administrators", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetAdmins(-100, 1, 2)
		r := NewChatAdminsRole(provider)

		assert.True(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
		assert.False(t, r.Match(ChatUpdate(3, -100, ChatGroup)))
	})

	t.Run("caches per chat within the TTL", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetAdmins(-100, 1)
		r := NewChatAdminsRole(provider)

		assert.True(t, r.Match(ChatUpdate(1, -100, ChatSupergroup)))
		assert.True(t, r.Match(ChatUpdate(1, -100, ChatSupergroup)))
		assert.False(t, r.Match(ChatUpdate(2, -100, ChatSupergroup)))
		assert.Equal(t, 1, provider.AdminCalls())

		// Cached entries answer from stale data until expiry.
		provider.SetAdmins(-100, 2)
		assert.True(t, r.Match(ChatUpdate(1, -100, ChatSupergroup)))
		assert.Equal(t, 1, provider.AdminCalls())
	})

	t.Run("expired entries are re-fetched", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetAdmins(-100, 1)
		r := NewChatAdminsRole(provider, WithCacheTTL(10*time.Millisecond))
		require.Equal(t, 10*time.Millisecond, r.CacheTTL())

		assert.True(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
		require.Equal(t, 1, provider.AdminCalls())

		provider.SetAdmins(-100, 2)
		time.Sleep(25 * time.Millisecond)

		assert.False(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
		assert.True(t, r.Match(ChatUpdate(2, -100, ChatGroup)))
		assert.GreaterOrEqual(t, provider.AdminCalls(), 2)
	})

	t.Run("lookup failure is a non-match", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetAdmins(-100, 1)
		provider.DenyAccess(-100)
		r := NewChatAdminsRole(provider)

		assert.False(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
	})

	t.Run("cancelled context is a non-match", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetAdmins(-100, 1)
		r := NewChatAdminsRole(provider)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		u := ChatUpdate(1, -100, ChatGroup).WithContext(ctx)
		assert.False(t, r.Match(u))
	})

	t.Run("copy shares the live cache and provider", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetAdmins(-100, 1)
		r := NewChatAdminsRole(provider)
		require.True(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
		require.Equal(t, 1, provider.AdminCalls())

		dup := r.Copy()
		assert.True(t, dup.Match(ChatUpdate(1, -100, ChatGroup)))
		assert.Equal(t, 1, provider.AdminCalls())
	})
}

func TestChatCreatorRole(t *testing.T) {
	t.Run("private chat always matches", func(t *testing.T) {
		r := NewChatCreatorRole(nil)
		assert.True(t, r.Match(ChatUpdate(1, 1, ChatPrivate)))
	})

	t.Run("matches only the creator", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetCreator(-100, 1)
		provider.SetAdmins(-100, 1, 2)
		r := NewChatCreatorRole(provider)

		assert.True(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
		assert.False(t, r.Match(ChatUpdate(2, -100, ChatGroup)))
	})

	t.Run("confirmed creators are cached forever", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetCreator(-100, 1)
		r := NewChatCreatorRole(provider)

		require.True(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
		require.Equal(t, 1, provider.StatusCalls())

		assert.True(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
		assert.Equal(t, 1, provider.StatusCalls())

		// A cached creator also answers lookups for other users of the chat.
		assert.False(t, r.Match(ChatUpdate(2, -100, ChatGroup)))
		assert.Equal(t, 1, provider.StatusCalls())
	})

	t.Run("non-creator statuses are not cached", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetCreator(-100, 1)
		provider.SetAdmins(-100, 2)
		r := NewChatCreatorRole(provider)

		assert.False(t, r.Match(ChatUpdate(2, -100, ChatGroup)))
		assert.False(t, r.Match(ChatUpdate(2, -100, ChatGroup)))
		assert.Equal(t, 2, provider.StatusCalls())
	})

	t.Run("not-a-member and access-denied are clean non-matches", func(t *testing.T) {
		provider := NewStaticProvider()
		r := NewChatCreatorRole(provider)
		assert.False(t, r.Match(ChatUpdate(5, -100, ChatGroup)))

		provider.DenyAccess(-200)
		assert.False(t, r.Match(ChatUpdate(5, -200, ChatGroup)))
	})

	t.Run("copy shares the live cache and provider", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SetCreator(-100, 1)
		r := NewChatCreatorRole(provider)
		require.True(t, r.Match(ChatUpdate(1, -100, ChatGroup)))
		require.Equal(t, 1, provider.StatusCalls())

		dup := r.Copy()
		assert.True(t, dup.Match(ChatUpdate(1, -100, ChatGroup)))
		assert.Equal(t, 1, provider.StatusCalls())
	})
}

package roles

import "context"

// ChatKind distinguishes the kind of chat an update originates from.
type ChatKind string

const (
	ChatPrivate    ChatKind = "private"
	ChatGroup      ChatKind = "group"
	ChatSupergroup ChatKind = "supergroup"
	ChatChannel    ChatKind = "channel"
)

// User is the acting user of an update.
type User struct {
	ID int64
}

// Chat is the chat an update originates from.
type Chat struct {
	ID   int64
	Kind ChatKind
}

// Update is the principal shape consumed by role evaluation: an opaque
// inbound event exposing an optional user and an optional chat. Updates are
// plain values and safe to copy.
type Update struct {
	User *User
	Chat *Chat

	ctx context.Context
}

// WithContext returns a shallow copy of the update carrying ctx. The context
// is handed to membership providers on cache misses so external lookups can
// be cancelled or bounded by the caller.
func (u Update) WithContext(ctx context.Context) Update {
	u.ctx = ctx
	return u
}

// Context returns the update's context, defaulting to context.Background.
func (u Update) Context() context.Context {
	if u.ctx != nil {
		return u.ctx
	}
	return context.Background()
}

// UserUpdate builds an update carrying only a user id.
func UserUpdate(userID int64) Update {
	return Update{User: &User{ID: userID}}
}

// ChatUpdate builds an update carrying a user id and a chat.
func ChatUpdate(userID, chatID int64, kind ChatKind) Update {
	return Update{User: &User{ID: userID}, Chat: &Chat{ID: chatID, Kind: kind}}
}

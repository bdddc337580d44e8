package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"homefinder-backend/internal/domains/chat/model"
)

// =====================================================
// CHAT REPOSITORY INTERFACE
// =====================================================

type Repository interface {
	// EnsureIndexes creates the unique (participant_key, property_id) index and the
	// message lookup indexes.
	EnsureIndexes(ctx context.Context) error

	// GetOrCreate returns the chat for the pair and property, inserting it when absent.
	// created is true only for the call that inserted it.
	GetOrCreate(ctx context.Context, a, b, propertyID uuid.UUID, now time.Time) (chat *model.Chat, created bool, err error)

	FindByID(ctx context.Context, id string) (*model.Chat, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Chat, error)

	// InsertMessage stores the message, then bumps the chat's updatedAt and preview.
	InsertMessage(ctx context.Context, msg *model.Message) error

	// ListMessages pages through a chat newest first.
	ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*model.Message, int64, error)

	// MarkRead flags one message (messageID set) or every unread message addressed to
	// userID in the chat, returning the number changed.
	MarkRead(ctx context.Context, chatID string, userID uuid.UUID, messageID string) (int64, error)

	// UnreadByChat counts unread messages addressed to userID grouped by chat.
	UnreadByChat(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

package service

import (
	"context"

	"github.com/google/uuid"

	"homefinder-backend/internal/domains/chat/model"
	propertyModel "homefinder-backend/internal/domains/property/model"
	userModel "homefinder-backend/internal/domains/user/model"
	"homefinder-backend/internal/shared/utils"
)

// =====================================================
// CHAT SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	ListMyChats(ctx context.Context, userID uuid.UUID) ([]*model.ChatSummary, error)

	// GetChat returns one page of messages and marks the caller's received messages read.
	GetChat(ctx context.Context, chatID string, userID uuid.UUID, page utils.Pagination) (*model.ChatDetail, int64, error)

	// StartChat returns the existing chat for the pair and property or creates it.
	StartChat(ctx context.Context, userID uuid.UUID, req model.StartChatRequest) (*model.ChatSummary, bool, error)

	SendMessage(ctx context.Context, chatID string, senderID uuid.UUID, req model.SendMessageRequest) (*model.Message, error)
	MarkRead(ctx context.Context, chatID string, userID uuid.UUID, req model.MarkReadRequest) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ProfileLookup resolves participants. Satisfied by the user service.
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*userModel.Profile, error)
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*userModel.Profile, error)
}

// PropertyLookup loads the property a chat is about.
type PropertyLookup interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*propertyModel.Property, error)
}

// Notifier pushes an event to a user's connected sessions. It never blocks and reports
// whether any session received the event.
type Notifier interface {
	Notify(userID uuid.UUID, eventType string, payload interface{}) bool
	IsOnline(userID uuid.UUID) bool
}

// Recorder counts persisted messages and realtime deliveries.
type Recorder interface {
	MessageSent()
	Notification(event string, delivered bool)
}

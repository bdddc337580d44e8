package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Chat is one conversation between two users about a property. There is at most one
// chat per (participant pair, property).
type Chat struct {
	ID           string      `json:"id"`
	Participants []uuid.UUID `json:"participants"`
	PropertyID   uuid.UUID   `json:"propertyId"`
	LastMessage  *Preview    `json:"lastMessage,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Preview is the denormalized last message shown in chat lists.
type Preview struct {
	Content  string    `json:"content"`
	SenderID uuid.UUID `json:"senderId"`
	SentAt   time.Time `json:"sentAt"`
}

type Message struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chatId"`
	SenderID    uuid.UUID `json:"senderId"`
	RecipientID uuid.UUID `json:"recipientId"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasParticipant reports whether userID takes part in the chat.
func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Other returns the participant that is not userID.
func (c *Chat) Other(userID uuid.UUID) uuid.UUID {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return uuid.Nil
}

// ParticipantKey is the order-independent key of a participant set.
func ParticipantKey(ids ...uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, ":")
}

// ========================================
// VIEWS
// ========================================

type Counterpart struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Avatar  string    `json:"avatar"`
	IsOwner bool      `json:"isOwner"`
	Online  bool      `json:"online"`
}

type PropertySummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Image    string    `json:"image,omitempty"`
}

// ChatSummary is a chat as seen by one of its participants.
type ChatSummary struct {
	*Chat
	OtherParticipant *Counterpart     `json:"otherParticipant,omitempty"`
	Property         *PropertySummary `json:"property,omitempty"`
	UnreadCount      int64            `json:"unreadCount"`
}

// ChatDetail is a summary plus one page of messages in ascending time order.
type ChatDetail struct {
	*ChatSummary
	Messages []*Message `json:"messages"`
}

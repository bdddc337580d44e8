package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/domains/chat/model"
	"homefinder-backend/internal/domains/chat/repository"
	propertyModel "homefinder-backend/internal/domains/property/model"
	userModel "homefinder-backend/internal/domains/user/model"
	"homefinder-backend/internal/infrastructure/realtime"
	"homefinder-backend/internal/shared/utils"
)

type chatService struct {
	repo       repository.Repository
	users      ProfileLookup
	properties PropertyLookup
	notifier   Notifier
	recorder   Recorder

	now func() time.Time
}

// NewChatService wires the chat service. notifier and recorder may be nil.
func NewChatService(
	repo repository.Repository,
	users ProfileLookup,
	properties PropertyLookup,
	notifier Notifier,
	recorder Recorder,
) ServiceInterface {
	return &chatService{
		repo:       repo,
		users:      users,
		properties: properties,
		notifier:   notifier,
		recorder:   recorder,
		now:        time.Now,
	}
}

// ========================================
// CHATS
// ========================================

func (s *chatService) ListMyChats(ctx context.Context, userID uuid.UUID) ([]*model.ChatSummary, error) {
	chats, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.UnreadByChat(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.summarize(ctx, userID, chats)
	if err != nil {
		return nil, err
	}
	for _, sum := range summaries {
		sum.UnreadCount = unread[sum.ID]
	}
	return summaries, nil
}

func (s *chatService) GetChat(ctx context.Context, chatID string, userID uuid.UUID, page utils.Pagination) (*model.ChatDetail, int64, error) {
	// Step 1: Load and authorize
	chat, err := s.participantChat(ctx, chatID, userID)
	if err != nil {
		return nil, 0, err
	}

	// Step 2: Newest page from the store, returned oldest first
	messages, total, err := s.repo.ListMessages(ctx, chatID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	// Step 3: Opening a chat reads everything addressed to the caller
	if _, err := s.repo.MarkRead(ctx, chatID, userID, ""); err != nil {
		return nil, 0, err
	}
	for _, m := range messages {
		if m.RecipientID == userID {
			m.IsRead = true
		}
	}

	summaries, err := s.summarize(ctx, userID, []*model.Chat{chat})
	if err != nil {
		return nil, 0, err
	}

	return &model.ChatDetail{ChatSummary: summaries[0], Messages: messages}, total, nil
}

func (s *chatService) StartChat(ctx context.Context, userID uuid.UUID, req model.StartChatRequest) (*model.ChatSummary, bool, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, false, model.NewValidationError(err)
	}
	recipientID := uuid.MustParse(req.RecipientID)
	propertyID := uuid.MustParse(req.PropertyID)
	if recipientID == userID {
		return nil, false, model.NewValidationMessage("You cannot start a chat with yourself")
	}

	// Step 2: Both references must exist
	if _, err := s.users.GetProfile(ctx, recipientID); err != nil {
		if errors.Is(err, userModel.ErrUserNotFound) {
			return nil, false, model.NewRecipientNotFoundError()
		}
		return nil, false, err
	}
	if _, err := s.properties.GetProperty(ctx, propertyID); err != nil {
		if errors.Is(err, propertyModel.ErrPropertyNotFound) {
			return nil, false, model.NewPropertyNotFoundError()
		}
		return nil, false, err
	}

	// Step 3: Upsert on the unique (participant pair, property) key
	chat, created, err := s.repo.GetOrCreate(ctx, userID, recipientID, propertyID, s.now())
	if err != nil {
		return nil, false, err
	}

	if created {
		log.Info().
			Str("chat_id", chat.ID).
			Str("property_id", propertyID.String()).
			Msg("Chat created")
	}

	summaries, err := s.summarize(ctx, userID, []*model.Chat{chat})
	if err != nil {
		return nil, false, err
	}
	return summaries[0], created, nil
}

// ========================================
// MESSAGES
// ========================================

func (s *chatService) SendMessage(ctx context.Context, chatID string, senderID uuid.UUID, req model.SendMessageRequest) (*model.Message, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 2: Only participants may write
	chat, err := s.participantChat(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ChatID:      chatID,
		SenderID:    senderID,
		RecipientID: chat.Other(senderID),
		Content:     strings.TrimSpace(req.Content),
		CreatedAt:   s.now(),
	}

	// Step 3: Persist; the chat's updatedAt moves with it
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		if errors.Is(err, model.ErrChatNotFound) {
			return nil, model.NewChatNotFoundError(chatID)
		}
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.MessageSent()
	}

	// Step 4: Push to both sides, best effort
	s.push(msg.RecipientID, msg)
	s.push(senderID, msg)

	return msg, nil
}

func (s *chatService) push(userID uuid.UUID, msg *model.Message) {
	if s.notifier == nil || userID == uuid.Nil {
		return
	}
	delivered := s.notifier.Notify(userID, realtime.EventReceiveMessage, msg)
	if s.recorder != nil {
		s.recorder.Notification(realtime.EventReceiveMessage, delivered)
	}
}

func (s *chatService) MarkRead(ctx context.Context, chatID string, userID uuid.UUID, req model.MarkReadRequest) (int64, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return 0, err
	}

	messageID := strings.TrimSpace(req.MessageID)
	updated, err := s.repo.MarkRead(ctx, chatID, userID, messageID)
	if err != nil {
		if errors.Is(err, model.ErrMessageNotFound) {
			return 0, model.NewMessageNotFoundError(messageID)
		}
		return 0, err
	}
	return updated, nil
}

func (s *chatService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// ========================================
// HELPERS
// ========================================

func (s *chatService) participantChat(ctx context.Context, chatID string, userID uuid.UUID) (*model.Chat, error) {
	chat, err := s.repo.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, model.ErrChatNotFound) {
			return nil, model.NewChatNotFoundError(chatID)
		}
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, model.NewForbiddenError()
	}
	return chat, nil
}

// summarize attaches the other participant and the property to each chat. Missing users
// or properties leave the field empty.
func (s *chatService) summarize(ctx context.Context, userID uuid.UUID, chats []*model.Chat) ([]*model.ChatSummary, error) {
	otherIDs := make([]uuid.UUID, 0, len(chats))
	for _, c := range chats {
		otherIDs = append(otherIDs, c.Other(userID))
	}

	profiles, err := s.users.GetProfiles(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	properties := make(map[uuid.UUID]*propertyModel.Property)
	summaries := make([]*model.ChatSummary, 0, len(chats))
	for _, c := range chats {
		sum := &model.ChatSummary{Chat: c}

		p, seen := properties[c.PropertyID]
		if !seen {
			p, err = s.properties.GetProperty(ctx, c.PropertyID)
			if err != nil && !errors.Is(err, propertyModel.ErrPropertyNotFound) {
				return nil, err
			}
			properties[c.PropertyID] = p
		}
		if p != nil {
			sum.Property = &model.PropertySummary{ID: p.ID, Title: p.Title, Location: p.Location}
			if len(p.Images) > 0 {
				sum.Property.Image = p.Images[0]
			}
		}

		otherID := c.Other(userID)
		if profile, ok := profiles[otherID]; ok {
			sum.OtherParticipant = &model.Counterpart{
				ID:      profile.ID,
				Name:    profile.Name,
				Avatar:  profile.Avatar,
				IsOwner: p != nil && p.OwnerID == otherID,
				Online:  s.notifier != nil && s.notifier.IsOnline(otherID),
			}
		}

		summaries = append(summaries, sum)
	}
	return summaries, nil
}

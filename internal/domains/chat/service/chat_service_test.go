package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefinder-backend/internal/domains/chat/model"
	propertyModel "homefinder-backend/internal/domains/property/model"
	userModel "homefinder-backend/internal/domains/user/model"
	"homefinder-backend/internal/shared/utils"
)

// ========================================
// FAKES
// ========================================

type fakeRepo struct {
	chats    map[string]*model.Chat
	keys     map[string]string
	messages []*model.Message
	seq      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{chats: map[string]*model.Chat{}, keys: map[string]string{}}
}

func (r *fakeRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("%024x", r.seq)
}

func (r *fakeRepo) EnsureIndexes(context.Context) error { return nil }

func (r *fakeRepo) GetOrCreate(_ context.Context, a, b, propertyID uuid.UUID, now time.Time) (*model.Chat, bool, error) {
	key := model.ParticipantKey(a, b) + "/" + propertyID.String()
	if id, ok := r.keys[key]; ok {
		cp := *r.chats[id]
		return &cp, false, nil
	}
	c := &model.Chat{
		ID:           r.nextID(),
		Participants: []uuid.UUID{a, b},
		PropertyID:   propertyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.chats[c.ID] = c
	r.keys[key] = c.ID
	cp := *c
	return &cp, true, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return nil, model.ErrChatNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]*model.Chat, error) {
	out := make([]*model.Chat, 0)
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeRepo) InsertMessage(_ context.Context, msg *model.Message) error {
	c, ok := r.chats[msg.ChatID]
	if !ok {
		return model.ErrChatNotFound
	}
	msg.ID = r.nextID()
	cp := *msg
	r.messages = append(r.messages, &cp)
	c.UpdatedAt = msg.CreatedAt
	c.LastMessage = &model.Preview{Content: msg.Content, SenderID: msg.SenderID, SentAt: msg.CreatedAt}
	return nil
}

func (r *fakeRepo) ListMessages(_ context.Context, chatID string, limit, offset int) ([]*model.Message, int64, error) {
	all := make([]*model.Message, 0)
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].ChatID == chatID {
			cp := *r.messages[i]
			all = append(all, &cp)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []*model.Message{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeRepo) MarkRead(_ context.Context, chatID string, userID uuid.UUID, messageID string) (int64, error) {
	var n int64
	found := messageID == ""
	for _, m := range r.messages {
		if m.ChatID != chatID {
			continue
		}
		if messageID != "" && (m.ID != messageID || m.RecipientID != userID) {
			continue
		}
		found = true
		if m.RecipientID == userID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	if !found {
		return 0, model.ErrMessageNotFound
	}
	return n, nil
}

func (r *fakeRepo) UnreadByChat(_ context.Context, userID uuid.UUID) (map[string]int64, error) {
	out := map[string]int64{}
	for _, m := range r.messages {
		if m.RecipientID == userID && !m.IsRead {
			out[m.ChatID]++
		}
	}
	return out, nil
}

func (r *fakeRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	counts, _ := r.UnreadByChat(ctx, userID)
	var total int64
	for _, n := range counts {
		total += n
	}
	return total, nil
}

type fakeUsers struct {
	profiles map[uuid.UUID]*userModel.Profile
}

func (f *fakeUsers) GetProfile(_ context.Context, id uuid.UUID) (*userModel.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, userModel.NewUserNotFoundError("User not found")
	}
	return p, nil
}

func (f *fakeUsers) GetProfiles(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*userModel.Profile, error) {
	out := map[uuid.UUID]*userModel.Profile{}
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeProperties struct {
	items map[uuid.UUID]*propertyModel.Property
}

func (f *fakeProperties) GetProperty(_ context.Context, id uuid.UUID) (*propertyModel.Property, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, propertyModel.NewPropertyNotFoundError(id)
	}
	return p, nil
}

type pushed struct {
	userID uuid.UUID
	event  string
}

type fakeNotifier struct {
	online map[uuid.UUID]bool
	pushes []pushed
}

func (n *fakeNotifier) Notify(userID uuid.UUID, eventType string, _ interface{}) bool {
	n.pushes = append(n.pushes, pushed{userID: userID, event: eventType})
	return n.online[userID]
}

func (n *fakeNotifier) IsOnline(userID uuid.UUID) bool {
	return n.online[userID]
}

type fakeRecorder struct {
	messages  int
	delivered map[bool]int
}

func (r *fakeRecorder) MessageSent() { r.messages++ }

func (r *fakeRecorder) Notification(_ string, delivered bool) { r.delivered[delivered]++ }

// ========================================
// FIXTURE
// ========================================

type fixture struct {
	svc      *chatService
	repo     *fakeRepo
	notifier *fakeNotifier
	recorder *fakeRecorder

	owner, tenant, stranger uuid.UUID
	property                *propertyModel.Property
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	owner, tenant, stranger := uuid.New(), uuid.New(), uuid.New()
	property := &propertyModel.Property{
		ID:       uuid.New(),
		OwnerID:  owner,
		Title:    "Flat A",
		Location: "Baner, Pune",
		Images:   []string{"http://minio/a.jpg"},
	}

	repo := newFakeRepo()
	users := &fakeUsers{profiles: map[uuid.UUID]*userModel.Profile{
		owner:    {ID: owner, Name: "Owner", Avatar: "owner.png"},
		tenant:   {ID: tenant, Name: "Tenant"},
		stranger: {ID: stranger, Name: "Stranger"},
	}}
	props := &fakeProperties{items: map[uuid.UUID]*propertyModel.Property{property.ID: property}}
	notifier := &fakeNotifier{online: map[uuid.UUID]bool{tenant: true}}
	recorder := &fakeRecorder{delivered: map[bool]int{}}

	svc := NewChatService(repo, users, props, notifier, recorder).(*chatService)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return &fixture{
		svc:      svc,
		repo:     repo,
		notifier: notifier,
		recorder: recorder,
		owner:    owner,
		tenant:   tenant,
		stranger: stranger,
		property: property,
	}
}

func (f *fixture) start(t *testing.T) *model.ChatSummary {
	t.Helper()
	chat, _, err := f.svc.StartChat(context.Background(), f.tenant, model.StartChatRequest{
		RecipientID: f.owner.String(),
		PropertyID:  f.property.ID.String(),
	})
	require.NoError(t, err)
	return chat
}

func chatCode(t *testing.T, err error) string {
	t.Helper()
	var cErr *model.ChatError
	require.True(t, errors.As(err, &cErr), "expected ChatError, got %v", err)
	return cErr.Code
}

// ========================================
// TESTS
// ========================================

func TestStartChat_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.svc.StartChat(ctx, f.tenant, model.StartChatRequest{
		RecipientID: f.owner.String(),
		PropertyID:  f.property.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first.OtherParticipant)
	assert.True(t, first.OtherParticipant.IsOwner)
	assert.False(t, first.OtherParticipant.Online)
	assert.Equal(t, "Flat A", first.Property.Title)
	assert.Equal(t, "http://minio/a.jpg", first.Property.Image)

	second, created, err := f.svc.StartChat(ctx, f.tenant, model.StartChatRequest{
		RecipientID: f.owner.String(),
		PropertyID:  f.property.ID.String(),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	// The owner opening it from their side reuses the same chat
	third, created, err := f.svc.StartChat(ctx, f.owner, model.StartChatRequest{
		RecipientID: f.tenant.String(),
		PropertyID:  f.property.ID.String(),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, third.ID)
	assert.False(t, third.OtherParticipant.IsOwner)
	assert.True(t, third.OtherParticipant.Online, "the tenant has a live session")
}

func TestStartChat_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.StartChat(ctx, f.tenant, model.StartChatRequest{PropertyID: f.property.ID.String()})
	assert.Equal(t, model.ErrCodeValidation, chatCode(t, err))

	_, _, err = f.svc.StartChat(ctx, f.tenant, model.StartChatRequest{RecipientID: f.tenant.String(), PropertyID: f.property.ID.String()})
	assert.Equal(t, model.ErrCodeValidation, chatCode(t, err))

	_, _, err = f.svc.StartChat(ctx, f.tenant, model.StartChatRequest{RecipientID: uuid.NewString(), PropertyID: f.property.ID.String()})
	assert.Equal(t, model.ErrCodeRecipientNotFound, chatCode(t, err))

	_, _, err = f.svc.StartChat(ctx, f.tenant, model.StartChatRequest{RecipientID: f.owner.String(), PropertyID: uuid.NewString()})
	assert.Equal(t, model.ErrCodePropertyNotFound, chatCode(t, err))

	assert.Empty(t, f.repo.chats)
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat := f.start(t)

	msg, err := f.svc.SendMessage(ctx, chat.ID, f.tenant, model.SendMessageRequest{Content: "  Is it still available?  "})
	require.NoError(t, err)
	assert.Equal(t, "Is it still available?", msg.Content)
	assert.Equal(t, f.owner, msg.RecipientID)
	assert.False(t, msg.IsRead)
	assert.NotEmpty(t, msg.ID)

	stored := f.repo.chats[chat.ID]
	assert.Equal(t, msg.CreatedAt, stored.UpdatedAt)
	assert.Equal(t, "Is it still available?", stored.LastMessage.Content)

	require.Len(t, f.notifier.pushes, 2)
	assert.Equal(t, f.owner, f.notifier.pushes[0].userID)
	assert.Equal(t, f.tenant, f.notifier.pushes[1].userID)
	assert.Equal(t, "receive_message", f.notifier.pushes[0].event)
	assert.Equal(t, 1, f.recorder.messages)
	assert.Equal(t, 1, f.recorder.delivered[false], "owner is offline")
	assert.Equal(t, 1, f.recorder.delivered[true])
}

func TestSendMessage_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat := f.start(t)

	_, err := f.svc.SendMessage(ctx, chat.ID, f.stranger, model.SendMessageRequest{Content: "hi"})
	assert.Equal(t, model.ErrCodeForbidden, chatCode(t, err))

	_, err = f.svc.SendMessage(ctx, "missing", f.tenant, model.SendMessageRequest{Content: "hi"})
	assert.Equal(t, model.ErrCodeChatNotFound, chatCode(t, err))

	_, err = f.svc.SendMessage(ctx, chat.ID, f.tenant, model.SendMessageRequest{Content: "   "})
	assert.Equal(t, model.ErrCodeValidation, chatCode(t, err))

	long := make([]rune, model.MaxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = f.svc.SendMessage(ctx, chat.ID, f.tenant, model.SendMessageRequest{Content: string(long)})
	assert.Equal(t, model.ErrCodeValidation, chatCode(t, err))

	assert.Empty(t, f.repo.messages)
	assert.Empty(t, f.notifier.pushes)
}

func TestSendMessage_NoNotifier(t *testing.T) {
	f := newFixture(t)
	f.svc.notifier = nil
	chat := f.start(t)

	_, err := f.svc.SendMessage(context.Background(), chat.ID, f.tenant, model.SendMessageRequest{Content: "hello"})
	require.NoError(t, err)
	assert.Len(t, f.repo.messages, 1)
}

func TestUnreadCount_Monotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat := f.start(t)

	for i := 1; i <= 3; i++ {
		_, err := f.svc.SendMessage(ctx, chat.ID, f.tenant, model.SendMessageRequest{Content: fmt.Sprintf("message %d", i)})
		require.NoError(t, err)

		count, err := f.svc.UnreadCount(ctx, f.owner)
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)
	}

	count, err := f.svc.UnreadCount(ctx, f.tenant)
	require.NoError(t, err)
	assert.Zero(t, count, "own messages are never unread")
}

func TestMarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat := f.start(t)

	first, err := f.svc.SendMessage(ctx, chat.ID, f.tenant, model.SendMessageRequest{Content: "one"})
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, chat.ID, f.tenant, model.SendMessageRequest{Content: "two"})
	require.NoError(t, err)

	updated, err := f.svc.MarkRead(ctx, chat.ID, f.owner, model.MarkReadRequest{MessageID: first.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	updated, err = f.svc.MarkRead(ctx, chat.ID, f.owner, model.MarkReadRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	count, err := f.svc.UnreadCount(ctx, f.owner)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.svc.MarkRead(ctx, chat.ID, f.stranger, model.MarkReadRequest{})
	assert.Equal(t, model.ErrCodeForbidden, chatCode(t, err))

	_, err = f.svc.MarkRead(ctx, chat.ID, f.owner, model.MarkReadRequest{MessageID: "nope"})
	assert.Equal(t, model.ErrCodeMessageNotFound, chatCode(t, err))

	// The sender cannot mark their own outgoing message
	_, err = f.svc.MarkRead(ctx, chat.ID, f.tenant, model.MarkReadRequest{MessageID: first.ID})
	assert.Equal(t, model.ErrCodeMessageNotFound, chatCode(t, err))
}

func TestGetChat_PagesAscendingAndMarksRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat := f.start(t)

	for i := 1; i <= 5; i++ {
		_, err := f.svc.SendMessage(ctx, chat.ID, f.tenant, model.SendMessageRequest{Content: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	detail, total, err := f.svc.GetChat(ctx, chat.ID, f.owner, utils.Pagination{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, detail.Messages, 3)
	assert.Equal(t, []string{"m3", "m4", "m5"}, []string{detail.Messages[0].Content, detail.Messages[1].Content, detail.Messages[2].Content})
	assert.True(t, detail.Messages[0].IsRead)
	assert.Equal(t, "Tenant", detail.OtherParticipant.Name)

	count, err := f.svc.UnreadCount(ctx, f.owner)
	require.NoError(t, err)
	assert.Zero(t, count)

	older, _, err := f.svc.GetChat(ctx, chat.ID, f.owner, utils.Pagination{Page: 2, Limit: 3})
	require.NoError(t, err)
	require.Len(t, older.Messages, 2)
	assert.Equal(t, "m1", older.Messages[0].Content)

	_, _, err = f.svc.GetChat(ctx, chat.ID, f.stranger, utils.Pagination{Page: 1, Limit: 3})
	assert.Equal(t, model.ErrCodeForbidden, chatCode(t, err))
}

func TestListMyChats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &propertyModel.Property{ID: uuid.New(), OwnerID: f.stranger, Title: "Flat B"}
	f.svc.properties.(*fakeProperties).items[other.ID] = other

	first := f.start(t)
	second, _, err := f.svc.StartChat(ctx, f.tenant, model.StartChatRequest{
		RecipientID: f.stranger.String(),
		PropertyID:  other.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, first.ID, f.owner, model.SendMessageRequest{Content: "welcome"})
	require.NoError(t, err)

	chats, err := f.svc.ListMyChats(ctx, f.tenant)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, first.ID, chats[0].ID, "most recent activity first")
	assert.Equal(t, int64(1), chats[0].UnreadCount)
	assert.Equal(t, "welcome", chats[0].LastMessage.Content)
	assert.Equal(t, second.ID, chats[1].ID)
	assert.Zero(t, chats[1].UnreadCount)

	none, err := f.svc.ListMyChats(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

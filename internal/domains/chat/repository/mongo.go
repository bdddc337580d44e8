package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homefinder-backend/internal/domains/chat/model"
	"homefinder-backend/internal/infrastructure/document"
)

const (
	chatsCollection    = "chats"
	messagesCollection = "messages"
)

type mongoRepository struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewMongoRepository(db *document.MongoDB) Repository {
	return &mongoRepository{
		chats:    db.Collection(chatsCollection),
		messages: db.Collection(messagesCollection),
	}
}

// ========================================
// DOCUMENTS
// ========================================

type previewDoc struct {
	Content  string    `bson:"content"`
	SenderID string    `bson:"sender_id"`
	SentAt   time.Time `bson:"sent_at"`
}

type chatDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Participants   []string           `bson:"participants"`
	ParticipantKey string             `bson:"participant_key"`
	PropertyID     string             `bson:"property_id"`
	LastMessage    *previewDoc        `bson:"last_message,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

type messageDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	ChatID      primitive.ObjectID `bson:"chat_id"`
	SenderID    string             `bson:"sender_id"`
	RecipientID string             `bson:"recipient_id"`
	Content     string             `bson:"content"`
	IsRead      bool               `bson:"is_read"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d *chatDoc) toModel() *model.Chat {
	propertyID, _ := uuid.Parse(d.PropertyID)
	c := &model.Chat{
		ID:           d.ID.Hex(),
		Participants: make([]uuid.UUID, 0, len(d.Participants)),
		PropertyID:   propertyID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, p := range d.Participants {
		if id, err := uuid.Parse(p); err == nil {
			c.Participants = append(c.Participants, id)
		}
	}
	if d.LastMessage != nil {
		sender, _ := uuid.Parse(d.LastMessage.SenderID)
		c.LastMessage = &model.Preview{
			Content:  d.LastMessage.Content,
			SenderID: sender,
			SentAt:   d.LastMessage.SentAt,
		}
	}
	return c
}

func (d *messageDoc) toModel() *model.Message {
	sender, _ := uuid.Parse(d.SenderID)
	recipient, _ := uuid.Parse(d.RecipientID)
	return &model.Message{
		ID:          d.ID.Hex(),
		ChatID:      d.ChatID.Hex(),
		SenderID:    sender,
		RecipientID: recipient,
		Content:     d.Content,
		IsRead:      d.IsRead,
		CreatedAt:   d.CreatedAt,
	}
}

// ========================================
// INDEXES
// ========================================

func (r *mongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "participant_key", Value: 1}, {Key: "property_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_participants_property"),
		},
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create chat indexes: %w", err)
	}

	_, err = r.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create message indexes: %w", err)
	}
	return nil
}

// ========================================
// CHATS
// ========================================

func (r *mongoRepository) GetOrCreate(ctx context.Context, a, b, propertyID uuid.UUID, now time.Time) (*model.Chat, bool, error) {
	key := model.ParticipantKey(a, b)
	filter := bson.M{"participant_key": key, "property_id": propertyID.String()}

	newID := primitive.NewObjectID()
	update := bson.M{"$setOnInsert": bson.M{
		"_id":          newID,
		"participants": []string{a.String(), b.String()},
		"created_at":   now,
		"updated_at":   now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc chatDoc
	err := r.chats.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert inserted the chat first
		err = r.chats.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		return nil, false, fmt.Errorf("get or create chat: %w", err)
	}
	return doc.toModel(), doc.ID == newID, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*model.Chat, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrChatNotFound
	}

	var doc chatDoc
	if err := r.chats.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrChatNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.chats.Find(ctx, bson.M{"participants": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	var docs []chatDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}

	chats := make([]*model.Chat, 0, len(docs))
	for i := range docs {
		chats = append(chats, docs[i].toModel())
	}
	return chats, nil
}

// ========================================
// MESSAGES
// ========================================

func (r *mongoRepository) InsertMessage(ctx context.Context, msg *model.Message) error {
	chatID, err := primitive.ObjectIDFromHex(msg.ChatID)
	if err != nil {
		return model.ErrChatNotFound
	}

	id := primitive.NewObjectID()
	doc := messageDoc{
		ID:          id,
		ChatID:      chatID,
		SenderID:    msg.SenderID.String(),
		RecipientID: msg.RecipientID.String(),
		Content:     msg.Content,
		IsRead:      msg.IsRead,
		CreatedAt:   msg.CreatedAt,
	}
	if _, err := r.messages.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	msg.ID = id.Hex()

	_, err = r.chats.UpdateByID(ctx, chatID, bson.M{"$set": bson.M{
		"updated_at": msg.CreatedAt,
		"last_message": previewDoc{
			Content:  msg.Content,
			SenderID: msg.SenderID.String(),
			SentAt:   msg.CreatedAt,
		},
	}})
	if err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	return nil
}

func (r *mongoRepository) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*model.Message, int64, error) {
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, 0, model.ErrChatNotFound
	}
	filter := bson.M{"chat_id": oid}

	total, err := r.messages.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}

	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode messages: %w", err)
	}

	messages := make([]*model.Message, 0, len(docs))
	for i := range docs {
		messages = append(messages, docs[i].toModel())
	}
	return messages, total, nil
}

func (r *mongoRepository) MarkRead(ctx context.Context, chatID string, userID uuid.UUID, messageID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return 0, model.ErrChatNotFound
	}

	update := bson.M{"$set": bson.M{"is_read": true}}

	if messageID == "" {
		result, err := r.messages.UpdateMany(ctx, bson.M{
			"chat_id":      oid,
			"recipient_id": userID.String(),
			"is_read":      false,
		}, update)
		if err != nil {
			return 0, fmt.Errorf("mark messages read: %w", err)
		}
		return result.ModifiedCount, nil
	}

	// A single message must belong to the chat and be addressed to the caller.
	// Already read messages match with nothing modified.
	mid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return 0, model.ErrMessageNotFound
	}
	result, err := r.messages.UpdateOne(ctx, bson.M{
		"_id":          mid,
		"chat_id":      oid,
		"recipient_id": userID.String(),
	}, update)
	if err != nil {
		return 0, fmt.Errorf("mark message read: %w", err)
	}
	if result.MatchedCount == 0 {
		return 0, model.ErrMessageNotFound
	}
	return result.ModifiedCount, nil
}

func (r *mongoRepository) UnreadByChat(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipient_id": userID.String(), "is_read": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$chat_id", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate unread: %w", err)
	}

	var rows []struct {
		ChatID primitive.ObjectID `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode unread: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ChatID.Hex()] = row.Count
	}
	return counts, nil
}

func (r *mongoRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := r.messages.CountDocuments(ctx, bson.M{"recipient_id": userID.String(), "is_read": false})
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

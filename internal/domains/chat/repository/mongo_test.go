package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"homefinder-backend/internal/domains/chat/model"
)

func updateReply(matched, modified int) bson.D {
	return bson.D{
		{Key: "ok", Value: 1},
		{Key: "n", Value: matched},
		{Key: "nModified", Value: modified},
	}
}

func TestMarkRead_SingleMessage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	chatID := primitive.NewObjectID().Hex()
	messageID := primitive.NewObjectID().Hex()
	userID := uuid.New()

	mt.Run("unread message addressed to the caller", func(mt *mtest.T) {
		repo := &mongoRepository{chats: mt.Coll, messages: mt.Coll}
		mt.AddMockResponses(updateReply(1, 1))

		n, err := repo.MarkRead(context.Background(), chatID, userID, messageID)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), n)
	})

	mt.Run("already read", func(mt *mtest.T) {
		repo := &mongoRepository{chats: mt.Coll, messages: mt.Coll}
		mt.AddMockResponses(updateReply(1, 0))

		n, err := repo.MarkRead(context.Background(), chatID, userID, messageID)
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})

	mt.Run("other chat or other recipient", func(mt *mtest.T) {
		repo := &mongoRepository{chats: mt.Coll, messages: mt.Coll}
		mt.AddMockResponses(updateReply(0, 0))

		_, err := repo.MarkRead(context.Background(), chatID, userID, messageID)
		assert.ErrorIs(mt, err, model.ErrMessageNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := &mongoRepository{chats: mt.Coll, messages: mt.Coll}

		_, err := repo.MarkRead(context.Background(), chatID, userID, "nope")
		assert.ErrorIs(mt, err, model.ErrMessageNotFound)
	})
}

func TestMarkRead_WholeChat(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("nothing unread is not an error", func(mt *mtest.T) {
		repo := &mongoRepository{chats: mt.Coll, messages: mt.Coll}
		mt.AddMockResponses(updateReply(0, 0))

		n, err := repo.MarkRead(context.Background(), primitive.NewObjectID().Hex(), uuid.New(), "")
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})
}

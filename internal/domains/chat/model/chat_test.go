package model

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParticipantKey_OrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, ParticipantKey(a, b), ParticipantKey(b, a))
	assert.NotEqual(t, ParticipantKey(a, b), ParticipantKey(a, uuid.New()))
}

func TestChatParticipants(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	c := &Chat{Participants: []uuid.UUID{a, b}}

	assert.True(t, c.HasParticipant(a))
	assert.False(t, c.HasParticipant(uuid.New()))
	assert.Equal(t, b, c.Other(a))
	assert.Equal(t, a, c.Other(b))
}

func TestSendMessageRequest_Validate(t *testing.T) {
	assert.NoError(t, SendMessageRequest{Content: "hi"}.Validate())
	assert.Error(t, SendMessageRequest{Content: " \n "}.Validate())
	assert.NoError(t, SendMessageRequest{Content: strings.Repeat("ए", MaxMessageLength)}.Validate())
	assert.Error(t, SendMessageRequest{Content: strings.Repeat("a", MaxMessageLength+1)}.Validate())
}

func TestStartChatRequest_Validate(t *testing.T) {
	assert.NoError(t, StartChatRequest{RecipientID: uuid.NewString(), PropertyID: uuid.NewString()}.Validate())
	assert.Error(t, StartChatRequest{RecipientID: uuid.NewString()}.Validate())
	assert.Error(t, StartChatRequest{RecipientID: "bob", PropertyID: uuid.NewString()}.Validate())
}

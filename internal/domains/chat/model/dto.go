package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const MaxMessageLength = 2000

type StartChatRequest struct {
	RecipientID string `json:"recipientId"`
	PropertyID  string `json:"propertyId"`
}

func (r StartChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RecipientID, validation.Required.Error("Recipient and property are required"), is.UUID),
		validation.Field(&r.PropertyID, validation.Required.Error("Recipient and property are required"), is.UUID),
	)
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

func (r SendMessageRequest) Validate() error {
	content := strings.TrimSpace(r.Content)
	return validation.Validate(content,
		validation.Required.Error("Message content is required"),
		validation.RuneLength(1, MaxMessageLength).Error("Message is too long"),
	)
}

type MarkReadRequest struct {
	MessageID string `json:"messageId"`
}

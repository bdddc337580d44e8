package shared

// Asynq task types.
const (
	TypeSendEmail                = "email:send"
	TypeDeletePropertyImages     = "property:delete_images"
	TypeCleanupExpiredCredential = "auth:cleanup_expired_credentials"
)

// Asynq queues and their priorities.
const (
	QueueEmail       = "email"
	QueueMaintenance = "maintenance"
	QueueDefault     = "default"
)

var QueuePriorities = map[string]int{
	QueueEmail:       6,
	QueueDefault:     3,
	QueueMaintenance: 1,
}

// DeletePropertyImagesPayload carries the stored image URLs of a deleted property.
type DeletePropertyImagesPayload struct {
	PropertyID string   `json:"propertyId"`
	ImageURLs  []string `json:"imageUrls"`
}

// CleanupExpiredCredentialsPayload is empty; the handler uses the current time.
type CleanupExpiredCredentialsPayload struct{}

// Context keys set by the auth middleware.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextEmail  = "email"
	ContextClaims = "claims"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

package main

import (
	"github.com/hibiken/asynq"

	propertyJob "homefinder-backend/internal/domains/property/job"
	userJob "homefinder-backend/internal/domains/user/job"
	emailJob "homefinder-backend/internal/infrastructure/email/job"
	"homefinder-backend/internal/shared"
	"homefinder-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Email delivery
	email *emailJob.EmailHandler

	// Property maintenance
	deleteImages *propertyJob.DeleteImagesHandler

	// Scheduled maintenance
	cleanupCredentials *userJob.CleanupExpiredCredentialsHandler
}

// initializeHandlers creates all job handlers. Queued email is always delivered over SMTP
// here, whatever EMAIL_DELIVERY says for the API.
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		email:              emailJob.NewEmailHandler(c.DirectMailer()),
		deleteImages:       propertyJob.NewDeleteImagesHandler(c.PropertyService),
		cleanupCredentials: userJob.NewCleanupExpiredCredentialsHandler(c.UserService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeSendEmail, h.email.ProcessTask)
	mux.HandleFunc(shared.TypeDeletePropertyImages, h.deleteImages.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupExpiredCredential, h.cleanupCredentials.ProcessTask)
}

package email

// Template names understood by the renderer.
const (
	TemplateOTPVerification   = "otp_verification"
	TemplateTempPassword      = "temp_password"
	TemplatePasswordReset     = "password_reset"
	TemplateBookingTenant     = "booking_tenant_confirmation"
	TemplateBookingOwner      = "booking_owner_notification"
	TemplateDemoBookingTenant = "demo_booking_tenant_confirmation"
	TemplateDemoBookingOwner  = "demo_booking_owner_notification"
)

// Message is a template name plus the variables it is rendered with.
// It is also the asynq payload for queued delivery.
type Message struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

package email

import (
	"bytes"
	"fmt"
	"html/template"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[string]emailTemplate{
	TemplateOTPVerification: {
		subject: "Homefinder Email Verification - OTP",
		body: template.Must(template.New(TemplateOTPVerification).Parse(`<p>Hi {{.name}},</p>
<p>Your Homefinder verification code is <strong>{{.otp}}</strong>.</p>
<p>The code expires in {{.expiresIn}}.</p>`)),
	},
	TemplateTempPassword: {
		subject: "Homefinder - Your Temporary Password",
		body: template.Must(template.New(TemplateTempPassword).Parse(`<p>Hi {{.name}},</p>
<p>Your email is verified. Sign in with the temporary password <strong>{{.tempPassword}}</strong>.</p>
<p>It expires in {{.expiresIn}} and becomes your password on first login.</p>`)),
	},
	TemplatePasswordReset: {
		subject: "Homefinder - Password Reset",
		body: template.Must(template.New(TemplatePasswordReset).Parse(`<p>Hi {{.name}},</p>
<p>Use the temporary password <strong>{{.tempPassword}}</strong> to sign in within {{.expiresIn}}.</p>
<p>If you did not ask for this, you can ignore this email.</p>`)),
	},
	TemplateBookingTenant: {
		subject: "Homefinder Booking Confirmation",
		body: template.Must(template.New(TemplateBookingTenant).Parse(`<p>Hi {{.userName}},</p>
<p>Your booking {{.bookingId}} for <strong>{{.propertyTitle}}</strong> ({{.propertyLocation}}) is {{.status}}.</p>
<p>{{.startDate}} to {{.endDate}}, total {{.totalPrice}}.</p>
<p>Owner contact: {{.ownerEmail}}. Details: <a href="{{.bookingUrl}}">{{.bookingUrl}}</a></p>`)),
	},
	TemplateBookingOwner: {
		subject: "Homefinder - New Booking Request",
		body: template.Must(template.New(TemplateBookingOwner).Parse(`<p>Hi {{.userName}},</p>
<p>{{.tenantName}} ({{.tenantEmail}}) booked <strong>{{.propertyTitle}}</strong> ({{.propertyLocation}}).</p>
<p>{{.startDate}} to {{.endDate}}, total {{.totalPrice}}, status {{.status}}.</p>
<p>Details: <a href="{{.bookingUrl}}">{{.bookingUrl}}</a></p>`)),
	},
	TemplateDemoBookingTenant: {
		subject: "Homefinder - Lease Confirmed",
		body: template.Must(template.New(TemplateDemoBookingTenant).Parse(`<p>Hi {{.userName}},</p>
<p>Your lease for <strong>{{.propertyTitle}}</strong> is confirmed from {{.moveInDate}} for {{.leaseDuration}} months.</p>
<p>Monthly rent {{.monthlyRent}}, deposit {{.securityDeposit}}, platform fee {{.platformFee}}, total {{.totalAmount}}.</p>`)),
	},
	TemplateDemoBookingOwner: {
		subject: "Homefinder - Your Property Was Leased",
		body: template.Must(template.New(TemplateDemoBookingOwner).Parse(`<p>Hi {{.userName}},</p>
<p>{{.tenantName}} ({{.tenantEmail}}) leased <strong>{{.propertyTitle}}</strong> from {{.moveInDate}} for {{.leaseDuration}} months.</p>
<p>Monthly rent {{.monthlyRent}}, total {{.totalAmount}}.</p>`)),
	},
}

// Render produces the subject and HTML body for a message.
func Render(msg Message) (string, string, error) {
	tpl, ok := templates[msg.Template]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", msg.Template)
	}

	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, msg.Data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", msg.Template, err)
	}
	return tpl.subject, buf.String(), nil
}

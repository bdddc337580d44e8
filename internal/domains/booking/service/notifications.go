package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/domains/booking/model"
	propertyModel "homefinder-backend/internal/domains/property/model"
	"homefinder-backend/internal/infrastructure/email"
)

type contact struct {
	name  string
	email string
}

// parties resolves tenant and owner contact details. The owner comes from the joined
// listing when present.
func (s *bookingService) parties(ctx context.Context, b *model.Booking, property *propertyModel.Property) (contact, contact, error) {
	tenant, err := s.lookup(ctx, b.TenantID)
	if err != nil {
		return contact{}, contact{}, err
	}
	if property.Owner != nil && property.Owner.Email != "" {
		return tenant, contact{name: property.Owner.Name, email: property.Owner.Email}, nil
	}
	owner, err := s.lookup(ctx, b.OwnerID)
	if err != nil {
		return contact{}, contact{}, err
	}
	return tenant, owner, nil
}

func (s *bookingService) lookup(ctx context.Context, id uuid.UUID) (contact, error) {
	profile, err := s.users.GetProfile(ctx, id)
	if err != nil {
		return contact{}, err
	}
	return contact{name: profile.Name, email: profile.Email}, nil
}

func (s *bookingService) bookingURL(id uuid.UUID) string {
	return s.clientURL + "/booking/" + id.String()
}

// sendStandardEmails notifies tenant and owner of a new request. It returns true when
// any message could not be sent.
func (s *bookingService) sendStandardEmails(ctx context.Context, b *model.Booking, property *propertyModel.Property) bool {
	if s.mailer == nil || s.users == nil {
		return false
	}

	tenant, owner, err := s.parties(ctx, b, property)
	if err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("Failed to resolve booking contacts")
		return true
	}

	base := map[string]string{
		"propertyTitle":    property.Title,
		"propertyLocation": property.Location,
		"bookingId":        b.ID.String(),
		"startDate":        b.StartDate.Format(dateLayout),
		"endDate":          b.EndDate.Format(dateLayout),
		"totalPrice":       rupees(b.TotalPrice),
		"status":           b.Status,
		"bookingUrl":       s.bookingURL(b.ID),
	}

	tenantData := withValues(base, map[string]string{
		"userName":   tenant.name,
		"ownerEmail": owner.email,
	})
	ownerData := withValues(base, map[string]string{
		"userName":    owner.name,
		"tenantName":  tenant.name,
		"tenantEmail": tenant.email,
	})

	return s.sendPair(ctx, b.ID,
		email.Message{To: tenant.email, Template: email.TemplateBookingTenant, Data: tenantData},
		email.Message{To: owner.email, Template: email.TemplateBookingOwner, Data: ownerData},
	)
}

func (s *bookingService) sendDemoEmails(ctx context.Context, b *model.Booking, property *propertyModel.Property, quote model.DemoQuote) bool {
	if s.mailer == nil || s.users == nil {
		return false
	}

	tenant, owner, err := s.parties(ctx, b, property)
	if err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("Failed to resolve booking contacts")
		return true
	}

	base := map[string]string{
		"propertyTitle":    property.Title,
		"propertyLocation": property.Location,
		"bookingId":        b.ID.String(),
		"moveInDate":       b.StartDate.Format(dateLayout),
		"leaseDuration":    strconv.Itoa(quote.LeaseDuration),
		"monthlyRent":      rupees(quote.MonthlyRent),
		"securityDeposit":  rupees(quote.SecurityDeposit),
		"platformFee":      rupees(quote.PlatformFee),
		"totalAmount":      rupees(quote.TotalAmount),
		"bookingUrl":       s.bookingURL(b.ID),
	}

	return s.sendPair(ctx, b.ID,
		email.Message{To: tenant.email, Template: email.TemplateDemoBookingTenant, Data: withValues(base, map[string]string{
			"userName": tenant.name,
		})},
		email.Message{To: owner.email, Template: email.TemplateDemoBookingOwner, Data: withValues(base, map[string]string{
			"userName":    owner.name,
			"tenantName":  tenant.name,
			"tenantEmail": tenant.email,
		})},
	)
}

func (s *bookingService) sendPair(ctx context.Context, bookingID uuid.UUID, msgs ...email.Message) bool {
	failed := false
	for _, msg := range msgs {
		if err := s.mailer.Send(ctx, msg); err != nil {
			log.Error().Err(err).
				Str("booking_id", bookingID.String()).
				Str("template", msg.Template).
				Msg("Failed to send booking email")
			failed = true
		}
	}
	return failed
}

func withValues(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"homefinder-backend/internal/config"
	"homefinder-backend/internal/domains/booking/model"
	"homefinder-backend/internal/domains/booking/repository"
	propertyModel "homefinder-backend/internal/domains/property/model"
	"homefinder-backend/internal/infrastructure/email"
	"homefinder-backend/internal/shared/access"
	"homefinder-backend/internal/shared/utils"
)

const (
	kindStandard = "standard"
	kindDemo     = "demo"

	outcomeCreated  = "created"
	outcomeConflict = "conflict"
	outcomeError    = "error"

	noteDemoMode = "demoMode"
	noteMessage  = "message"

	dateLayout = "2006-01-02"
)

type bookingService struct {
	repo       repository.Repository
	properties PropertyReader
	users      UserLookup
	mailer     email.Sender
	recorder   AttemptRecorder
	cfg        config.BookingConfig
	clientURL  string

	now func() time.Time
}

// NewBookingService wires the booking service. mailer and recorder may be nil.
func NewBookingService(
	repo repository.Repository,
	properties PropertyReader,
	users UserLookup,
	mailer email.Sender,
	recorder AttemptRecorder,
	cfg config.BookingConfig,
	clientURL string,
) ServiceInterface {
	if cfg.MaxLeaseMonths <= 0 {
		cfg.MaxLeaseMonths = 36
	}
	return &bookingService{
		repo:       repo,
		properties: properties,
		users:      users,
		mailer:     mailer,
		recorder:   recorder,
		cfg:        cfg,
		clientURL:  strings.TrimRight(clientURL, "/"),
		now:        time.Now,
	}
}

// ========================================
// AVAILABILITY
// ========================================

func (s *bookingService) CheckAvailability(ctx context.Context, propertyID uuid.UUID, dates model.DateRange) (*model.AvailabilityResult, error) {
	start, end, err := dates.Parse()
	if err != nil {
		return nil, model.NewValidationError(err)
	}

	if _, err := s.loadProperty(ctx, propertyID); err != nil {
		return nil, err
	}

	count, err := s.repo.CountOverlapping(ctx, propertyID, start, end, nil)
	if err != nil {
		return nil, err
	}

	return &model.AvailabilityResult{
		IsAvailable:         count == 0,
		PropertyID:          propertyID,
		StartDate:           start,
		EndDate:             end,
		OverlappingBookings: count,
	}, nil
}

// ========================================
// CREATE
// ========================================

func (s *bookingService) CreateBooking(ctx context.Context, propertyID uuid.UUID, requester access.Requester, req model.CreateBookingRequest) (*model.BookingResult, error) {
	// Step 1: Validate dates
	start, end, err := req.DateRange.Parse()
	if err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 2: Property must exist, belong to someone else and be open for booking
	property, err := s.bookableProperty(ctx, propertyID, requester)
	if err != nil {
		return nil, err
	}

	// Step 3: Reject overlapping active bookings
	if err := s.ensureFree(ctx, kindStandard, propertyID, start, end, nil); err != nil {
		return nil, err
	}

	total := model.StandardTotal(property.Price, start, end)
	if req.TotalPrice != nil && req.TotalPrice.IsPositive() {
		total = *req.TotalPrice
	}

	now := s.now()
	b := &model.Booking{
		ID:         uuid.New(),
		PropertyID: propertyID,
		TenantID:   requester.UserID,
		OwnerID:    property.OwnerID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: total,
		Notes:      copyNotes(req.Notes),
		Status:     model.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Step 4: Insert; the exclusion constraint catches concurrent writers
	if err := s.insert(ctx, kindStandard, b, ""); err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("property_id", propertyID.String()).
		Str("tenant_id", requester.UserID.String()).
		Msg("Booking created")

	// Step 5: Notify both parties, best effort
	emailFailed := s.sendStandardEmails(ctx, b, property)

	return s.result(ctx, b, "Booking created successfully", emailFailed), nil
}

func (s *bookingService) CreateDemoBooking(ctx context.Context, propertyID uuid.UUID, requester access.Requester, req model.CreateDemoBookingRequest) (*model.BookingResult, error) {
	// Step 1: Validate
	if err := req.Validate(s.cfg.MaxLeaseMonths); err != nil {
		return nil, model.NewValidationError(err)
	}
	moveIn, err := propertyModel.ParseDate(strings.TrimSpace(req.MoveInDate))
	if err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 2: Property checks
	property, err := s.bookableProperty(ctx, propertyID, requester)
	if err != nil {
		return nil, err
	}

	// Step 3: Price the lease and check the resulting range
	quote := model.QuoteDemo(property.Price, moveIn, req.LeaseDuration, model.DemoTerms{
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		PlatformFee:     req.PlatformFee,
	}, s.cfg.DepositMonths, s.cfg.PlatformFee)

	if err := s.ensureFree(ctx, kindDemo, propertyID, moveIn, quote.EndDate, nil); err != nil {
		return nil, err
	}

	notes := copyNotes(req.Notes)
	notes[noteDemoMode] = "true"
	notes[noteMessage] = "Demo booking, no payment processed"

	now := s.now()
	b := &model.Booking{
		ID:              uuid.New(),
		PropertyID:      propertyID,
		TenantID:        requester.UserID,
		OwnerID:         property.OwnerID,
		StartDate:       moveIn,
		EndDate:         quote.EndDate,
		TotalPrice:      quote.TotalAmount,
		LeaseDuration:   &quote.LeaseDuration,
		MonthlyRent:     &quote.MonthlyRent,
		TotalRent:       &quote.TotalRent,
		SecurityDeposit: &quote.SecurityDeposit,
		PlatformFee:     &quote.PlatformFee,
		TotalAmount:     &quote.TotalAmount,
		Notes:           notes,
		Status:          model.StatusConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Step 4: Insert, marking the listing rented in the same transaction
	propertyStatus := ""
	if s.cfg.DemoMarksRented {
		propertyStatus = propertyModel.StatusRented
	}
	if err := s.insert(ctx, kindDemo, b, propertyStatus); err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("property_id", propertyID.String()).
		Int("lease_months", quote.LeaseDuration).
		Str("total_amount", quote.TotalAmount.String()).
		Msg("Demo booking confirmed")

	emailFailed := s.sendDemoEmails(ctx, b, property, quote)

	return s.result(ctx, b, "Demo booking confirmed", emailFailed), nil
}

// bookableProperty loads the property and applies the self-booking and status rules.
func (s *bookingService) bookableProperty(ctx context.Context, propertyID uuid.UUID, requester access.Requester) (*propertyModel.Property, error) {
	property, err := s.loadProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := access.PreventSelfBooking(property, requester); err != nil {
		return nil, model.NewSelfBookingError()
	}
	if !property.IsAvailable() {
		return nil, model.NewPropertyUnavailableError(property.Status)
	}
	return property, nil
}

func (s *bookingService) ensureFree(ctx context.Context, kind string, propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	count, err := s.repo.CountOverlapping(ctx, propertyID, start, end, excludeID)
	if err != nil {
		s.record(kind, outcomeError)
		return err
	}
	if count > 0 {
		s.record(kind, outcomeConflict)
		return model.NewOverlapError()
	}
	return nil
}

func (s *bookingService) insert(ctx context.Context, kind string, b *model.Booking, propertyStatus string) error {
	if err := s.repo.Create(ctx, b, propertyStatus); err != nil {
		if errors.Is(err, model.ErrOverlap) {
			s.record(kind, outcomeConflict)
			return model.NewOverlapError()
		}
		s.record(kind, outcomeError)
		return err
	}
	s.record(kind, outcomeCreated)
	return nil
}

// result reloads the booking with its joined summaries, falling back to the inserted row.
func (s *bookingService) result(ctx context.Context, b *model.Booking, message string, emailFailed bool) *model.BookingResult {
	if full, err := s.repo.FindByID(ctx, b.ID); err == nil {
		b = full
	}
	return &model.BookingResult{
		Booking:        b,
		Message:        message,
		EmailSendError: emailFailed,
	}
}

// ========================================
// READ / UPDATE / DELETE
// ========================================

func (s *bookingService) GetBooking(ctx context.Context, id uuid.UUID, requester access.Requester) (*model.Booking, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireParticipant(requester, b.Participants()...); err != nil {
		return nil, model.NewForbiddenError(requester.UserID, "view")
	}
	return b, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, id uuid.UUID, requester access.Requester, req model.UpdateBookingRequest) (*model.Booking, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 2: Load and authorize
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireParticipant(requester, b.Participants()...); err != nil {
		return nil, model.NewForbiddenError(requester.UserID, "update")
	}

	wasActive := b.IsActive()
	originalStatus := b.Status

	// Step 3: Status transition
	if req.Status != nil {
		privileged := requester.IsAdmin() || requester.UserID == b.OwnerID
		if err := model.ValidateTransition(b.Status, *req.Status, privileged); err != nil {
			if errors.Is(err, model.ErrForbidden) {
				return nil, model.NewForbiddenError(requester.UserID, "confirm")
			}
			return nil, model.NewInvalidTransitionError(b.Status, *req.Status)
		}
		b.Status = *req.Status
	}

	// Step 4: Date changes, only while pending
	if req.ChangesDates() {
		if originalStatus != model.StatusPending {
			return nil, model.NewValidationMessage("Booking dates can only be changed while the booking is pending")
		}
		if err := s.applyDates(ctx, b, req); err != nil {
			return nil, err
		}
	}

	if req.Notes != nil {
		b.Notes = mergeNotes(b.Notes, req.Notes)
	}

	// Step 5: Persist; a cancelled demo lease frees the listing again
	propertyStatus := ""
	if wasActive && !b.IsActive() && s.releasesProperty(b) {
		propertyStatus = propertyModel.StatusAvailable
	}
	if err := s.repo.Update(ctx, b, propertyStatus); err != nil {
		if errors.Is(err, model.ErrOverlap) {
			return nil, model.NewOverlapError()
		}
		if errors.Is(err, model.ErrBookingNotFound) {
			return nil, model.NewBookingNotFoundError(id)
		}
		return nil, err
	}

	log.Info().
		Str("booking_id", id.String()).
		Str("status", b.Status).
		Str("updated_by", requester.UserID.String()).
		Msg("Booking updated")

	if full, err := s.repo.FindByID(ctx, id); err == nil {
		return full, nil
	}
	return b, nil
}

func (s *bookingService) applyDates(ctx context.Context, b *model.Booking, req model.UpdateBookingRequest) error {
	start, end := b.StartDate, b.EndDate
	if req.StartDate != nil {
		parsed, err := propertyModel.ParseDate(strings.TrimSpace(*req.StartDate))
		if err != nil {
			return model.NewValidationError(err)
		}
		start = parsed
	}
	if req.EndDate != nil {
		parsed, err := propertyModel.ParseDate(strings.TrimSpace(*req.EndDate))
		if err != nil {
			return model.NewValidationError(err)
		}
		end = parsed
	}
	if err := model.ValidateRange(start, end); err != nil {
		return model.NewValidationError(err)
	}

	if b.IsActive() {
		if err := s.ensureFree(ctx, "", b.PropertyID, start, end, &b.ID); err != nil {
			return err
		}
	}

	// Regular bookings are repriced from the listing; demo leases keep their quote
	if b.LeaseDuration == nil {
		property, err := s.loadProperty(ctx, b.PropertyID)
		if err != nil {
			return err
		}
		b.TotalPrice = model.StandardTotal(property.Price, start, end)
	}

	b.StartDate, b.EndDate = start, end
	return nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, id uuid.UUID, requester access.Requester) error {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireParticipant(requester, b.Participants()...); err != nil {
		return model.NewForbiddenError(requester.UserID, "delete")
	}

	propertyStatus := ""
	if b.IsActive() && s.releasesProperty(b) {
		propertyStatus = propertyModel.StatusAvailable
	}
	if err := s.repo.Delete(ctx, b, propertyStatus); err != nil {
		if errors.Is(err, model.ErrBookingNotFound) {
			return model.NewBookingNotFoundError(id)
		}
		return err
	}

	log.Info().
		Str("booking_id", id.String()).
		Str("deleted_by", requester.UserID.String()).
		Msg("Booking deleted")
	return nil
}

// releasesProperty reports whether removing b should set its listing back to available.
func (s *bookingService) releasesProperty(b *model.Booking) bool {
	return s.cfg.DemoMarksRented && b.IsDemo()
}

// ========================================
// LISTING
// ========================================

func (s *bookingService) ListAll(ctx context.Context, page utils.Pagination) ([]*model.Booking, int64, error) {
	return s.repo.ListAll(ctx, page.Limit, page.Offset())
}

func (s *bookingService) ListPropertyBookings(ctx context.Context, propertyID uuid.UUID, requester access.Requester) ([]*model.Booking, error) {
	property, err := s.loadProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnership(property, requester); err != nil {
		return nil, model.NewPropertyForbiddenError(requester.UserID)
	}
	return s.repo.ListByProperty(ctx, propertyID)
}

func (s *bookingService) ListMyBookings(ctx context.Context, tenantID uuid.UUID) ([]*model.Booking, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *bookingService) ListMyPropertyBookings(ctx context.Context, ownerID uuid.UUID) ([]*model.Booking, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ========================================
// HELPERS
// ========================================

func (s *bookingService) loadProperty(ctx context.Context, id uuid.UUID) (*propertyModel.Property, error) {
	property, err := s.properties.GetProperty(ctx, id)
	if err != nil {
		if errors.Is(err, propertyModel.ErrPropertyNotFound) {
			return nil, model.NewPropertyNotFoundError(id)
		}
		return nil, err
	}
	return property, nil
}

func (s *bookingService) loadBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrBookingNotFound) {
			return nil, model.NewBookingNotFoundError(id)
		}
		return nil, err
	}
	return b, nil
}

// record counts a create attempt; kind is empty for updates.
func (s *bookingService) record(kind, outcome string) {
	if s.recorder != nil && kind != "" {
		s.recorder.BookingAttempt(kind, outcome)
	}
}

// copyNotes copies client notes, dropping the keys the server writes itself.
func copyNotes(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+2)
	for k, v := range in {
		if isReservedNote(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// mergeNotes replaces the client notes of a booking and keeps its server-written keys.
func mergeNotes(current, in map[string]string) map[string]string {
	out := copyNotes(in)
	for k, v := range current {
		if isReservedNote(k) {
			out[k] = v
		}
	}
	return out
}

func isReservedNote(key string) bool {
	return key == noteDemoMode || key == noteMessage
}

func rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

package model

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const daysPerLeaseMonth = 30

// LeaseMonths counts started 30-day periods in [start, end), at least one.
func LeaseMonths(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24
	months := int(math.Ceil(days / daysPerLeaseMonth))
	if months < 1 {
		return 1
	}
	return months
}

// StandardTotal is the default total price of a regular booking.
func StandardTotal(monthlyPrice decimal.Decimal, start, end time.Time) decimal.Decimal {
	return monthlyPrice.Mul(decimal.NewFromInt(int64(LeaseMonths(start, end))))
}

// DemoTerms are the optional amounts a tenant may supply on the demo path.
type DemoTerms struct {
	MonthlyRent     *decimal.Decimal
	SecurityDeposit *decimal.Decimal
	PlatformFee     *decimal.Decimal
}

// DemoQuote is the full price breakdown of a demo lease.
type DemoQuote struct {
	EndDate         time.Time
	LeaseDuration   int
	MonthlyRent     decimal.Decimal
	TotalRent       decimal.Decimal
	SecurityDeposit decimal.Decimal
	PlatformFee     decimal.Decimal
	TotalAmount     decimal.Decimal
}

// QuoteDemo prices a lease of months starting at moveIn. Rent defaults to the listing
// price, the deposit to depositMonths of rent and the fee to defaultFee.
func QuoteDemo(listingPrice decimal.Decimal, moveIn time.Time, months int, terms DemoTerms, depositMonths int, defaultFee decimal.Decimal) DemoQuote {
	rent := listingPrice
	if terms.MonthlyRent != nil && terms.MonthlyRent.IsPositive() {
		rent = *terms.MonthlyRent
	}

	deposit := rent.Mul(decimal.NewFromInt(int64(depositMonths)))
	if terms.SecurityDeposit != nil && !terms.SecurityDeposit.IsNegative() {
		deposit = *terms.SecurityDeposit
	}

	fee := defaultFee
	if terms.PlatformFee != nil && !terms.PlatformFee.IsNegative() {
		fee = *terms.PlatformFee
	}

	totalRent := rent.Mul(decimal.NewFromInt(int64(months)))

	return DemoQuote{
		EndDate:         moveIn.AddDate(0, months, 0),
		LeaseDuration:   months,
		MonthlyRent:     rent,
		TotalRent:       totalRent,
		SecurityDeposit: deposit,
		PlatformFee:     fee,
		TotalAmount:     totalRent.Add(deposit).Add(fee),
	}
}

// ValidateTransition checks a status change. privileged is true for the property owner
// and admins; only they may confirm.
func ValidateTransition(from, to string, privileged bool) error {
	if from == to {
		return nil
	}

	switch {
	case from == StatusPending && to == StatusConfirmed:
		if !privileged {
			return ErrForbidden
		}
		return nil
	case to == StatusCancelled && (from == StatusPending || from == StatusConfirmed):
		return nil
	default:
		return ErrInvalidTransition
	}
}

// ValidateRange requires start < end.
func ValidateRange(start, end time.Time) error {
	if !start.Before(end) {
		return errors.New("End date must be after start date")
	}
	return nil
}

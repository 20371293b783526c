// Package fare prices a single seat.  The same calculation backs the
// public estimate endpoint and the authoritative fare stored on a booking,
// so a client estimate can never diverge from what the server charges.
package fare

import (
	"errors"
	"fmt"

	"github.com/panemexpress/rail-booking/internal/model"
)

const (
	// SeniorAge is the age from which the senior discount applies.
	SeniorAge = 60
	// SeniorDiscount is the fraction taken off the base fare for seniors.
	SeniorDiscount = 0.20
)

var (
	// ErrInvalidCoachClass is returned for a coach key outside the catalogue.
	ErrInvalidCoachClass = errors.New("invalid coach class")
	// ErrInvalidDistance is returned for a distance that is not positive.
	ErrInvalidDistance = errors.New("distance must be positive")
)

// Compute returns distanceKm x rate(coach), less SeniorDiscount when
// passengerAge >= SeniorAge, rounded to two decimals.
func Compute(distanceKm int, coach model.CoachClass, passengerAge int) (model.Money, error) {
	info, ok := model.LookupCoach(coach)
	if !ok {
		return 0, ErrInvalidCoachClass
	}
	if distanceKm <= 0 {
		return 0, fmt.Errorf("%w: %d km", ErrInvalidDistance, distanceKm)
	}
	amount := float64(distanceKm) * info.RatePerKm
	if passengerAge >= SeniorAge {
		amount *= 1 - SeniorDiscount
	}
	return model.MoneyFromFloat(amount), nil
}

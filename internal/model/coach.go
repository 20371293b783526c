package model

// CoachClass is one of the five fare tiers.  The value is the key stored
// in bookings.coach and accepted from clients.
type CoachClass string

const (
	CoachBusiness    CoachClass = "BUSINESS"
	CoachFirstClass  CoachClass = "FIRST_CLASS"
	CoachEconomy     CoachClass = "ECONOMY"
	CoachSecondClass CoachClass = "SECOND_CLASS"
	CoachNonAC       CoachClass = "NON_AC"
)

// CoachInfo describes a coach class for display and pricing.
type CoachInfo struct {
	Key       CoachClass
	Name      string
	RatePerKm float64
}

// coachOrder is the display order used by the booking flow, most expensive first.
var coachOrder = []CoachInfo{
	{Key: CoachBusiness, Name: "Business", RatePerKm: 5.0},
	{Key: CoachFirstClass, Name: "1st Class", RatePerKm: 3.5},
	{Key: CoachEconomy, Name: "Economy", RatePerKm: 2.0},
	{Key: CoachSecondClass, Name: "2nd Class", RatePerKm: 1.5},
	{Key: CoachNonAC, Name: "Non A/C", RatePerKm: 1.0},
}

// Coaches returns the coach catalogue in display order.  The returned
// slice is a copy and may be modified by the caller.
func Coaches() []CoachInfo {
	out := make([]CoachInfo, len(coachOrder))
	copy(out, coachOrder)
	return out
}

// LookupCoach returns the catalogue entry for c.
func LookupCoach(c CoachClass) (CoachInfo, bool) {
	for _, info := range coachOrder {
		if info.Key == c {
			return info, true
		}
	}
	return CoachInfo{}, false
}

// Valid reports whether c is one of the enumerated classes.
func (c CoachClass) Valid() bool {
	_, ok := LookupCoach(c)
	return ok
}

// DisplayName returns the human name of the class, or the raw key when unknown.
func (c CoachClass) DisplayName() string {
	if info, ok := LookupCoach(c); ok {
		return info.Name
	}
	return string(c)
}

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Meal is the refreshment option attached to a reservation.
// The empty Meal means no meal was selected.
type Meal string

const (
	MealNone      Meal = ""
	MealBreakfast Meal = "DESAYUNO"
	MealLunch     Meal = "ALMUERZO"
	MealSnack     Meal = "MERIENDA"
	MealDinner    Meal = "CENA"
)

// mealPrices are flat per-participant prices.
var mealPrices = map[Meal]int64{
	MealBreakfast: 12000,
	MealLunch:     15000,
	MealSnack:     8000,
	MealDinner:    18000,
}

// Pricing constants.
const (
	// KitFee is charged once per participant.
	KitFee int64 = 10000
	// DefaultPlanPrice is used when the plan price could not be loaded.
	DefaultPlanPrice int64 = 150000
)

// Valid reports whether m is a known meal or MealNone.
func (m Meal) Valid() bool {
	if m == MealNone {
		return true
	}
	_, ok := mealPrices[m]
	return ok
}

// Price returns the per-participant price of m; 0 for MealNone or unknown meals.
func (m Meal) Price() int64 {
	return mealPrices[m]
}

// ReservationState is the persisted lifecycle state.
// Draft exists only client-side and is never stored.
type ReservationState string

const (
	StatePending   ReservationState = "PENDING"
	StateConfirmed ReservationState = "CONFIRMED"
	StateCancelled ReservationState = "CANCELLED"
)

// InitialReservationState is the state assigned on creation.
const InitialReservationState = StateConfirmed

// PaymentMethod is the mock payment option chosen after confirmation.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "CARD"
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	return p == PaymentCard || p == PaymentCash || p == PaymentTransfer
}

// Reservation is a booking of a plan with a guide.
// TotalPrice is fixed at creation and never recomputed.
type Reservation struct {
	ID            uuid.UUID
	User          Ref[User]
	Guide         Ref[Guide]
	Plan          Ref[Plan]
	Participants  int
	Meal          Meal
	DateTime      time.Time
	TotalPrice    Money
	State         ReservationState
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Editable reports whether the reservation still accepts changes.
func (r Reservation) Editable() bool {
	return r.State != StateCancelled
}

// PriceBreakdown is the itemised price shown in the booking preview.
type PriceBreakdown struct {
	Participants int
	PlanPrice    int64
	PlanSubtotal int64
	KitSubtotal  int64
	MealSubtotal int64
	Total        int64
	Currency     string
}

// Quote computes
//
//	total = participants×planPrice + participants×KitFee + participants×mealPrice
//
// planPrice <= 0 falls back to DefaultPlanPrice.
func Quote(participants int, planPrice int64, meal Meal, currency string) PriceBreakdown {
	if planPrice <= 0 {
		planPrice = DefaultPlanPrice
	}
	if currency == "" {
		currency = CurrencyCOP
	}
	n := int64(participants)
	b := PriceBreakdown{
		Participants: participants,
		PlanPrice:    planPrice,
		PlanSubtotal: n * planPrice,
		KitSubtotal:  n * KitFee,
		MealSubtotal: n * meal.Price(),
		Currency:     currency,
	}
	b.Total = b.PlanSubtotal + b.KitSubtotal + b.MealSubtotal
	return b
}

// ValidateNewReservation checks the booking form preconditions against the
// selected plan's occupancy.
func ValidateNewReservation(r Reservation, maxOccupancy int) error {
	fe := FieldErrors{}
	if r.Guide.ID() == uuid.Nil {
		fe.Add("guide_id", "guide is required")
	}
	if r.Plan.ID() == uuid.Nil {
		fe.Add("plan_id", "plan is required")
	}
	if r.Participants < 1 {
		fe.Add("participants", "must be at least 1")
	} else if maxOccupancy > 0 && r.Participants > maxOccupancy {
		fe.Add("participants", fmt.Sprintf("must not exceed the plan occupancy of %d", maxOccupancy))
	}
	if r.Meal == MealNone {
		fe.Add("meal", "meal is required")
	} else if !r.Meal.Valid() {
		fe.Add("meal", "must be DESAYUNO, ALMUERZO, MERIENDA or CENA")
	}
	if r.DateTime.IsZero() {
		fe.Add("date_time", "date and time are required")
	}
	return fe.Err()
}

// ReservationPatch carries the fields an update may change.
// Nil fields are left untouched.
type ReservationPatch struct {
	Meal     *Meal
	DateTime *time.Time
}

// Apply validates p and applies it to r.
// Returns ErrInvalidState when r is cancelled; r is not modified in that case.
func (p ReservationPatch) Apply(r Reservation) (Reservation, error) {
	if !r.Editable() {
		return r, fmt.Errorf("%w: reservation is cancelled", ErrInvalidState)
	}
	fe := FieldErrors{}
	if p.Meal != nil && (*p.Meal == MealNone || !p.Meal.Valid()) {
		fe.Add("meal", "must be DESAYUNO, ALMUERZO, MERIENDA or CENA")
	}
	if p.DateTime != nil && p.DateTime.IsZero() {
		fe.Add("date_time", "date and time are required")
	}
	if err := fe.Err(); err != nil {
		return r, err
	}
	if p.Meal != nil {
		r.Meal = *p.Meal
	}
	if p.DateTime != nil {
		r.DateTime = *p.DateTime
	}
	return r, nil
}

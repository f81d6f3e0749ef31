// Package domain contains the core data types and rules for the tour booking
// API: the guide availability model, reservation pricing and lifecycle, and
// plan/user validation. It performs no I/O and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlanStatus is the publication state of a plan.
type PlanStatus string

const (
	PlanPending  PlanStatus = "PENDING"
	PlanActive   PlanStatus = "ACTIVE"
	PlanInactive PlanStatus = "INACTIVE"
)

// Currencies accepted for plan prices.
const (
	CurrencyCOP = "COP"
	CurrencyUSD = "USD"
)

// Plan validation bounds.
const (
	PlanNameMin        = 10
	PlanNameMax        = 1000
	PlanDescriptionMin = 10
	PlanDescriptionMax = 5000
	PlanOccupancyMin   = 1
	PlanOccupancyMax   = 12
	PlanImagesMax      = 3
)

// Money is an amount in a given ISO currency code.
type Money struct {
	Amount   int64
	Currency string
}

// DateRange is an inclusive span of calendar dates a plan can be booked in.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Plan is a bookable tour.
// Images holds storage-relative paths; the handler resolves them against
// the configured public base URL.
type Plan struct {
	ID             uuid.UUID
	Name           string
	Description    string
	Price          Money
	DurationHours  int
	MaxOccupancy   int
	Images         []string
	AvailableDates []DateRange
	Status         PlanStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RefID implements Referable.
func (p Plan) RefID() uuid.UUID { return p.ID }

// DisplayName implements Referable.
func (p Plan) DisplayName() string { return p.Name }

// ValidatePlan enforces the plan form rules. imageCount is the number of
// images the plan will hold after the operation; requireImage is false when
// editing an existing plan.
func ValidatePlan(p Plan, imageCount int, requireImage bool) error {
	fe := FieldErrors{}

	if n := len([]rune(p.Name)); n < PlanNameMin || n > PlanNameMax {
		fe.Add("name", "must be between 10 and 1000 characters")
	}
	if n := len([]rune(p.Description)); n < PlanDescriptionMin || n > PlanDescriptionMax {
		fe.Add("description", "must be between 10 and 5000 characters")
	}
	if p.Price.Amount <= 0 {
		fe.Add("price.amount", "must be greater than 0")
	}
	if p.Price.Currency != CurrencyCOP && p.Price.Currency != CurrencyUSD {
		fe.Add("price.currency", "must be COP or USD")
	}
	if p.DurationHours <= 0 {
		fe.Add("duration_hours", "must be greater than 0")
	}
	if p.MaxOccupancy < PlanOccupancyMin || p.MaxOccupancy > PlanOccupancyMax {
		fe.Add("max_occupancy", "must be between 1 and 12")
	}
	if requireImage && imageCount == 0 {
		fe.Add("images", "at least 1 image is required")
	}
	if imageCount > PlanImagesMax {
		fe.Add("images", "at most 3 images are allowed")
	}
	switch p.Status {
	case PlanPending, PlanActive, PlanInactive:
	default:
		fe.Add("status", "must be PENDING, ACTIVE or INACTIVE")
	}
	if len(p.AvailableDates) == 0 {
		fe.Add("available_dates", "at least 1 date range is required")
	}
	for i, r := range p.AvailableDates {
		if r.From.IsZero() || r.To.IsZero() {
			fe.Add(fieldIndex("available_dates", i), "both dates are required")
		} else if !r.From.Before(r.To) {
			fe.Add(fieldIndex("available_dates", i), "start must be before end")
		}
	}
	return fe.Err()
}

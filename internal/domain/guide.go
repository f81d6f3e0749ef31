package domain

import (
	"time"

	"github.com/google/uuid"
)

// GuideStatus is derived from the guide's schedule; see DeriveStatus.
type GuideStatus string

const (
	GuideActive   GuideStatus = "ACTIVE"
	GuideInactive GuideStatus = "INACTIVE"
)

// Guide is a tourist guide bookable for reservations.
// Guides are created with an empty schedule and therefore start INACTIVE.
// Schedule is replaced wholesale by the availability update.
type Guide struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Status    GuideStatus
	Schedule  []DayAvailability
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefID implements Referable.
func (g Guide) RefID() uuid.UUID { return g.ID }

// DisplayName implements Referable.
func (g Guide) DisplayName() string { return g.Name }

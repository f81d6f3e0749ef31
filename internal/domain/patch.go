package domain

// PlanPatch carries the plan fields an update may change. Nil fields are
// left untouched. Images are handled separately by the image intake.
type PlanPatch struct {
	Name           *string
	Description    *string
	Price          *Money
	DurationHours  *int
	MaxOccupancy   *int
	AvailableDates *[]DateRange
	Status         *PlanStatus
}

// Apply returns p with the supplied fields overwritten.
func (pp PlanPatch) Apply(p Plan) Plan {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.DurationHours != nil {
		p.DurationHours = *pp.DurationHours
	}
	if pp.MaxOccupancy != nil {
		p.MaxOccupancy = *pp.MaxOccupancy
	}
	if pp.AvailableDates != nil {
		p.AvailableDates = append([]DateRange{}, (*pp.AvailableDates)...)
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	return p
}

// GuidePatch carries the contact fields of a guide. The schedule and status
// change only through the availability update.
type GuidePatch struct {
	Name  *string
	Email *string
	Phone *string
}

// Apply returns g with the supplied fields overwritten.
func (gp GuidePatch) Apply(g Guide) Guide {
	if gp.Name != nil {
		g.Name = *gp.Name
	}
	if gp.Email != nil {
		g.Email = *gp.Email
	}
	if gp.Phone != nil {
		g.Phone = *gp.Phone
	}
	return g
}

// UserPatch carries the editable user fields. Email and role are immutable.
type UserPatch struct {
	Username *string
	Name     *string
	LastName *string
	Age      **int
	Phone    *string
	Address  *string
}

// Apply returns u with the supplied fields overwritten.
func (up UserPatch) Apply(u User) User {
	if up.Username != nil {
		u.Username = *up.Username
	}
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.LastName != nil {
		u.LastName = *up.LastName
	}
	if up.Age != nil {
		u.Profile.Age = *up.Age
	}
	if up.Phone != nil {
		u.Profile.Phone = *up.Phone
	}
	if up.Address != nil {
		u.Profile.Address = *up.Address
	}
	return u
}

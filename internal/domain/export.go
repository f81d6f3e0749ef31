package domain

import "strconv"

// ExportRow is one reservation flattened for the admin export.
// Referenced entities appear by display name; a reference that could not
// be resolved falls back to its id.
type ExportRow struct {
	ReservationID string
	User          string
	Guide         string
	Plan          string
	DateTime      string
	Participants  int
	Meal          Meal
	State         ReservationState
	PaymentMethod PaymentMethod
	Total         int64
	Currency      string
}

// ExportRows flattens reservations in the order given.
func ExportRows(list []Reservation) []ExportRow {
	rows := make([]ExportRow, len(list))
	for i, r := range list {
		rows[i] = ExportRow{
			ReservationID: r.ID.String(),
			User:          r.User.DisplayName(nil),
			Guide:         r.Guide.DisplayName(nil),
			Plan:          r.Plan.DisplayName(nil),
			DateTime:      FormatDateTime(r.DateTime),
			Participants:  r.Participants,
			Meal:          r.Meal,
			State:         r.State,
			PaymentMethod: r.PaymentMethod,
			Total:         r.TotalPrice.Amount,
			Currency:      r.TotalPrice.Currency,
		}
	}
	return rows
}

// Record renders the row as CSV fields in ExportHeader order.
func (r ExportRow) Record() []string {
	return []string{
		r.ReservationID, r.User, r.Guide, r.Plan, r.DateTime,
		strconv.Itoa(r.Participants), string(r.Meal), string(r.State),
		string(r.PaymentMethod), strconv.FormatInt(r.Total, 10), r.Currency,
	}
}

// ExportHeader is the first CSV row of an export.
var ExportHeader = []string{
	"reservation_id", "user", "guide", "plan", "date_time",
	"participants", "meal", "state", "payment_method", "total", "currency",
}

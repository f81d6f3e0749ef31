package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"

	"github.com/pkordes/vereda-tours/internal/domain"
)

type exportRowJSON struct {
	ReservationID string `json:"reservation_id"`
	User          string `json:"user"`
	Guide         string `json:"guide"`
	Plan          string `json:"plan"`
	DateTime      string `json:"date_time"`
	Participants  int    `json:"participants"`
	Meal          string `json:"meal"`
	State         string `json:"state"`
	PaymentMethod string `json:"payment_method"`
	Total         int64  `json:"total"`
	Currency      string `json:"currency"`
}

// ExportReservations handles GET /reservations/export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportReservations(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	rows, err := s.Reservations.Export(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err, "reservation")
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]exportRowJSON, len(rows))
	for i, row := range rows {
		out[i] = exportRowJSON{
			ReservationID: row.ReservationID,
			User:          row.User,
			Guide:         row.Guide,
			Plan:          row.Plan,
			DateTime:      row.DateTime,
			Participants:  row.Participants,
			Meal:          string(row.Meal),
			State:         string(row.State),
			PaymentMethod: string(row.PaymentMethod),
			Total:         row.Total,
			Currency:      row.Currency,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(domain.ExportHeader)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write(row.Record())
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Weekday identifies a calendar day of the week in the schedule wire format.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// Weekdays lists the canonical weekdays in schedule order.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether d is one of the seven canonical weekdays.
func (d Weekday) Valid() bool {
	for _, w := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// TimeOfDay is the structured time used on the wire and in storage.
// Second and Nano are carried for compatibility and always zero after Collapse.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
	Nano   int `json:"nano"`
}

// String formats t as zero-padded HH:MM, dropping seconds and below.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeRange is a bookable window within a single day.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// DayAvailability is one weekday of a guide's stored schedule.
// Ranges are not meaningful when Available is false.
type DayAvailability struct {
	Day       Weekday     `json:"day"`
	Available bool        `json:"available"`
	Ranges    []TimeRange `json:"ranges"`
}

// EditRange is a TimeRange in its editable HH:MM string form.
type EditRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// EditDay is a DayAvailability in its editable form.
type EditDay struct {
	Day       Weekday     `json:"day"`
	Available bool        `json:"available"`
	Ranges    []EditRange `json:"ranges"`
}

// DefaultEditRange is the window offered when a range is added to a day.
var DefaultEditRange = EditRange{Start: "09:00", End: "12:00"}

var clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Expand turns a possibly partial stored schedule into exactly seven editable
// days in weekday order. Missing days are disabled with no ranges. When the
// input repeats a day, the last entry wins.
func Expand(existing []DayAvailability) []EditDay {
	byDay := make(map[Weekday]DayAvailability, len(existing))
	for _, d := range existing {
		byDay[d.Day] = d
	}

	out := make([]EditDay, 0, len(Weekdays))
	for _, day := range Weekdays {
		d, ok := byDay[day]
		if !ok {
			out = append(out, EditDay{Day: day, Available: false, Ranges: []EditRange{}})
			continue
		}
		ranges := make([]EditRange, 0, len(d.Ranges))
		for _, r := range d.Ranges {
			ranges = append(ranges, EditRange{Start: r.Start.String(), End: r.End.String()})
		}
		out = append(out, EditDay{Day: day, Available: d.Available, Ranges: ranges})
	}
	return out
}

// Collapse converts a validated seven-day edit form into the stored schedule.
// It validates first (see ValidateEditSchedule), so a malformed clock string
// fails with ErrValidation before any conversion happens.
func Collapse(days []EditDay) ([]DayAvailability, error) {
	if err := ValidateEditSchedule(days); err != nil {
		return nil, err
	}

	out := make([]DayAvailability, 0, len(days))
	for _, d := range days {
		ranges := make([]TimeRange, 0, len(d.Ranges))
		for _, r := range d.Ranges {
			start, _ := parseClock(r.Start)
			end, _ := parseClock(r.End)
			ranges = append(ranges, TimeRange{Start: start, End: end})
		}
		out = append(out, DayAvailability{Day: d.Day, Available: d.Available, Ranges: ranges})
	}
	return out, nil
}

// DeriveStatus returns GuideActive when at least one day is available and has
// at least one range; otherwise GuideInactive.
func DeriveStatus(schedule []DayAvailability) GuideStatus {
	for _, d := range schedule {
		if d.Available && len(d.Ranges) > 0 {
			return GuideActive
		}
	}
	return GuideInactive
}

// ValidateEditSchedule checks the edit form before collapse:
//   - exactly seven entries, each canonical weekday exactly once;
//   - every range bound matches HH:MM and is a real clock time.
//
// Range order and overlap are deliberately not checked.
func ValidateEditSchedule(days []EditDay) error {
	fe := FieldErrors{}
	if len(days) != len(Weekdays) {
		fe.Add("schedule", fmt.Sprintf("must contain exactly %d days, got %d", len(Weekdays), len(days)))
	}

	seen := make(map[Weekday]bool, len(days))
	for i, d := range days {
		field := fmt.Sprintf("schedule[%d]", i)
		switch {
		case !d.Day.Valid():
			fe.Add(field+".day", fmt.Sprintf("unknown weekday %q", d.Day))
		case seen[d.Day]:
			fe.Add(field+".day", fmt.Sprintf("weekday %s repeated", d.Day))
		}
		seen[d.Day] = true

		for j, r := range d.Ranges {
			rf := fmt.Sprintf("%s.ranges[%d]", field, j)
			if _, err := parseClock(r.Start); err != nil {
				fe.Add(rf+".start", err.Error())
			}
			if _, err := parseClock(r.End); err != nil {
				fe.Add(rf+".end", err.Error())
			}
		}
	}
	return fe.Err()
}

// parseClock parses an HH:MM string into a TimeOfDay with zero seconds.
func parseClock(s string) (TimeOfDay, error) {
	if !clockPattern.MatchString(s) {
		return TimeOfDay{}, fmt.Errorf("must use HH:MM format")
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	if h > 23 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%s is not a valid time of day", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

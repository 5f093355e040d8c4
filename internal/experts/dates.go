package experts

import (
	"errors"
	"strings"
	"time"
)

// MonthLayout is how experience dates are rendered.
const MonthLayout = "01-2006"

// DateFormatMessage is reported for experience dates no layout accepts.
const DateFormatMessage = "Date has wrong format. Use one of these formats instead: MM-YYYY, DD-MM-YYYY, YYYY-MM, YYYY-MM-DD."

var errDateFormat = errors.New("unrecognised date format")

// monthLayouts are tried in order.
var monthLayouts = []string{"01-2006", "02-01-2006", "2006-01", "2006-01-02"}

// NormalizeMonth returns the first day of t's month.
func NormalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseMonthDate accepts MM-YYYY, DD-MM-YYYY, YYYY-MM and YYYY-MM-DD and
// returns the first day of the month.
func ParseMonthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeMonth(t), nil
		}
	}
	return time.Time{}, errDateFormat
}

// ParseEndDate is ParseMonthDate where nil, empty and "present" mean an
// ongoing position and yield nil.
func ParseEndDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "present") {
		return nil, nil
	}
	t, err := ParseMonthDate(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatMonth renders t as MM-YYYY, or "present" when t is nil.
func FormatMonth(t *time.Time) string {
	if t == nil {
		return "present"
	}
	return t.Format(MonthLayout)
}

// Period renders an experience span such as "03-2020 to present".
func Period(start time.Time, end *time.Time) string {
	return FormatMonth(&start) + " to " + FormatMonth(end)
}

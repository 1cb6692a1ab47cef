package stats

import "time"

// Layouts the portal writes into date fields, tried in order. Zoned layouts
// keep their offset, date-only values are UTC midnight, and zoneless date
// times are local.
var zonedLayouts = []string{time.RFC3339Nano}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

const dateOnly = "2006-01-02"

// parseDate returns false for anything it does not recognize.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := time.ParseInLocation(dateOnly, s, time.UTC); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

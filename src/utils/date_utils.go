package utils

import (
	"fmt"
	"strings"
	"time"
)

// dateFormats are the input layouts accepted on import and API writes.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

// ParseFlexibleDate tries a few common date layouts in order.
func ParseFlexibleDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: '%s'", dateStr)
}

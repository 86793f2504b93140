package utils

import (
	"fmt"
	"time"
)

var (
	dayNames   = [...]string{"Sun", "Mon", "Tues", "Wed", "Thur", "Fri", "Sat"}
	monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "June", "July", "Aug", "Sept", "Oct", "Nov", "Dec"}
)

// FormatDay renders the page heading date, e.g. "Tues, Mar 5, 2024".
func FormatDay(t time.Time) string {
	return fmt.Sprintf("%s, %s %d, %d", dayNames[t.Weekday()], monthNames[t.Month()-1], t.Day(), t.Year())
}

package snapshot

import (
	"fmt"
	"time"
)

// FormatName formats `t` (in UTC) as {day}_{month}_{year}_{hour}_{minute},
// without zero padding.
func FormatName(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf(
		"%d_%d_%d_%d_%d",
		t.Day(),
		int(t.Month()),
		t.Year(),
		t.Hour(),
		t.Minute(),
	)
}

// FileName is the name of the file a snapshot is written to.
func FileName(s Snapshot) string {
	return s.Name + ".json"
}

// ParseName is the inverse of FormatName.
func ParseName(name string) (time.Time, error) {
	var day, month, year, hour, minute int
	_, err := fmt.Sscanf(name, "%d_%d_%d_%d_%d", &day, &month, &year, &hour, &minute)
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot: parse name %q: %w", name, err)
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}

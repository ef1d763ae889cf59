package telemetry

import "time"

// WindowLayout keys collection windows by UTC hour.
const WindowLayout = "20060102T15"

// WindowKey returns the collection window containing t.
func WindowKey(t time.Time) string {
	return t.UTC().Format(WindowLayout)
}

// ParseWindowKey returns the start of the window named by key.
func ParseWindowKey(key string) (time.Time, error) {
	return time.ParseInLocation(WindowLayout, key, time.UTC)
}

/* timestamp.go
 * Contains the Timestamp type used for the date fields in API responses. The API is not consistent about its
 * date format so both full RFC 3339 timestamps and plain dates are accepted
 */

package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp wraps time.Time so it can be decoded from any of the accepted layouts
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses a timestamp string in any of the accepted layouts
// Preconditions: Receives string containing a date or date-time
// Postconditions: Returns the parsed time in UTC, or an error if no layout matches
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

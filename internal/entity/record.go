package entity

import (
	"fmt"
	"time"
)

// DecodeError reports a single malformed record. The subscription manager
// drops the record and keeps processing the rest of the snapshot.
type DecodeError struct {
	Kind  Kind
	ID    string
	Field string
	Cause string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s/%s: field %q: %s", e.Kind, e.ID, e.Field, e.Cause)
}

func decodeErr(kind Kind, id, field, cause string) *DecodeError {
	return &DecodeError{Kind: kind, ID: id, Field: field, Cause: cause}
}

// dateLayout is the ISO-8601 date convention for person dates of birth.
const dateLayout = "2006-01-02"

func requiredString(kind Kind, rec Record, id, field string) (string, error) {
	v, ok := rec[field]
	if !ok {
		return "", decodeErr(kind, id, field, "missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", decodeErr(kind, id, field, "not a string")
	}
	if s == "" {
		return "", decodeErr(kind, id, field, "empty")
	}
	return s, nil
}

func optionalString(rec Record, field string) string {
	if s, ok := rec[field].(string); ok {
		return s
	}
	return ""
}

func optionalFloat(rec Record, field string) float64 {
	switch v := rec[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func requiredDate(kind Kind, rec Record, id, field string) (time.Time, error) {
	s, err := requiredString(kind, rec, id, field)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, decodeErr(kind, id, field, "not an ISO-8601 date")
	}
	return t, nil
}

// requiredEpochMillis decodes a numeric epoch-milliseconds timestamp. JSON
// numbers arrive as float64.
func requiredEpochMillis(kind Kind, rec Record, id, field string) (time.Time, error) {
	v, ok := rec[field]
	if !ok {
		return time.Time{}, decodeErr(kind, id, field, "missing")
	}
	var ms int64
	switch n := v.(type) {
	case float64:
		ms = int64(n)
	case int64:
		ms = n
	case int:
		ms = int64(n)
	default:
		return time.Time{}, decodeErr(kind, id, field, "not a numeric timestamp")
	}
	return time.UnixMilli(ms).UTC(), nil
}

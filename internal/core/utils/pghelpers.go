package utils

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ToText converts a domain string to a pgtype.Text.
// An empty string is considered invalid (NULL).
func ToText(s string) pgtype.Text {
	return pgtype.Text{
		String: s,
		Valid:  s != "",
	}
}

// FromText converts a pgtype.Text to a domain string.
// A NULL value is converted to an empty string ("").
func FromText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// ToTimestamptz converts an optional time to a pgtype.Timestamptz.
// A nil pointer is considered invalid (NULL).
func ToTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// FromTimestamptz converts a pgtype.Timestamptz to an optional time.
func FromTimestamptz(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

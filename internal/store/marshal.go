package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// timeLayout is the storage encoding for LoadTime/UnloadTime.
const timeLayout = time.RFC3339Nano

// legacyLayouts are accepted on read for ledgers written by other tools
// (spreadsheet and dataframe exports use a space separator, no zone).
var legacyLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
}

// marshalTime converts a timestamp to its stored TEXT form.
func marshalTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// marshalOptionalTime converts an optional timestamp; nil becomes NULL.
func marshalOptionalTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: marshalTime(*t), Valid: true}
}

// unmarshalTime parses a stored timestamp. Zone-less legacy values were
// written as host wall-clock time, so they are read in time.Local.
func unmarshalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// unmarshalOptionalTime parses a nullable timestamp. Empty strings and the
// dataframe null markers decode to nil.
func unmarshalOptionalTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || isNullMarker(s.String) {
		return nil, nil
	}
	t, err := unmarshalTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isNullMarker(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NaT", "nan", "NULL", "null":
		return true
	}
	return false
}

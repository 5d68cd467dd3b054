package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// List-valued columns are stored as JSON text.

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeList reads a JSON text column. NULL and empty text read as an empty list.
func decodeList(column string, raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil, fmt.Errorf("malformed %s column: %w", column, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// oneOf returns value when it is allowed and "" otherwise.
func oneOf(value string, allowed ...string) string {
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return ""
}

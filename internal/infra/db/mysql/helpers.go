package mysql

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// quoteIdent wraps a table name in backticks.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// cases_where_harmful is a JSON array column; NULL stays nil.
func encodeCases(cases []string) (sql.NullString, error) {
	if cases == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(cases)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeCases(s sql.NullString) []string {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return nil
	}
	var out []string
	if json.Unmarshal([]byte(s.String), &out) != nil {
		return nil
	}
	return out
}

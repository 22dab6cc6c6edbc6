package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/distill"
)

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if
// values are > 0. SQLite only accepts OFFSET after a LIMIT, so an offset
// alone gets an unbounded limit.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else if offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// encodeValue returns the stored kind and text of v. Unavailable is NULL.
func encodeValue(v distill.Value) (string, sql.NullString) {
	kind := v.Kind().String()
	switch v.Kind() {
	case distill.KindFloat:
		f, _ := v.Float()
		return kind, sql.NullString{String: strconv.FormatFloat(f, 'g', -1, 64), Valid: true}
	case distill.KindUnavailable:
		return kind, sql.NullString{}
	default:
		return kind, sql.NullString{String: v.String(), Valid: true}
	}
}

// decodeValue is the inverse of encodeValue.
func decodeValue(kind string, text sql.NullString) (distill.Value, error) {
	switch kind {
	case distill.KindUnavailable.String():
		return distill.Unavailable(), nil
	case distill.KindString.String():
		return distill.StringValue(text.String), nil
	case distill.KindInteger.String():
		i, err := strconv.ParseInt(text.String, 10, 64)
		if err != nil {
			return distill.Value{}, fmt.Errorf("failed to parse integer value: %w", err)
		}
		return distill.IntegerValue(i), nil
	case distill.KindFloat.String():
		f, err := strconv.ParseFloat(text.String, 64)
		if err != nil {
			return distill.Value{}, fmt.Errorf("failed to parse float value: %w", err)
		}
		return distill.FloatValue(f), nil
	case distill.KindBoolean.String():
		b, err := strconv.ParseBool(text.String)
		if err != nil {
			return distill.Value{}, fmt.Errorf("failed to parse boolean value: %w", err)
		}
		return distill.BooleanValue(b), nil
	default:
		return distill.Value{}, fmt.Errorf("unknown value kind %q", kind)
	}
}

// internal/panels/queries/columns.go
package queries

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Snowflake reports unquoted identifiers in upper case, Postgres in lower
// case. Columns are matched by their lower-cased name.
func columnIndex(rows *sql.Rows) (map[string]int, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[strings.ToLower(c)] = i
	}
	return idx, nil
}

// scanNamed scans the current row into dest keyed by lower-cased column
// name. Columns not named in dest are discarded.
func scanNamed(rows *sql.Rows, idx map[string]int, dest map[string]interface{}) error {
	vals := make([]interface{}, len(idx))
	for i := range vals {
		vals[i] = new(interface{})
	}
	for name, ptr := range dest {
		pos, ok := idx[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		vals[pos] = ptr
	}
	return rows.Scan(vals...)
}

// monthLabel renders a billing_month cell. Drivers return DATE columns as
// time.Time; text columns pass through unchanged.
func monthLabel(v interface{}) string {
	switch m := v.(type) {
	case nil:
		return ""
	case time.Time:
		return m.Format("2006-01-02")
	case []byte:
		return string(m)
	case string:
		return m
	default:
		return fmt.Sprint(m)
	}
}

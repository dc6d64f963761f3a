package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatValue renders one column value the way rows are shown to the agent
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case string:
		return quote(t)
	case []byte:
		return quote(string(t))
	case time.Time:
		return quote(t.UTC().Format(TimestampLayout))
	default:
		return fmt.Sprintf("%v", t)
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// FormatRow renders a row as a parenthesized tuple
func FormatRow(row []any) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = FormatValue(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FormatRows renders rows one per line
func FormatRows(rows [][]any) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = FormatRow(row)
	}
	return strings.Join(lines, "\n")
}

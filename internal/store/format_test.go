package store

import (
	"testing"
	"time"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"int", int64(42), "42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"string", "hello", "'hello'"},
		{"quote", "it's", `'it\'s'`},
		{"bytes", []byte("raw"), "'raw'"},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "'2024-01-02 03:04:05'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatRows(t *testing.T) {
	rows := [][]any{
		{int64(1), "text", nil},
		{int64(2), "more", "x"},
	}
	want := "(1, 'text', NULL)\n(2, 'more', 'x')"
	if got := FormatRows(rows); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConflictErrors(t *testing.T) {
	if IsConflictError(nil) {
		t.Error("nil is not a conflict")
	}
	if !IsConflictError(errString("database is locked (5) (SQLITE_BUSY)")) {
		t.Error("expected busy error to be a conflict")
	}
	if IsConflictError(errString("no such table: tax_alerts")) {
		t.Error("unexpected conflict")
	}
}

type errString string

func (e errString) Error() string { return string(e) }

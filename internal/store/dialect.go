package store

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// dialect captures the few places where the supported engines disagree
type dialect struct {
	name        string
	driver      string
	tableExists string
	createTable string
	// dsn builds the connection string; readOnly connections refuse writes
	dsn         func(path string, readOnly bool) string
	placeholder func(n int) string
	// readOnlyTx runs queries in a READ ONLY transaction for engines
	// without a connection-level switch
	readOnlyTx bool
}

const sqliteDDL = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT,
	date TEXT,
	jurisdiction TEXT,
	topics TEXT,
	summary TEXT,
	full_text TEXT,
	source_url TEXT,
	tags TEXT,
	created_at TIMESTAMP,
	updated_at TIMESTAMP
)`

const postgresDDL = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	id SERIAL PRIMARY KEY,
	title TEXT,
	date TEXT,
	jurisdiction TEXT,
	topics TEXT,
	summary TEXT,
	full_text TEXT,
	source_url TEXT,
	tags TEXT,
	created_at TIMESTAMP,
	updated_at TIMESTAMP
)`

func questionMark(int) string { return "?" }

// sqliteURIPath escapes the characters that would end the path part of a
// sqlite file: URI
var sqliteURIPath = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

var dialects = map[string]dialect{
	// pure Go engine, the default
	"sqlite": {
		name:        "sqlite",
		driver:      "sqlite",
		tableExists: "SELECT name FROM sqlite_master WHERE type='table' AND name = ?",
		createTable: sqliteDDL,
		dsn: func(path string, readOnly bool) string {
			dsn := "file:" + sqliteURIPath.Replace(path) + "?_pragma=busy_timeout(5000)"
			if readOnly {
				dsn += "&_pragma=query_only(1)"
			}
			return dsn
		},
		placeholder: questionMark,
	},
	// cgo engine
	"sqlite3": {
		name:        "sqlite3",
		driver:      "sqlite3",
		tableExists: "SELECT name FROM sqlite_master WHERE type='table' AND name = ?",
		createTable: sqliteDDL,
		dsn: func(path string, readOnly bool) string {
			dsn := "file:" + sqliteURIPath.Replace(path) + "?_busy_timeout=5000"
			if readOnly {
				dsn += "&_query_only=1"
			}
			return dsn
		},
		placeholder: questionMark,
	},
	"postgres": {
		name:        "postgres",
		driver:      "postgres",
		tableExists: "SELECT table_name FROM information_schema.tables WHERE table_name = $1",
		createTable: postgresDDL,
		dsn:         func(path string, _ bool) string { return path },
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		readOnlyTx:  true,
	},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
	return d, nil
}

// placeholders returns n comma-separated bind markers starting at 1
func (d dialect) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = d.placeholder(i + 1)
	}
	return strings.Join(marks, ", ")
}

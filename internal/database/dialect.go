package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// UpsertQuery builds an insert that updates updateCols when a row with the
	// same conflictCols already exists.
	UpsertQuery(table string, cols, conflictCols, updateCols []string) string

	// InsertIgnoreQuery builds an insert that is a no-op when the row already
	// exists. RowsAffected is 0 in that case.
	InsertIgnoreQuery(table string, cols, conflictCols []string) string

	// LockRows makes a SELECT lock the rows it reads until the surrounding
	// transaction ends.
	LockRows(query string) string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

func insertPrefix(verb, table string, cols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return verb + " " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"
}

// excludedAssignments renders "col = EXCLUDED.col" pairs used by sqlite and postgres.
func excludedAssignments(cols []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col + " = EXCLUDED." + col
	}
	return strings.Join(parts, ", ")
}

package output

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // CGO-free SQLite

	"github.com/law-makers/datalayer/internal/schema"
)

// SQLiteTable is the table rows are written to.
const SQLiteTable = "events"

// saveSQLite builds a fresh database in a temp file and renames it over path.
func saveSQLite(table *schema.Table, path string) error {
	return replaceAtomic(path, func(tmpName string) error {
		return writeSQLite(tmpName, table)
	})
}

func writeSQLite(dbPath string, table *schema.Table) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	columns := sqliteColumns(table.Columns())
	if err := createEventsTable(db, columns); err != nil {
		return err
	}
	if err := insertRows(db, columns, table.Rows); err != nil {
		return err
	}
	return db.Close()
}

// sqliteColumns maps header keys to column names. SQLite identifiers are
// case-insensitive, so keys differing only in case get a numeric suffix.
func sqliteColumns(header schema.Header) []string {
	used := map[string]bool{strings.ToLower(schema.IndexKey): true}
	names := make([]string, len(header))
	for i, col := range header {
		name := col.Key
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = col.Key + "_" + strconv.Itoa(n)
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func createEventsTable(db *sql.DB, columns []string) error {
	defs := make([]string, 0, len(columns)+1)
	defs = append(defs, quoteIdent(schema.IndexKey)+" INTEGER PRIMARY KEY")
	for _, c := range columns {
		defs = append(defs, quoteIdent(c)+" TEXT NOT NULL")
	}

	stmt := fmt.Sprintf("CREATE TABLE %s(\n  %s\n)", quoteIdent(SQLiteTable), strings.Join(defs, ",\n  "))
	if _, err := db.Exec(stmt); err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

func insertRows(db *sql.DB, columns []string, rows []schema.Row) error {
	transaction, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	names := make([]string, 0, len(columns)+1)
	names = append(names, quoteIdent(schema.IndexKey))
	for _, c := range columns {
		names = append(names, quoteIdent(c))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")

	statement, err := transaction.Prepare(fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)",
		quoteIdent(SQLiteTable), strings.Join(names, ","), placeholders))
	if err != nil {
		_ = transaction.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer statement.Close()

	args := make([]interface{}, len(names))
	for _, row := range rows {
		args[0] = row.Index
		for i, v := range row.Values {
			args[i+1] = v.String()
		}
		if _, err := statement.Exec(args...); err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

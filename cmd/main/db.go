package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// initDB opens the stats database with whichever SQLite driver was built in
// and makes sure its schema exists.
func initDB(dataSource string) (*sql.DB, error) {
	if dir := filepath.Dir(dbFilePath(dataSource)); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(sqliteDriver, dataSource)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway; one connection avoids busy errors.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = setupStatsSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup stats schema: %w", err)
	}
	return db, nil
}

// dbFilePath strips the "file:" prefix and query parameters from a data source.
func dbFilePath(dataSource string) string {
	p := strings.TrimPrefix(dataSource, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

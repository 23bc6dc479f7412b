// Package store persists forecast history, alert history, and accuracy
// records in SQLite. The forecasting core never touches this package; all
// reads and writes happen in the orchestration layer.
package store

import (
	"database/sql"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

package store

import (
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store holds what the frontend owns itself: the static content pages and
// the download log. Everything else lives behind the backend API.
type Store struct {
	DB *sql.DB
}

func NewStore(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	return &Store{DB: db}, nil
}

// Open opens the database and applies the embedded migrations.
func Open(dataSourceName string) (*Store, error) {
	s, err := NewStore(dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := s.Migrate(migrationFiles, "migrations"); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

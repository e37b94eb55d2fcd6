package document

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteRepository stores all documents in a single SQLite database, one row
// per record. An alternative to FileRepository for setups that prefer one
// data file over a directory of JSON documents.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path and
// applies pragmas and the schema. Idempotent - safe to call on an existing
// database.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Load reassembles the document named name from its record rows.
// Returns ErrNotExist when no rows are stored under that name.
func (r *SQLiteRepository) Load(ctx context.Context, name string) (*Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT section, body
		FROM records
		WHERE doc = ?
		ORDER BY section ASC, pos ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("document %q: query records: %w", name, err)
	}
	defer rows.Close()

	doc := NewDocument()
	found := false
	for rows.Next() {
		var section, body string
		if err := rows.Scan(&section, &body); err != nil {
			return nil, fmt.Errorf("document %q: scan record: %w", name, err)
		}
		rec := NewRecord()
		if err := json.Unmarshal([]byte(body), rec); err != nil {
			return nil, fmt.Errorf("document %q: section %q: %w", name, section, err)
		}
		existing, _ := doc.Section(section)
		doc.SetSection(section, append(existing, rec))
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("document %q: iterate records: %w", name, err)
	}
	if !found {
		return nil, fmt.Errorf("document %q: %w", name, ErrNotExist)
	}
	return doc, nil
}

// Save replaces all rows of the named document within one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, name string, doc *Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("document %q: begin: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE doc = ?`, name); err != nil {
		return fmt.Errorf("document %q: clear: %w", name, err)
	}

	for _, section := range doc.SectionNames() {
		records, _ := doc.Section(section)
		for pos, rec := range records {
			body, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("document %q: section %q: %w", name, section, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO records (doc, section, pos, body)
				VALUES (?, ?, ?, ?)
			`, name, section, pos, string(body))
			if err != nil {
				return fmt.Errorf("document %q: insert record: %w", name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("document %q: commit: %w", name, err)
	}
	return nil
}

package backend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ilya-bc/backstage/internal/visits"
)

// SQLite persists the working set in a single sqlite table. PersistAll
// replaces the stored set in one transaction, matching the store's full-set
// write semantics.
type SQLite struct {
	db *sql.DB

	selectAll *sql.Stmt
	insert    *sql.Stmt
}

// NewSQLite creates a SQLite backend from an already-opened and migrated
// database.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	s := &SQLite{db: db}

	var err error
	s.selectAll, err = db.Prepare(`
		SELECT id, entity_ref, pathname, name, ts, hits
		FROM visits ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select: %w", err)
	}

	s.insert, err = db.Prepare(`
		INSERT INTO visits (id, entity_ref, pathname, name, ts, hits, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return s, nil
}

// RetrieveAll returns every stored record in the order it was persisted.
func (s *SQLite) RetrieveAll(ctx context.Context) ([]visits.Visit, error) {
	rows, err := s.selectAll.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	records := []visits.Visit{}
	for rows.Next() {
		var v visits.Visit
		if err := rows.Scan(&v.ID, &v.EntityRef, &v.Pathname, &v.Name, &v.Timestamp, &v.Hits); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		records = append(records, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// PersistAll replaces the stored set with records in a single transaction.
func (s *SQLite) PersistAll(ctx context.Context, records []visits.Visit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM visits"); err != nil {
		return fmt.Errorf("clear visits: %w", err)
	}

	insert := tx.StmtContext(ctx, s.insert)
	for i, v := range records {
		if _, err := insert.ExecContext(ctx, v.ID, v.EntityRef, v.Pathname, v.Name, v.Timestamp, v.Hits, i); err != nil {
			return fmt.Errorf("insert visit %s: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

// Close releases the prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLite) Close() error {
	for _, stmt := range []*sql.Stmt{s.selectAll, s.insert} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

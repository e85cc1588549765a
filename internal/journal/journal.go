// Package journal persists executed rename batches so they can be undone in
// a later run.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sevanw/episodic/internal/paths"
)

// Journal is the handle to the rename history database.
type Journal struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Move is one recorded rename.
type Move struct {
	SourcePath string
	DestPath   string
}

// Batch is one executed plan, oldest move first.
type Batch struct {
	ID        int64
	Show      string
	CreatedAt time.Time
	UndoneAt  *time.Time
	Moves     []Move
}

// Open opens or creates the journal at the default location
func Open() (*Journal, error) {
	dbPath, err := paths.JournalPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve journal path: %w", err)
	}
	return OpenPath(dbPath)
}

// OpenPath opens or creates the journal at a specific path
func OpenPath(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// WAL mode for better concurrent access
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	j := &Journal{db: db, path: path}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return j, nil
}

// OpenInMemory opens an in-memory journal for testing
func OpenInMemory() (*Journal, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping in-memory journal: %w", err)
	}

	j := &Journal{db: db, path: ":memory:"}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate in-memory journal: %w", err)
	}
	return j, nil
}

// Close closes the journal database
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordBatch stores one executed plan and returns its batch ID. Moves must
// be passed in execution order; undo replays them newest first.
func (j *Journal) RecordBatch(show string, moves []Move) (int64, error) {
	if len(moves) == 0 {
		return 0, fmt.Errorf("refusing to record empty batch")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(`INSERT INTO batches (show) VALUES (?)`, show)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to insert batch: %w", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	for i, m := range moves {
		_, err := tx.Exec(
			`INSERT INTO moves (batch_id, seq, source_path, dest_path) VALUES (?, ?, ?, ?)`,
			batchID, i, m.SourcePath, m.DestPath,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert move: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return batchID, nil
}

// LastBatch returns the most recent batch that has not been undone, or nil
// when the history is empty.
func (j *Journal) LastBatch() (*Batch, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var b Batch
	err := j.db.QueryRow(
		`SELECT id, show, created_at FROM batches WHERE undone_at IS NULL ORDER BY id DESC LIMIT 1`,
	).Scan(&b.ID, &b.Show, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last batch: %w", err)
	}

	moves, err := j.movesFor(b.ID)
	if err != nil {
		return nil, err
	}
	b.Moves = moves
	return &b, nil
}

// Recent returns up to limit batches, newest first, moves included.
func (j *Journal) Recent(limit int) ([]Batch, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.Query(
		`SELECT id, show, created_at, undone_at FROM batches ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		var undone sql.NullTime
		if err := rows.Scan(&b.ID, &b.Show, &b.CreatedAt, &undone); err != nil {
			return nil, err
		}
		if undone.Valid {
			t := undone.Time
			b.UndoneAt = &t
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range batches {
		moves, err := j.movesFor(batches[i].ID)
		if err != nil {
			return nil, err
		}
		batches[i].Moves = moves
	}
	return batches, nil
}

// MarkUndone records that a batch has been reverted. A batch can be undone
// once; a second attempt is an error.
func (j *Journal) MarkUndone(batchID int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	res, err := j.db.Exec(
		`UPDATE batches SET undone_at = CURRENT_TIMESTAMP WHERE id = ? AND undone_at IS NULL`, batchID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark batch undone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("batch %d not found or already undone", batchID)
	}
	return nil
}

func (j *Journal) movesFor(batchID int64) ([]Move, error) {
	rows, err := j.db.Query(
		`SELECT source_path, dest_path FROM moves WHERE batch_id = ? ORDER BY seq`, batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.SourcePath, &m.DestPath); err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docgate/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.MetadataStore = (*Store)(nil)

// dbFileName is the database file created inside the data directory.
const dbFileName = "docgate.db"

// timeLayout has fixed-width fractional seconds so stored timestamps sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite-backed text record store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.docgate/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docgate", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL lets listings read while an ingest writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every embedded up migration newer than the recorded version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// Insert stores a record. An existing record with the same filename is
// replaced in full, including its ID and upload time.
func (s *Store) Insert(ctx context.Context, rec domain.TextRecord) (*domain.TextRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now()
	}
	rec.UploadedAt = rec.UploadedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO text_records (id, filename, text, uploaded_at, size, sha256)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			id = excluded.id,
			text = excluded.text,
			uploaded_at = excluded.uploaded_at,
			size = excluded.size,
			sha256 = excluded.sha256
	`, rec.ID, rec.Filename, rec.Text, rec.UploadedAt.Format(timeLayout), rec.Size, rec.SHA256)
	if err != nil {
		return nil, fmt.Errorf("saving text record: %w", err)
	}
	return &rec, nil
}

// FindAll returns every record ordered by upload time, then filename.
func (s *Store) FindAll(ctx context.Context) ([]domain.TextRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, text, uploaded_at, size, sha256
		FROM text_records
		ORDER BY uploaded_at, filename
	`)
	if err != nil {
		return nil, fmt.Errorf("querying text records: %w", err)
	}
	defer rows.Close()

	var records []domain.TextRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating text records: %w", err)
	}
	return records, nil
}

// FindByFilename retrieves a record by filename.
func (s *Store) FindByFilename(ctx context.Context, filename string) (*domain.TextRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, text, uploaded_at, size, sha256
		FROM text_records WHERE filename = ?
	`, filename)
	return scanRecord(row)
}

// DeleteByFilename removes a record and returns what was removed.
func (s *Store) DeleteByFilename(ctx context.Context, filename string) (*domain.TextRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	rec, err := scanRecord(tx.QueryRowContext(ctx, `
		SELECT id, filename, text, uploaded_at, size, sha256
		FROM text_records WHERE filename = ?
	`, filename))
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM text_records WHERE filename = ?", filename); err != nil {
		return nil, fmt.Errorf("deleting text record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing delete: %w", err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.TextRecord, error) {
	var rec domain.TextRecord
	var uploadedAt string
	if err := row.Scan(&rec.ID, &rec.Filename, &rec.Text, &uploadedAt, &rec.Size, &rec.SHA256); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning text record: %w", err)
	}
	t, err := time.Parse(timeLayout, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing uploaded_at %q: %w", uploadedAt, err)
	}
	rec.UploadedAt = t
	return &rec, nil
}

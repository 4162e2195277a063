// Package badger provides a BadgerDB-backed implementation of driven.MetadataStore.
//
// Each text record is stored under the key "record/<filename>" as a
// msgpack-encoded value, so the filename is unique by construction.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.MetadataStore = (*Store)(nil)

const recordPrefix = "record/"

// Options configures the store.
type Options struct {
	// Dir holds the BadgerDB files. Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool
}

// Store is a BadgerDB-backed text record store.
type Store struct {
	db *badgerdb.DB
}

// storedRecord is the on-disk shape of a text record.
type storedRecord struct {
	ID         string `msgpack:"id"`
	Filename   string `msgpack:"filename"`
	Text       string `msgpack:"text"`
	UploadedAt int64  `msgpack:"uploaded_at"`
	Size       int64  `msgpack:"size"`
	SHA256     string `msgpack:"sha256,omitempty"`
}

// NewStore opens (or creates) a store.
func NewStore(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, fmt.Errorf("%w: badger directory is required", domain.ErrInvalidInput)
	}
	dbOpts := badgerdb.DefaultOptions(opts.Dir).WithLogger(badgerLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badgerdb.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func recordKey(filename string) []byte {
	return []byte(recordPrefix + filename)
}

// Insert stores rec, replacing any record with the same filename.
func (s *Store) Insert(_ context.Context, rec domain.TextRecord) (*domain.TextRecord, error) {
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

	data, err := msgpack.Marshal(storedRecord{
		ID:         rec.ID,
		Filename:   rec.Filename,
		Text:       rec.Text,
		UploadedAt: rec.UploadedAt.UnixNano(),
		Size:       rec.Size,
		SHA256:     rec.SHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding text record: %w", err)
	}

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(recordKey(rec.Filename), data)
	})
	if err != nil {
		return nil, fmt.Errorf("saving text record: %w", err)
	}
	return &rec, nil
}

// FindAll returns every record ordered by upload time, then filename.
func (s *Store) FindAll(_ context.Context) ([]domain.TextRecord, error) {
	var records []domain.TextRecord
	prefix := []byte(recordPrefix)

	err := s.db.View(func(txn *badgerdb.Txn) error {
		iterOpts := badgerdb.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := decode(val)
			if err != nil {
				return err
			}
			records = append(records, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading text records: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].UploadedAt.Equal(records[j].UploadedAt) {
			return records[i].UploadedAt.Before(records[j].UploadedAt)
		}
		return records[i].Filename < records[j].Filename
	})
	return records, nil
}

// FindByFilename retrieves a record by filename.
func (s *Store) FindByFilename(_ context.Context, filename string) (*domain.TextRecord, error) {
	var rec *domain.TextRecord
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		rec, err = get(txn, filename)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteByFilename removes a record and returns it.
func (s *Store) DeleteByFilename(_ context.Context, filename string) (*domain.TextRecord, error) {
	var rec *domain.TextRecord
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		var err error
		rec, err = get(txn, filename)
		if err != nil {
			return err
		}
		return txn.Delete(recordKey(filename))
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func get(txn *badgerdb.Txn, filename string) (*domain.TextRecord, error) {
	item, err := txn.Get(recordKey(filename))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading text record: %w", err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("reading text record: %w", err)
	}
	return decode(val)
}

func decode(data []byte) (*domain.TextRecord, error) {
	var sr storedRecord
	if err := msgpack.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("decoding text record: %w", err)
	}
	return &domain.TextRecord{
		ID:         sr.ID,
		Filename:   sr.Filename,
		Text:       sr.Text,
		UploadedAt: time.Unix(0, sr.UploadedAt).UTC(),
		Size:       sr.Size,
		SHA256:     sr.SHA256,
	}, nil
}

// badgerLogger routes badger output through the application logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...any)   { logger.Error("[badger] "+f, v...) }
func (badgerLogger) Warningf(f string, v ...any) { logger.Warn("[badger] "+f, v...) }
func (badgerLogger) Infof(f string, v ...any)    { logger.Debug("[badger] "+f, v...) }
func (badgerLogger) Debugf(string, ...any)       {}

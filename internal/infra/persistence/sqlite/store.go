// Package sqlite provides an embedded durable backend that snapshots the full
// ledger state into a single key-value table after every transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"rentledger/internal/infra/persistence/memory"
	"rentledger/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

// Store persists the in-memory ledger to a single SQLite table as JSON
// arrays, one row per collection bucket. It snapshots the full state after
// every successful transaction. There is no partial-write guarantee beyond
// the enclosing SQL transaction; the deployment is single-writer.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "rentledger.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	s.load()
	return s, nil
}

// Bucket keys mirror the legacy client-local layout so existing data files
// remain readable.
const (
	bucketProperties  = "rentals_properties"
	bucketTenants     = "rentals_tenants"
	bucketAgreements  = "rentals_agreements"
	bucketInvoices    = "rentals_invoices"
	bucketPayments    = "rentals_payments"
	bucketExpenses    = "rentals_expenses"
	bucketMaintenance = "rentals_maintenance"
)

var stateBuckets = []string{
	bucketProperties,
	bucketTenants,
	bucketAgreements,
	bucketInvoices,
	bucketPayments,
	bucketExpenses,
	bucketMaintenance,
}

// load hydrates the in-memory state from existing rows. Read and parse
// failures degrade to an empty collection rather than propagating; silent
// data loss is an accepted risk of the storage contract.
func (s *Store) load() {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{}
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			continue
		}
		if decodeBucket(&snapshot, bucket, payload) {
			loaded = true
		}
	}
	if loaded {
		s.ImportState(snapshot)
	}
}

func decodeBucket(snapshot *memory.Snapshot, bucket string, payload []byte) bool {
	var err error
	switch bucket {
	case bucketProperties:
		err = json.Unmarshal(payload, &snapshot.Properties)
	case bucketTenants:
		err = json.Unmarshal(payload, &snapshot.Tenants)
	case bucketAgreements:
		err = json.Unmarshal(payload, &snapshot.Agreements)
	case bucketInvoices:
		err = json.Unmarshal(payload, &snapshot.Invoices)
	case bucketPayments:
		err = json.Unmarshal(payload, &snapshot.Payments)
	case bucketExpenses:
		err = json.Unmarshal(payload, &snapshot.Expenses)
	case bucketMaintenance:
		err = json.Unmarshal(payload, &snapshot.Maintenance)
	default:
		return false
	}
	return err == nil
}

func encodeBucket(snapshot memory.Snapshot, bucket string) ([]byte, error) {
	switch bucket {
	case bucketProperties:
		return json.Marshal(snapshot.Properties)
	case bucketTenants:
		return json.Marshal(snapshot.Tenants)
	case bucketAgreements:
		return json.Marshal(snapshot.Agreements)
	case bucketInvoices:
		return json.Marshal(snapshot.Invoices)
	case bucketPayments:
		return json.Marshal(snapshot.Payments)
	case bucketExpenses:
		return json.Marshal(snapshot.Expenses)
	case bucketMaintenance:
		return json.Marshal(snapshot.Maintenance)
	}
	return nil, fmt.Errorf("unknown bucket %s", bucket)
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range stateBuckets {
		data, err := encodeBucket(snapshot, bucket)
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// RunInTransaction applies fn within a transaction, then snapshots state to
// SQLite if successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) ([]domain.Change, error) {
	changes, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return changes, err
	}
	if pErr := s.persist(); pErr != nil {
		return changes, pErr
	}
	return changes, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

package core

import (
	"fmt"
	"os"

	"rentledger/internal/infra/persistence/memory"
	"rentledger/internal/infra/persistence/postgres"
	"rentledger/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// MemoryStore is the in-memory backend used by tests and ephemeral setups.
type MemoryStore = memory.Store

// NewMemoryStore returns a fresh in-memory ledger store.
func NewMemoryStore() *MemoryStore { return memory.NewStore() }

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	RENTLEDGER_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	RENTLEDGER_SQLITE_PATH: path to sqlite file (default ./rentledger.db)
//	RENTLEDGER_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore() (PersistentStore, error) {
	driver := os.Getenv("RENTLEDGER_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("RENTLEDGER_SQLITE_PATH")
		return sqlite.NewStore(path)
	case StoragePostgres:
		dsn := os.Getenv("RENTLEDGER_POSTGRES_DSN")
		return postgres.NewStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

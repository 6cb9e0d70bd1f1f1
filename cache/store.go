package cache

import (
	"database/sql"
	"errors"
	"sync"

	_ "github.com/glebarez/go-sqlite"
)

// Store is an interface for a response store.
// It stores and retrieves []byte values, which represent decoded-and-verified
// response bodies. Entries are never expired or evicted; a key, once written,
// stays for the lifetime of the store.
//
// Implementations must be thread-safe, and writes must be idempotent:
// setting the same key twice with equal values is always safe.
type Store interface {
	// Get returns the stored body for the given key, if it exists.
	// It also returns a boolean indicating whether retrieval was successful.
	Get(key string) ([]byte, bool, error)
	// Set stores the given body under the given key,
	// replacing any previous value.
	Set(key string, value []byte) error
	// Has checks if the specified key exists in the store.
	Has(key string) bool
}

type MemStore struct {
	mutex *sync.RWMutex
	db    map[string][]byte
}

func NewMemStore() MemStore {
	return MemStore{
		mutex: &sync.RWMutex{},
		db:    make(map[string][]byte),
	}
}

func (m MemStore) Get(key string) ([]byte, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	value, ok := m.db[key]
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (m MemStore) Set(key string, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.db[key] = value
	return nil
}

func (m MemStore) Has(key string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.db[key]
	return ok
}

type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore opens (or creates) the store database with the given filename.
// Use the DSN `file::memory:?cache=shared` for a process-lifetime in-memory db.
func NewSQLiteStore(filename string) SQLiteStore {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("CREATE TABLE IF NOT EXISTS store (key TEXT PRIMARY KEY, value BLOB)")
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		panic(err)
	}
	return SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}
}

func (s SQLiteStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s SQLiteStore) Set(key string, value []byte) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	// INSERT OR REPLACE keeps re-writes of the same key idempotent
	_, err := s.db.Exec("INSERT OR REPLACE INTO store (key, value) VALUES (?, ?)", key, value)
	return err
}

func (s SQLiteStore) Has(key string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM store WHERE key = ?", key).Scan(&one)
	return err == nil
}

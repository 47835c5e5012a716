// Package contacts is the identity engine: a SQLite-backed store of raw
// contacts and their attribute rows, with synchronously maintained name
// and phone lookup indexes and the display name resolver. All index
// maintenance happens in the same transaction as the attribute mutation
// that triggered it, so readers never observe a row without its entries.
package contacts

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hazyhaar/rolodex/pkg/nickname"
	_ "modernc.org/sqlite"
)

// Store owns the contacts database. It assumes the single-writer
// discipline of the enclosing SQLite connection; it takes no locks of its
// own beyond the nickname-table swap.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	profileAggregate int64

	mu        sync.RWMutex // guards country + nicknames (swapped on locale change)
	country   string
	nicknames *nickname.Table
}

// Options configures a Store.
type Options struct {
	Logger *slog.Logger
	// Country is the ISO 3166-1 code of the current country context,
	// used to derive E.164 twins for national phone numbers.
	Country string
	// Nicknames is the active cluster table; nil disables expansion.
	Nicknames *nickname.Table
	// ProfileAggregate is the id of the distinguished profile aggregate
	// (0 = none registered).
	ProfileAggregate int64
}

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS raw_contacts (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		aggregate_id        INTEGER NOT NULL DEFAULT 0,
		account_type        TEXT NOT NULL DEFAULT '',
		account_name        TEXT NOT NULL DEFAULT '',
		data_set            TEXT NOT NULL DEFAULT '',
		source_id           TEXT NOT NULL DEFAULT '',
		display_name        TEXT NOT NULL DEFAULT '',
		display_name_alt    TEXT NOT NULL DEFAULT '',
		phonetic_name       TEXT NOT NULL DEFAULT '',
		phonetic_name_style INTEGER NOT NULL DEFAULT 0,
		sort_key            TEXT NOT NULL DEFAULT '',
		sort_key_alt        TEXT NOT NULL DEFAULT '',
		bucket              INTEGER NOT NULL DEFAULT 0,
		bucket_label        TEXT NOT NULL DEFAULT '',
		bucket_alt          INTEGER NOT NULL DEFAULT 0,
		bucket_label_alt    TEXT NOT NULL DEFAULT '',
		display_name_source INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_contacts_aggregate ON raw_contacts(aggregate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_contacts_source ON raw_contacts(source_id)`,
	`CREATE TABLE IF NOT EXISTS contact_data (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		raw_contact_id   INTEGER NOT NULL REFERENCES raw_contacts(id),
		kind             INTEGER NOT NULL,
		is_primary       INTEGER NOT NULL DEFAULT 0,
		is_super_primary INTEGER NOT NULL DEFAULT 0,
		value            TEXT NOT NULL DEFAULT '',
		prefix           TEXT NOT NULL DEFAULT '',
		given_name       TEXT NOT NULL DEFAULT '',
		middle_name      TEXT NOT NULL DEFAULT '',
		family_name      TEXT NOT NULL DEFAULT '',
		suffix           TEXT NOT NULL DEFAULT '',
		phonetic_given   TEXT NOT NULL DEFAULT '',
		phonetic_family  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contact_data_raw ON contact_data(raw_contact_id)`,
	`CREATE TABLE IF NOT EXISTS name_lookup (
		data_id         INTEGER NOT NULL,
		raw_contact_id  INTEGER NOT NULL,
		name_type       INTEGER NOT NULL,
		normalized_name TEXT NOT NULL,
		PRIMARY KEY (data_id, normalized_name, name_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_name_lookup_name ON name_lookup(normalized_name, raw_contact_id)`,
	`CREATE TABLE IF NOT EXISTS phone_lookup (
		data_id           INTEGER NOT NULL,
		raw_contact_id    INTEGER NOT NULL,
		normalized_number TEXT NOT NULL,
		min_match         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_phone_lookup_min ON phone_lookup(min_match)`,
	`CREATE INDEX IF NOT EXISTS idx_phone_lookup_data ON phone_lookup(data_id)`,
}

// Open opens (or creates) the contacts database at path and ensures the
// schema exists.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open contacts db: %w", err)
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:               db,
		logger:           logger,
		profileAggregate: opts.ProfileAggregate,
		country:          strings.ToUpper(opts.Country),
		nicknames:        opts.Nicknames,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats reports the row counts surfaced by the health endpoint.
func (s *Store) Stats() (rawContacts, dataRows int, err error) {
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM raw_contacts`).Scan(&rawContacts); err != nil {
		return 0, 0, fmt.Errorf("count raw contacts: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM contact_data`).Scan(&dataRows); err != nil {
		return 0, 0, fmt.Errorf("count data rows: %w", err)
	}
	return rawContacts, dataRows, nil
}

// nicknameTable returns the active cluster table (possibly nil).
func (s *Store) nicknameTable() *nickname.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nicknames
}

// countryISO returns the current country context for phone derivation.
func (s *Store) countryISO() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.country
}

// SetCountry changes the country context for subsequent phone writes.
// Existing phone_lookup rows keep their derivation until rewritten.
func (s *Store) SetCountry(iso string) {
	s.mu.Lock()
	s.country = strings.ToUpper(iso)
	s.mu.Unlock()
}

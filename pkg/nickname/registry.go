package nickname

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry holds the cluster tables for every available locale and serves
// the active one. Reload supports both hot reload and locale change.
type Registry struct {
	mu        sync.RWMutex
	tables    map[string]*Table // keyed by locale
	tablesDir string
}

// NewRegistry creates an empty registry for the given directory.
func NewRegistry(tablesDir string) *Registry {
	return &Registry{
		tables:    make(map[string]*Table),
		tablesDir: tablesDir,
	}
}

// Load scans the tables directory and loads every cluster table.
func (r *Registry) Load() error {
	entries, err := os.ReadDir(r.tablesDir)
	if err != nil {
		return fmt.Errorf("read tables dir %s: %w", r.tablesDir, err)
	}

	newTables := make(map[string]*Table)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(r.tablesDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "manifest.yaml")); err != nil {
			continue
		}
		t, err := LoadTable(dir)
		if err != nil {
			return fmt.Errorf("load table %s: %w", entry.Name(), err)
		}
		newTables[t.Manifest.Locale] = t
	}

	r.mu.Lock()
	r.tables = newTables
	r.mu.Unlock()
	return nil
}

// Reload reloads all tables from disk (hot reload / locale change).
func (r *Registry) Reload() error {
	return r.Load()
}

// ForLocale returns the table for a locale, falling back from a full tag
// ("en-US") to its language ("en"). Returns nil when no table matches;
// the engine then simply indexes nicknames without cluster expansion.
func (r *Registry) ForLocale(locale string) *Table {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.tables[locale]; ok {
		return t
	}
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		if t, ok := r.tables[locale[:i]]; ok {
			return t
		}
	}
	return nil
}

// Locales returns the loaded locales, sorted.
func (r *Registry) Locales() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	locales := make([]string, 0, len(r.tables))
	for l := range r.tables {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	return locales
}

// TableCount returns the number of loaded tables.
func (r *Registry) TableCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

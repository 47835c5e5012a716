package contacts

import (
	"fmt"

	"github.com/hazyhaar/rolodex/pkg/nickname"
)

// RebuildLocale swaps the nickname cluster table and re-derives every
// locale-sensitive field: all name_lookup entries and all display name /
// sort key / bucket columns, in one exclusive transaction. The pass is
// all-or-nothing; an interrupted rebuild leaves the previous commit
// intact and must simply be re-run. Expect it to block writers for its
// full duration.
func (s *Store) RebuildLocale(locale string, table *nickname.Table) error {
	s.mu.Lock()
	s.nicknames = table
	s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM name_lookup`); err != nil {
		return fmt.Errorf("clear name lookup: %w", err)
	}

	rows, err := tx.Query(dataRowQuery+` WHERE kind != ? ORDER BY id`, KindPhone)
	if err != nil {
		return fmt.Errorf("rebuild scan: %w", err)
	}
	all, err := scanDataRows(rows)
	rows.Close()
	if err != nil {
		return err
	}
	for i := range all {
		if err := s.indexDataTx(tx, &all[i]); err != nil {
			return err
		}
	}

	idRows, err := tx.Query(`SELECT id FROM raw_contacts ORDER BY id`)
	if err != nil {
		return fmt.Errorf("rebuild contacts scan: %w", err)
	}
	var rawIDs []int64
	for idRows.Next() {
		var id int64
		if err := idRows.Scan(&id); err != nil {
			idRows.Close()
			return fmt.Errorf("scan raw contact id: %w", err)
		}
		rawIDs = append(rawIDs, id)
	}
	if err := idRows.Err(); err != nil {
		idRows.Close()
		return err
	}
	idRows.Close()

	for _, id := range rawIDs {
		if err := s.resolveDisplayNameTx(tx, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	s.logger.Info("locale rebuild complete",
		"locale", locale, "contacts", len(rawIDs), "rows", len(all))
	return nil
}

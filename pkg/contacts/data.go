package contacts

import (
	"database/sql"
	"fmt"
)

// InsertData stores a new attribute row and, in the same transaction,
// derives its lookup index entries and re-resolves the owning raw
// contact's display name.
func (s *Store) InsertData(row *DataRow) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO contact_data (raw_contact_id, kind, is_primary, is_super_primary, value,
			prefix, given_name, middle_name, family_name, suffix, phonetic_given, phonetic_family)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.RawContactID, row.Kind, row.IsPrimary, row.IsSuperPrimary, row.Value,
		row.Prefix, row.GivenName, row.MiddleName, row.FamilyName, row.Suffix,
		row.PhoneticGiven, row.PhoneticFamily,
	)
	if err != nil {
		return 0, fmt.Errorf("insert data row: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert data row: %w", err)
	}
	row.ID = id

	if err := s.indexDataTx(tx, row); err != nil {
		return 0, err
	}
	if err := s.resolveDisplayNameTx(tx, row.RawContactID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// UpdateData rewrites an attribute row. Index entries are deleted and
// re-derived, never patched in place, so stale min-match buckets and
// name variants cannot survive an update.
func (s *Store) UpdateData(row *DataRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE contact_data SET kind = ?, is_primary = ?, is_super_primary = ?, value = ?,
			prefix = ?, given_name = ?, middle_name = ?, family_name = ?, suffix = ?,
			phonetic_given = ?, phonetic_family = ?
		 WHERE id = ?`,
		row.Kind, row.IsPrimary, row.IsSuperPrimary, row.Value,
		row.Prefix, row.GivenName, row.MiddleName, row.FamilyName, row.Suffix,
		row.PhoneticGiven, row.PhoneticFamily, row.ID,
	)
	if err != nil {
		return fmt.Errorf("update data row: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update data row %d: %w", row.ID, ErrNotFound)
	}
	if err := tx.QueryRow(`SELECT raw_contact_id FROM contact_data WHERE id = ?`, row.ID).
		Scan(&row.RawContactID); err != nil {
		return fmt.Errorf("owning raw contact: %w", err)
	}

	if err := s.deleteIndexEntriesTx(tx, row.ID); err != nil {
		return err
	}
	if err := s.indexDataTx(tx, row); err != nil {
		return err
	}
	if err := s.resolveDisplayNameTx(tx, row.RawContactID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteData removes an attribute row together with all of its index
// entries, then re-resolves the owning raw contact's display name.
func (s *Store) DeleteData(dataID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var rawContactID int64
	err = tx.QueryRow(`SELECT raw_contact_id FROM contact_data WHERE id = ?`, dataID).
		Scan(&rawContactID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("data row %d: %w", dataID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("owning raw contact: %w", err)
	}

	if err := s.deleteIndexEntriesTx(tx, dataID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM contact_data WHERE id = ?`, dataID); err != nil {
		return fmt.Errorf("delete data row: %w", err)
	}
	if err := s.resolveDisplayNameTx(tx, rawContactID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DataRow loads one attribute row by id.
func (s *Store) DataRow(dataID int64) (*DataRow, error) {
	rows, err := s.db.Query(dataRowQuery+` WHERE id = ?`, dataID)
	if err != nil {
		return nil, fmt.Errorf("data row: %w", err)
	}
	defer rows.Close()
	out, err := scanDataRows(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// DataRows returns all attribute rows of a raw contact in insertion order.
func (s *Store) DataRows(rawContactID int64) ([]DataRow, error) {
	rows, err := s.db.Query(dataRowQuery+` WHERE raw_contact_id = ? ORDER BY id`, rawContactID)
	if err != nil {
		return nil, fmt.Errorf("data rows: %w", err)
	}
	defer rows.Close()
	return scanDataRows(rows)
}

const dataRowQuery = `SELECT id, raw_contact_id, kind, is_primary, is_super_primary, value,
	prefix, given_name, middle_name, family_name, suffix, phonetic_given, phonetic_family
	FROM contact_data`

func scanDataRows(rows *sql.Rows) ([]DataRow, error) {
	var out []DataRow
	for rows.Next() {
		var r DataRow
		if err := rows.Scan(&r.ID, &r.RawContactID, &r.Kind, &r.IsPrimary, &r.IsSuperPrimary,
			&r.Value, &r.Prefix, &r.GivenName, &r.MiddleName, &r.FamilyName, &r.Suffix,
			&r.PhoneticGiven, &r.PhoneticFamily); err != nil {
			return nil, fmt.Errorf("scan data row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// indexDataTx derives and stores the lookup entries for one row.
func (s *Store) indexDataTx(tx *sql.Tx, row *DataRow) error {
	switch row.Kind {
	case KindPhone:
		return s.insertPhoneLookupTx(tx, row)
	case KindStructuredName, KindNickname, KindOrganization, KindEmail:
		return s.insertNameLookupTx(tx, row)
	default:
		return nil // IM and friends are not indexed
	}
}

// deleteIndexEntriesTx removes every index entry derived from a row.
func (s *Store) deleteIndexEntriesTx(tx *sql.Tx, dataID int64) error {
	if _, err := tx.Exec(`DELETE FROM name_lookup WHERE data_id = ?`, dataID); err != nil {
		return fmt.Errorf("delete name lookup: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM phone_lookup WHERE data_id = ?`, dataID); err != nil {
		return fmt.Errorf("delete phone lookup: %w", err)
	}
	return nil
}

package contacts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hazyhaar/rolodex/pkg/lookupkey"
)

// ErrNotFound reports a lookup that matched no row.
var ErrNotFound = errors.New("not found")

// InsertRawContact stores a new raw contact and returns its id. Derived
// display fields start empty; they fill in as attribute rows arrive.
func (s *Store) InsertRawContact(rc *RawContact) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO raw_contacts (aggregate_id, account_type, account_name, data_set, source_id)
		 VALUES (?, ?, ?, ?, ?)`,
		rc.AggregateID, rc.AccountType, rc.AccountName, rc.DataSet, rc.SourceID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert raw contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert raw contact: %w", err)
	}
	rc.ID = id
	return id, nil
}

const rawContactCols = `id, aggregate_id, account_type, account_name, data_set, source_id,
	display_name, display_name_alt, phonetic_name, phonetic_name_style,
	sort_key, sort_key_alt, bucket, bucket_label, bucket_alt, bucket_label_alt,
	display_name_source`

func scanRawContact(row *sql.Row) (*RawContact, error) {
	var rc RawContact
	err := row.Scan(&rc.ID, &rc.AggregateID, &rc.AccountType, &rc.AccountName, &rc.DataSet,
		&rc.SourceID, &rc.DisplayName, &rc.DisplayNameAlt, &rc.PhoneticName,
		&rc.PhoneticNameStyle, &rc.SortKey, &rc.SortKeyAlt, &rc.Bucket, &rc.BucketLabel,
		&rc.BucketAlt, &rc.BucketLabelAlt, (*int)(&rc.DisplayNameSource))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan raw contact: %w", err)
	}
	return &rc, nil
}

// RawContact loads one raw contact by id.
func (s *Store) RawContact(id int64) (*RawContact, error) {
	return scanRawContact(s.db.QueryRow(
		`SELECT `+rawContactCols+` FROM raw_contacts WHERE id = ?`, id))
}

// SetAggregate moves a raw contact to an aggregate. Membership decisions
// belong to the external aggregator; the store only records them.
func (s *Store) SetAggregate(rawContactID, aggregateID int64) error {
	res, err := s.db.Exec(`UPDATE raw_contacts SET aggregate_id = ? WHERE id = ?`,
		aggregateID, rawContactID)
	if err != nil {
		return fmt.Errorf("set aggregate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set aggregate: raw contact %d: %w", rawContactID, ErrNotFound)
	}
	return nil
}

// LookupKey encodes the external identifier for an aggregate from its
// current membership, ordered by descending raw contact id. The profile
// aggregate always encodes to the sentinel regardless of content.
func (s *Store) LookupKey(aggregateID int64) (string, error) {
	if s.profileAggregate != 0 && aggregateID == s.profileAggregate {
		return lookupkey.ProfileKey, nil
	}

	rows, err := s.db.Query(
		`SELECT id, account_type, account_name, data_set, source_id, display_name
		 FROM raw_contacts WHERE aggregate_id = ? ORDER BY id DESC`, aggregateID)
	if err != nil {
		return "", fmt.Errorf("lookup key members: %w", err)
	}
	defer rows.Close()

	var records []lookupkey.Record
	for rows.Next() {
		var r lookupkey.Record
		if err := rows.Scan(&r.RawContactID, &r.AccountType, &r.AccountName,
			&r.DataSet, &r.SourceID, &r.DisplayName); err != nil {
			return "", fmt.Errorf("scan member: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("aggregate %d has no members: %w", aggregateID, ErrNotFound)
	}
	return lookupkey.Key(records), nil
}

package contacts

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/hazyhaar/rolodex/pkg/normalize"
)

// insertPhoneLookupTx derives and stores the phone_lookup entries for a
// phone row: the country-agnostic normalized form, plus an E.164 twin
// when the current country context yields a different one. An unparsable
// number is not an error; the row simply goes unindexed.
func (s *Store) insertPhoneLookupTx(tx *sql.Tx, row *DataRow) error {
	norm := normalize.Phone(row.Value)
	if norm == "" {
		return nil
	}
	numbers := []string{norm}
	if e := normalize.E164(norm, s.countryISO()); e != "" && e != norm {
		numbers = append(numbers, e)
	}
	for _, n := range numbers {
		min := normalize.MinMatch(n)
		if min == "" {
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO phone_lookup (data_id, raw_contact_id, normalized_number, min_match)
			 VALUES (?, ?, ?, ?)`,
			row.ID, row.RawContactID, n, min,
		); err != nil {
			return fmt.Errorf("insert phone lookup: %w", err)
		}
	}
	return nil
}

// LookupByPhone matches an inbound number against the index. Candidates
// are first narrowed to the min-match bucket, then accepted on exact
// equality of either form, or — unless strict — when one number is a
// digit suffix of the other (covering stored or inbound numbers missing
// a country/area code, with no weighting). Strict mode accepts exact
// matches only.
func (s *Store) LookupByPhone(number, e164 string, strict bool) ([]int64, error) {
	norm := normalize.Phone(number)
	if norm == "" {
		return nil, nil
	}
	if e164 == "" {
		e164 = normalize.E164(norm, s.countryISO())
	}
	min := normalize.MinMatch(norm)
	if min == "" {
		return nil, nil
	}

	rows, err := s.db.Query(
		`SELECT raw_contact_id, normalized_number FROM phone_lookup
		 WHERE min_match = ? ORDER BY raw_contact_id`, min)
	if err != nil {
		return nil, fmt.Errorf("lookup by phone: %w", err)
	}
	defer rows.Close()

	inDigits := normalize.Digits(norm)
	var ids []int64
	seen := make(map[int64]bool)
	for rows.Next() {
		var id int64
		var candidate string
		if err := rows.Scan(&id, &candidate); err != nil {
			return nil, fmt.Errorf("scan phone candidate: %w", err)
		}
		if seen[id] {
			continue
		}
		if !phoneMatches(candidate, norm, e164, inDigits, strict) {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func phoneMatches(candidate, norm, e164, inDigits string, strict bool) bool {
	if candidate == norm || (e164 != "" && candidate == e164) {
		return true
	}
	if strict {
		return false
	}
	candDigits := normalize.Digits(candidate)
	if candDigits == "" || inDigits == "" {
		return false
	}
	return strings.HasSuffix(candDigits, inDigits) || strings.HasSuffix(inDigits, candDigits)
}

// PhoneEntries returns the index rows for one data row, in derivation
// order. Used by callers verifying index consistency.
func (s *Store) PhoneEntries(dataID int64) ([]PhoneEntry, error) {
	rows, err := s.db.Query(
		`SELECT data_id, raw_contact_id, normalized_number, min_match
		 FROM phone_lookup WHERE data_id = ? ORDER BY rowid`, dataID)
	if err != nil {
		return nil, fmt.Errorf("phone entries: %w", err)
	}
	defer rows.Close()

	var out []PhoneEntry
	for rows.Next() {
		var e PhoneEntry
		if err := rows.Scan(&e.DataID, &e.RawContactID, &e.NormalizedNumber, &e.MinMatch); err != nil {
			return nil, fmt.Errorf("scan phone entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PhoneEntry is one stored phone_lookup row.
type PhoneEntry struct {
	DataID           int64
	RawContactID     int64
	NormalizedNumber string
	MinMatch         string
}

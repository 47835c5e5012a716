package contacts

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/hazyhaar/rolodex/pkg/normalize"
	"github.com/hazyhaar/rolodex/pkg/phonebook"
)

// displaySourceFor classifies the row for the precedence scan. ok is
// false when the row contributes no usable name.
func displaySourceFor(row *DataRow) (DisplayNameSource, bool) {
	switch row.Kind {
	case KindStructuredName:
		if joinNameParts(row, false) == "" && joinPhonetic(row) == "" {
			return SourceUndefined, false
		}
		return SourceStructuredName, true
	case KindOrganization:
		return SourceOrganization, row.Value != ""
	case KindPhone:
		return SourcePhone, row.Value != ""
	case KindEmail:
		return SourceEmail, row.Value != ""
	case KindNickname:
		return SourceNickname, row.Value != ""
	}
	return SourceUndefined, false
}

// resolveDisplayNameTx scans all attribute rows of a raw contact, picks
// the winning row by source precedence (primary flag breaks ties at equal
// precedence, first-seen otherwise), derives both display orders, the
// sort keys and the phonebook buckets, and persists everything in one
// write. Re-running it on an unchanged attribute set reproduces the same
// stored values exactly.
func (s *Store) resolveDisplayNameTx(tx *sql.Tx, rawContactID int64) error {
	rows, err := tx.Query(dataRowQuery+` WHERE raw_contact_id = ? ORDER BY id`, rawContactID)
	if err != nil {
		return fmt.Errorf("resolver scan: %w", err)
	}
	all, err := scanDataRows(rows)
	rows.Close()
	if err != nil {
		return err
	}

	var best *DataRow
	bestSrc := SourceUndefined
	for i := range all {
		row := &all[i]
		src, ok := displaySourceFor(row)
		if !ok {
			continue
		}
		switch {
		case best == nil || src > bestSrc:
			best, bestSrc = row, src
		case src == bestSrc && row.primary() && !best.primary():
			best = row
		}
	}

	var rc RawContact
	rc.DisplayNameSource = bestSrc
	if best != nil {
		if bestSrc == SourceStructuredName {
			rc.DisplayName = joinNameParts(best, false)
			rc.DisplayNameAlt = joinNameParts(best, true)
			rc.PhoneticName = joinPhonetic(best)
		} else {
			rc.DisplayName = best.Value
			rc.DisplayNameAlt = best.Value
		}
		if rc.PhoneticName != "" {
			if normalize.StyleOf(rc.PhoneticName) == normalize.StyleCJK {
				rc.PhoneticNameStyle = PhoneticStyleCJK
			} else {
				rc.PhoneticNameStyle = PhoneticStyleWestern
			}
		}
		// The phonetic name, when present, wins both sort keys.
		rc.SortKey = rc.DisplayName
		rc.SortKeyAlt = rc.DisplayNameAlt
		if rc.PhoneticName != "" {
			rc.SortKey = rc.PhoneticName
			rc.SortKeyAlt = rc.PhoneticName
		}
		rc.Bucket, rc.BucketLabel = phonebook.Bucket(rc.SortKey)
		rc.BucketAlt, rc.BucketLabelAlt = phonebook.Bucket(rc.SortKeyAlt)
	}

	_, err = tx.Exec(
		`UPDATE raw_contacts SET display_name = ?, display_name_alt = ?, phonetic_name = ?,
			phonetic_name_style = ?, sort_key = ?, sort_key_alt = ?, bucket = ?, bucket_label = ?,
			bucket_alt = ?, bucket_label_alt = ?, display_name_source = ?
		 WHERE id = ?`,
		rc.DisplayName, rc.DisplayNameAlt, rc.PhoneticName, rc.PhoneticNameStyle,
		rc.SortKey, rc.SortKeyAlt, rc.Bucket, rc.BucketLabel, rc.BucketAlt, rc.BucketLabelAlt,
		rc.DisplayNameSource, rawContactID,
	)
	if err != nil {
		return fmt.Errorf("persist display name: %w", err)
	}
	return nil
}

// joinNameParts builds a display form from structured name parts.
// Western primary order is "Prefix Given Middle Family Suffix";
// alternative order is "Family, Given Middle". CJK names concatenate
// family+given with no separator in both orders.
func joinNameParts(row *DataRow, alternative bool) string {
	if normalize.StyleOf(row.FamilyName+row.GivenName) == normalize.StyleCJK {
		return strings.TrimSpace(row.FamilyName) + strings.TrimSpace(row.GivenName)
	}
	if alternative && strings.TrimSpace(row.FamilyName) != "" {
		given := joinNonEmpty(" ", row.GivenName, row.MiddleName)
		if given == "" {
			return strings.TrimSpace(row.FamilyName)
		}
		return strings.TrimSpace(row.FamilyName) + ", " + given
	}
	return joinNonEmpty(" ", row.Prefix, row.GivenName, row.MiddleName, row.FamilyName, row.Suffix)
}

// joinPhonetic builds the phonetic name, family part first.
func joinPhonetic(row *DataRow) string {
	if normalize.StyleOf(row.PhoneticFamily+row.PhoneticGiven) == normalize.StyleCJK {
		return strings.TrimSpace(row.PhoneticFamily) + strings.TrimSpace(row.PhoneticGiven)
	}
	return joinNonEmpty(" ", row.PhoneticFamily, row.PhoneticGiven)
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

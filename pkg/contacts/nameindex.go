package contacts

import (
	"database/sql"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/hazyhaar/rolodex/pkg/normalize"
)

type nameEntry struct {
	typ  NameType
	name string
}

// nameEntriesFor derives the name_lookup entries for one attribute row.
// Empty normalizations produce no entries, by contract.
func (s *Store) nameEntriesFor(row *DataRow) []nameEntry {
	switch row.Kind {
	case KindStructuredName:
		return structuredNameEntries(row)
	case KindNickname:
		n := normalize.Name(row.Value)
		if n == "" {
			return nil
		}
		entries := []nameEntry{{NameNickname, n}}
		// Cluster ids let "Bob" find a contact stored as "Robert".
		for _, c := range s.nicknameTable().Clusters(row.Value) {
			entries = append(entries, nameEntry{NameNickname, strconv.Itoa(c)})
		}
		return entries
	case KindOrganization:
		n := normalize.Name(row.Value)
		if n == "" {
			return nil
		}
		return []nameEntry{{NameNickname, n}}
	case KindEmail:
		n := normalize.Name(emailLocalPart(row.Value))
		if n == "" {
			return nil
		}
		return []nameEntry{{NameEmailLocal, n}}
	}
	return nil
}

func structuredNameEntries(row *DataRow) []nameEntry {
	primary := joinNameParts(row, false)
	variant := joinNameParts(row, true)

	var entries []nameEntry
	if n := normalize.Name(primary); n != "" {
		entries = append(entries, nameEntry{NameExact, n})
		entries = append(entries, nameEntry{NameCollation, normalize.CollationKey(n)})
	}
	if n := normalize.Name(variant); n != "" && n != normalize.Name(primary) {
		entries = append(entries, nameEntry{NameVariant, n})
		entries = append(entries, nameEntry{NameCollation, normalize.CollationKey(n)})
	}
	if n := normalize.Name(joinPhonetic(row)); n != "" {
		entries = append(entries, nameEntry{NamePhonetic, n})
	}
	return entries
}

// emailLocalPart extracts the part before "@" of the first address token,
// tolerating display-name forms like `"J. Smith" <js@example.com>`.
func emailLocalPart(address string) string {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return ""
	}
	if list, err := mail.ParseAddressList(addr); err == nil && len(list) > 0 {
		addr = list[0].Address
	} else if first, _, found := strings.Cut(addr, ","); found {
		addr = strings.TrimSpace(first)
	}
	local, _, _ := strings.Cut(addr, "@")
	return local
}

// insertNameLookupTx stores the entries for a row. INSERT OR IGNORE keyed
// on (data_id, normalized_name, name_type) makes re-insertion a no-op.
func (s *Store) insertNameLookupTx(tx *sql.Tx, row *DataRow) error {
	for _, e := range s.nameEntriesFor(row) {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO name_lookup (data_id, raw_contact_id, name_type, normalized_name)
			 VALUES (?, ?, ?, ?)`,
			row.ID, row.RawContactID, e.typ, e.name,
		); err != nil {
			return fmt.Errorf("insert name lookup: %w", err)
		}
	}
	return nil
}

// SearchByName returns the raw contact ids whose index entries start with
// the normalized prefix, restricted to the allowed name types, in the
// index's natural (normalized name, raw contact id) order. No ranking.
func (s *Store) SearchByName(prefix string, types []NameType) ([]int64, error) {
	norm := normalize.Name(prefix)
	if norm == "" || len(types) == 0 {
		return nil, nil
	}

	allowed := make(map[NameType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}

	var conds []string
	var args []any

	var plain []string
	for _, t := range []NameType{NameExact, NameVariant, NamePhonetic, NameNickname, NameEmailLocal} {
		if allowed[t] {
			plain = append(plain, strconv.Itoa(int(t)))
		}
	}
	if len(plain) > 0 {
		conds = append(conds,
			`(name_type IN (`+strings.Join(plain, ",")+`) AND normalized_name LIKE ?)`)
		args = append(args, norm+"%")
	}
	if allowed[NameCollation] {
		conds = append(conds, `(name_type = ? AND normalized_name LIKE ?)`)
		args = append(args, NameCollation, normalize.CollationKey(norm)+"%")
	}
	if allowed[NameNickname] {
		// Expand the query through the cluster table so "Bob" reaches
		// entries indexed under Robert's cluster id.
		for _, c := range s.nicknameTable().Clusters(norm) {
			conds = append(conds, `(name_type = ? AND normalized_name = ?)`)
			args = append(args, NameNickname, strconv.Itoa(c))
		}
	}

	q := `SELECT raw_contact_id FROM name_lookup WHERE ` + strings.Join(conds, " OR ") +
		` ORDER BY normalized_name, raw_contact_id`
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("search by name: %w", err)
	}
	defer rows.Close()
	return collectDistinctIDs(rows)
}

// collectDistinctIDs drains raw contact ids preserving first-seen order.
func collectDistinctIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

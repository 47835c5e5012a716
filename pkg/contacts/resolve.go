package contacts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hazyhaar/rolodex/pkg/lookupkey"
	"github.com/hazyhaar/rolodex/pkg/normalize"
)

// ResolveKey decodes a lookup key and resolves its segments against live
// rows: source id + account hash first, then raw contact id (verified
// against the encoded name), then the normalized-name fallback. When
// segments land on different aggregates the highest aggregate id wins.
// Returns the winning aggregate id with the (annotated) segments.
func (s *Store) ResolveKey(key string) (int64, []lookupkey.Segment, error) {
	segs, err := lookupkey.Parse(key)
	if err != nil {
		return 0, nil, err
	}

	var aggregate int64
	for i := range segs {
		seg := &segs[i]
		if seg.Type == lookupkey.SegmentProfile {
			if s.profileAggregate == 0 {
				return 0, segs, fmt.Errorf("profile aggregate: %w", ErrNotFound)
			}
			return s.profileAggregate, segs, nil
		}

		rawID, aggID, err := s.resolveSegment(seg)
		if err != nil {
			return 0, nil, err
		}
		if rawID == lookupkey.Unresolved {
			continue
		}
		seg.ResolvedID = rawID
		if aggID > aggregate {
			aggregate = aggID
		}
	}
	if aggregate == 0 {
		return 0, segs, fmt.Errorf("lookup key %q: %w", key, ErrNotFound)
	}
	return aggregate, segs, nil
}

func (s *Store) resolveSegment(seg *lookupkey.Segment) (rawID, aggregateID int64, err error) {
	switch seg.Type {
	case lookupkey.SegmentSourceID:
		return s.resolveBySourceID(seg)
	case lookupkey.SegmentRawContactID:
		rc, err := s.RawContact(seg.RawContactID)
		if err == nil && (seg.Key == "" || normalize.Name(rc.DisplayName) == seg.Key) {
			return rc.ID, rc.AggregateID, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return 0, 0, err
		}
		// Id reassigned since encoding; fall back to the name half.
		return s.resolveByName(seg.Key)
	case lookupkey.SegmentDisplayName:
		return s.resolveByName(seg.Key)
	}
	return lookupkey.Unresolved, 0, nil
}

// resolveBySourceID matches raw contacts carrying the segment's source
// id, filtered by account hash when the segment has one. The candidate
// on the highest aggregate wins.
func (s *Store) resolveBySourceID(seg *lookupkey.Segment) (int64, int64, error) {
	rows, err := s.db.Query(
		`SELECT id, aggregate_id, account_type, account_name, data_set
		 FROM raw_contacts WHERE source_id = ? ORDER BY aggregate_id DESC, id DESC`, seg.Key)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve source id: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, agg int64
		var accountType, accountName, dataSet string
		if err := rows.Scan(&id, &agg, &accountType, &accountName, &dataSet); err != nil {
			return 0, 0, fmt.Errorf("scan candidate: %w", err)
		}
		if seg.AccountHash != 0 &&
			lookupkey.AccountHash(accountType, dataSet, accountName) != seg.AccountHash {
			continue
		}
		return id, agg, rows.Err()
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}
	return lookupkey.Unresolved, 0, nil
}

// resolveByName matches the normalized-name fallback against the exact
// and variant index entries.
func (s *Store) resolveByName(normalizedName string) (int64, int64, error) {
	if normalizedName == "" {
		return lookupkey.Unresolved, 0, nil
	}
	var id, agg int64
	err := s.db.QueryRow(
		`SELECT n.raw_contact_id, r.aggregate_id
		 FROM name_lookup n JOIN raw_contacts r ON r.id = n.raw_contact_id
		 WHERE n.normalized_name = ? AND n.name_type IN (?, ?)
		 ORDER BY r.aggregate_id DESC, n.raw_contact_id DESC LIMIT 1`,
		normalizedName, NameExact, NameVariant,
	).Scan(&id, &agg)
	if errors.Is(err, sql.ErrNoRows) {
		return lookupkey.Unresolved, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("resolve by name: %w", err)
	}
	return id, agg, nil
}

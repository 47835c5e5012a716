// Package lookupkey encodes and decodes the portable external identifier
// of an aggregate contact: one escaped segment per contributing raw
// contact, joined by dots. The codec is pure string work; resolving
// decoded segments against live rows is the store's job.
package lookupkey

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/hazyhaar/rolodex/pkg/normalize"
)

// ProfileKey is the entire lookup key of the distinguished profile
// aggregate. It never combines with ordinary segments.
const ProfileKey = "profile"

// Unresolved marks a segment not yet matched to a live raw contact.
const Unresolved int64 = -1

// SegmentType tells how a segment identifies its raw contact.
type SegmentType int

const (
	// SegmentSourceID carries the sync source id (markers 'i' and 'e').
	SegmentSourceID SegmentType = iota
	// SegmentDisplayName is the deprecated name-only form (marker 'n').
	SegmentDisplayName
	// SegmentRawContactID is the fallback form (marker 'r'): raw contact
	// id plus normalized display name.
	SegmentRawContactID
	// SegmentProfile is the sentinel for the profile aggregate.
	SegmentProfile
)

// Record describes one contributing raw contact to encode.
type Record struct {
	AccountType  string
	AccountName  string
	DataSet      string
	RawContactID int64
	SourceID     string // "" when the source never assigned one
	DisplayName  string
}

// Segment is one decoded unit of a lookup key.
type Segment struct {
	AccountHash  uint16 // low 12 bits only
	Type         SegmentType
	RawContactID int64 // set for SegmentRawContactID, else 0
	Key          string
	ResolvedID   int64 // filled by a later resolution pass
}

// ErrMalformedKey reports an undecodable lookup key. It is local and
// non-fatal; no partial segments are returned alongside it.
var ErrMalformedKey = errors.New("malformed lookup key")

// AccountHash folds the account identity into 12 bits. Collision
// reduction only, not a security hash; absent accounts hash to 0.
func AccountHash(accountType, dataSet, accountName string) uint16 {
	if accountType == "" || accountName == "" {
		return 0
	}
	ht := fnv.New32a()
	ht.Write([]byte(accountType + dataSet))
	hn := fnv.New32a()
	hn.Write([]byte(accountName))
	return uint16((ht.Sum32() ^ hn.Sum32()) & 0xFFF)
}

// Key encodes the lookup key for a set of contributing records. Records
// are sorted by descending raw contact id first, purely for determinism.
func Key(records []Record) string {
	rs := make([]Record, len(records))
	copy(rs, records)
	sort.Slice(rs, func(i, j int) bool { return rs[i].RawContactID > rs[j].RawContactID })

	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(AccountHash(r.AccountType, r.DataSet, r.AccountName)), 10))
		if r.SourceID != "" {
			appendSourceID(&b, r.SourceID)
		} else {
			b.WriteByte('r')
			b.WriteString(strconv.FormatInt(r.RawContactID, 10))
			b.WriteByte('-')
			b.WriteString(normalize.Name(r.DisplayName))
		}
	}
	return b.String()
}

// appendSourceID writes the type marker and payload for a source id:
// 'i' when the id contains no dots, 'e' with every literal dot doubled
// otherwise. An unescaped dot always means "next segment".
func appendSourceID(b *strings.Builder, sourceID string) {
	if !strings.Contains(sourceID, ".") {
		b.WriteByte('i')
		b.WriteString(sourceID)
		return
	}
	b.WriteByte('e')
	for i := 0; i < len(sourceID); i++ {
		if sourceID[i] == '.' {
			b.WriteString("..")
		} else {
			b.WriteByte(sourceID[i])
		}
	}
}

// Parse decodes a URL-decoded lookup key into its ordered segments.
// It never touches storage; every ResolvedID comes back Unresolved.
func Parse(key string) ([]Segment, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrMalformedKey)
	}
	if key == ProfileKey {
		return []Segment{{Type: SegmentProfile, Key: ProfileKey, ResolvedID: Unresolved}}, nil
	}

	var segs []Segment
	i := 0
	for i < len(key) {
		var hash uint32
		for i < len(key) && key[i] >= '0' && key[i] <= '9' {
			hash = hash*10 + uint32(key[i]-'0')
			i++
		}
		if i >= len(key) {
			return nil, fmt.Errorf("%w: truncated segment at offset %d", ErrMalformedKey, i)
		}
		if hash > 0xFFF {
			return nil, fmt.Errorf("%w: account hash %d exceeds 12 bits", ErrMalformedKey, hash)
		}

		marker := key[i]
		i++

		seg := Segment{AccountHash: uint16(hash), ResolvedID: Unresolved}
		var payload string
		var err error
		switch marker {
		case 'i':
			seg.Type = SegmentSourceID
			payload, i, err = scanPlain(key, i)
		case 'e':
			seg.Type = SegmentSourceID
			payload, i, err = scanEscaped(key, i)
		case 'n':
			seg.Type = SegmentDisplayName
			payload, i, err = scanPlain(key, i)
		case 'r':
			seg.Type = SegmentRawContactID
			payload, i, err = scanPlain(key, i)
			if err == nil {
				seg.RawContactID, payload, err = splitRawSegment(payload)
			}
		default:
			return nil, fmt.Errorf("%w: unknown type marker %q at offset %d", ErrMalformedKey, marker, i-1)
		}
		if err != nil {
			return nil, err
		}
		seg.Key = payload
		segs = append(segs, seg)
	}
	return segs, nil
}

// scanPlain consumes a payload up to the next dot or end of string.
// A dot must be followed by another segment; a trailing one is malformed.
func scanPlain(key string, i int) (string, int, error) {
	start := i
	for i < len(key) && key[i] != '.' {
		i++
	}
	payload := key[start:i]
	if payload == "" {
		return "", i, fmt.Errorf("%w: empty segment payload at offset %d", ErrMalformedKey, start)
	}
	if i < len(key) { // consume the delimiter
		i++
		if i == len(key) {
			return "", i, fmt.Errorf("%w: trailing segment delimiter", ErrMalformedKey)
		}
	}
	return payload, i, nil
}

// scanEscaped consumes an 'e' payload, un-doubling escaped dots. A single
// dot delimits; a single dot at end of input is a truncated escape.
func scanEscaped(key string, i int) (string, int, error) {
	var b strings.Builder
	start := i
	for i < len(key) {
		if key[i] != '.' {
			b.WriteByte(key[i])
			i++
			continue
		}
		if i+1 < len(key) && key[i+1] == '.' {
			b.WriteByte('.')
			i += 2
			continue
		}
		// Unescaped dot: delimiter. Something must follow.
		i++
		if i == len(key) {
			return "", i, fmt.Errorf("%w: truncated escape at end of key", ErrMalformedKey)
		}
		break
	}
	if b.Len() == 0 {
		return "", i, fmt.Errorf("%w: empty segment payload at offset %d", ErrMalformedKey, start)
	}
	return b.String(), i, nil
}

// splitRawSegment splits an 'r' payload into raw contact id and
// normalized name. Only the first dash separates; later dashes stay in
// the name half.
func splitRawSegment(payload string) (int64, string, error) {
	dash := strings.IndexByte(payload, '-')
	if dash < 0 {
		return 0, "", fmt.Errorf("%w: raw contact segment %q missing separator", ErrMalformedKey, payload)
	}
	id, err := strconv.ParseInt(payload[:dash], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: raw contact id in %q: %v", ErrMalformedKey, payload, err)
	}
	return id, payload[dash+1:], nil
}

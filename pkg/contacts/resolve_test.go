package contacts

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/hazyhaar/rolodex/pkg/lookupkey"
)

func TestLookupKeyRoundTrip(t *testing.T) {
	s := setupStore(t, Options{})
	rcID := insertContact(t, s, RawContact{
		AccountType: "gmail.com", AccountName: "user@x", SourceID: "abc.def",
	})
	if err := s.SetAggregate(rcID, 7); err != nil {
		t.Fatalf("SetAggregate: %v", err)
	}

	key, err := s.LookupKey(7)
	if err != nil {
		t.Fatalf("LookupKey: %v", err)
	}
	// Dots in the source id are escaped by doubling.
	if !strings.Contains(key, "eabc..def") {
		t.Errorf("key = %q, want escaped source id segment", key)
	}

	agg, segs, err := s.ResolveKey(key)
	if err != nil {
		t.Fatalf("ResolveKey: %v", err)
	}
	if agg != 7 {
		t.Errorf("aggregate = %d, want 7", agg)
	}
	if len(segs) != 1 || segs[0].ResolvedID != rcID {
		t.Errorf("segments = %+v, want one segment resolved to %d", segs, rcID)
	}
}

func TestResolveKeyAccountHashFilter(t *testing.T) {
	s := setupStore(t, Options{})
	a := insertContact(t, s, RawContact{
		AccountType: "gmail.com", AccountName: "alice", SourceID: "dup",
	})
	b := insertContact(t, s, RawContact{
		AccountType: "corp.example", AccountName: "bob", SourceID: "dup",
	})
	s.SetAggregate(a, 5)
	s.SetAggregate(b, 9)

	hashA := lookupkey.AccountHash("gmail.com", "", "alice")
	hashB := lookupkey.AccountHash("corp.example", "", "bob")
	if hashA == 0 || hashA == hashB {
		t.Fatalf("test accounts collide (hashA=%d hashB=%d); pick different ones", hashA, hashB)
	}

	// Without the hash filter the shared source id would land on the
	// higher aggregate.
	keyA, err := s.LookupKey(5)
	if err != nil {
		t.Fatalf("LookupKey: %v", err)
	}
	agg, _, err := s.ResolveKey(keyA)
	if err != nil {
		t.Fatalf("ResolveKey: %v", err)
	}
	if agg != 5 {
		t.Errorf("aggregate = %d, want 5 (hash-filtered)", agg)
	}
}

func TestResolveKeyHighestAggregateWins(t *testing.T) {
	s := setupStore(t, Options{})
	a := insertContact(t, s, RawContact{SourceID: "shared"})
	b := insertContact(t, s, RawContact{SourceID: "shared"})
	s.SetAggregate(a, 2)
	s.SetAggregate(b, 8)

	agg, _, err := s.ResolveKey("0ishared")
	if err != nil {
		t.Fatalf("ResolveKey: %v", err)
	}
	if agg != 8 {
		t.Errorf("aggregate = %d, want the highest (8)", agg)
	}
}

func TestResolveKeyRawContactSegment(t *testing.T) {
	s := setupStore(t, Options{})
	rcID := insertContact(t, s, RawContact{})
	insertData(t, s, DataRow{
		RawContactID: rcID, Kind: KindStructuredName, GivenName: "Jean-Luc", FamilyName: "Picard",
	})
	s.SetAggregate(rcID, 3)

	key, err := s.LookupKey(3)
	if err != nil {
		t.Fatalf("LookupKey: %v", err)
	}
	// Local record without a source id encodes as id + normalized name.
	if !strings.Contains(key, "r") || !strings.HasSuffix(key, "-jeanlucpicard") {
		t.Errorf("key = %q, want raw contact segment", key)
	}
	agg, _, err := s.ResolveKey(key)
	if err != nil || agg != 3 {
		t.Errorf("ResolveKey = (%d, %v), want (3, nil)", agg, err)
	}
}

func TestResolveKeyNameFallback(t *testing.T) {
	s := setupStore(t, Options{})
	rcID := insertContact(t, s, RawContact{})
	insertData(t, s, DataRow{
		RawContactID: rcID, Kind: KindStructuredName, GivenName: "Jean-Luc", FamilyName: "Picard",
	})
	s.SetAggregate(rcID, 3)

	// A stale key whose raw contact id no longer exists still resolves
	// through the indexed normalized name.
	agg, _, err := s.ResolveKey("0r999-jeanlucpicard")
	if err != nil || agg != 3 {
		t.Errorf("stale id key = (%d, %v), want (3, nil)", agg, err)
	}

	// An id that exists but now names someone else is rejected too.
	other := insertContact(t, s, RawContact{})
	insertData(t, s, DataRow{
		RawContactID: other, Kind: KindStructuredName, GivenName: "Beverly", FamilyName: "Crusher",
	})
	s.SetAggregate(other, 4)
	stale := "0r" + strconv.FormatInt(other, 10) + "-jeanlucpicard"
	agg, _, err = s.ResolveKey(stale)
	if err != nil || agg != 3 {
		t.Errorf("reassigned id key = (%d, %v), want (3, nil)", agg, err)
	}
}

func TestResolveKeyProfile(t *testing.T) {
	s := setupStore(t, Options{ProfileAggregate: 99})
	key, err := s.LookupKey(99)
	if err != nil || key != lookupkey.ProfileKey {
		t.Fatalf("LookupKey(profile) = (%q, %v)", key, err)
	}
	agg, _, err := s.ResolveKey(key)
	if err != nil || agg != 99 {
		t.Errorf("ResolveKey(profile) = (%d, %v), want (99, nil)", agg, err)
	}

	// A store without a profile aggregate cannot resolve the sentinel.
	plain := setupStore(t, Options{})
	if _, _, err := plain.ResolveKey(lookupkey.ProfileKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("profile on plain store err = %v, want ErrNotFound", err)
	}
}

func TestResolveKeyErrors(t *testing.T) {
	s := setupStore(t, Options{})
	if _, _, err := s.ResolveKey("0inobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown key err = %v, want ErrNotFound", err)
	}
	if _, _, err := s.ResolveKey("0z!"); !errors.Is(err, lookupkey.ErrMalformedKey) {
		t.Errorf("malformed key err = %v, want ErrMalformedKey", err)
	}
	if _, err := s.LookupKey(123); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty aggregate err = %v, want ErrNotFound", err)
	}
}

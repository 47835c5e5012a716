package contacts

import "testing"

func TestRebuildLocaleSwapsNicknameTable(t *testing.T) {
	// Start without any nickname table.
	s := setupStore(t, Options{})
	rcID := insertContact(t, s, RawContact{})
	insertData(t, s, DataRow{RawContactID: rcID, Kind: KindNickname, Value: "Robert"})

	if ids, _ := s.SearchByName("Bob", []NameType{NameNickname}); len(ids) != 0 {
		t.Fatalf("cluster search before rebuild = %v, want empty", ids)
	}

	if err := s.RebuildLocale("en", testNicknameTable(t)); err != nil {
		t.Fatalf("RebuildLocale: %v", err)
	}

	// The re-derived index carries the cluster entries.
	ids, err := s.SearchByName("Bob", []NameType{NameNickname})
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(ids) != 1 || ids[0] != rcID {
		t.Errorf("cluster search after rebuild = %v, want [%d]", ids, rcID)
	}
}

func TestRebuildLocalePreservesState(t *testing.T) {
	s := setupStore(t, Options{Nicknames: testNicknameTable(t)})
	rcID := insertContact(t, s, RawContact{})
	insertData(t, s, DataRow{
		RawContactID: rcID, Kind: KindStructuredName, GivenName: "John", FamilyName: "Smith",
	})
	phone := insertContact(t, s, RawContact{})
	insertData(t, s, DataRow{RawContactID: phone, Kind: KindPhone, Value: "415-555-1234"})

	before, _ := s.RawContact(rcID)
	if err := s.RebuildLocale("en", testNicknameTable(t)); err != nil {
		t.Fatalf("RebuildLocale: %v", err)
	}
	after, _ := s.RawContact(rcID)
	if *before != *after {
		t.Errorf("rebuild changed derived fields:\nbefore = %+v\n after = %+v", before, after)
	}

	// Name search still works, and the phone index was never touched.
	if ids, _ := s.SearchByName("smit", []NameType{NameCollation}); len(ids) != 1 {
		t.Errorf("name search after rebuild = %v, want 1 hit", ids)
	}
	if ids, _ := s.LookupByPhone("4155551234", "", false); len(ids) != 1 {
		t.Errorf("phone lookup after rebuild = %v, want 1 hit", ids)
	}
}

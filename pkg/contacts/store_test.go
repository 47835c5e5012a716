package contacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/rolodex/pkg/nickname"
)

func testNicknameTable(t *testing.T) *nickname.Table {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "nicknames-en")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(`id: nicknames-en
version: "1.0"
locale: en
source: test
data_file: data.csv
format:
  delimiter: ","
`), 0o644)
	os.WriteFile(filepath.Join(dir, "data.csv"),
		[]byte("Robert,Bob,Bobby,Rob\nWilliam,Bill,Will\n"), 0o644)

	tab, err := nickname.LoadTable(dir)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	return tab
}

func setupStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Country == "" {
		opts.Country = "US"
	}
	s, err := Open(filepath.Join(t.TempDir(), "contacts.db"), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertContact(t *testing.T, s *Store, rc RawContact) int64 {
	t.Helper()
	id, err := s.InsertRawContact(&rc)
	if err != nil {
		t.Fatalf("InsertRawContact: %v", err)
	}
	return id
}

func insertData(t *testing.T, s *Store, row DataRow) int64 {
	t.Helper()
	id, err := s.InsertData(&row)
	if err != nil {
		t.Fatalf("InsertData: %v", err)
	}
	return id
}

func countNameEntries(t *testing.T, s *Store, dataID int64) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM name_lookup WHERE data_id = ?`, dataID).Scan(&n); err != nil {
		t.Fatalf("count name entries: %v", err)
	}
	return n
}

func TestOpenIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contacts.db")
	s1, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()
	s2, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}

func TestRawContactRoundTrip(t *testing.T) {
	s := setupStore(t, Options{})
	id := insertContact(t, s, RawContact{
		AccountType: "gmail.com", AccountName: "user@x", SourceID: "abc",
	})

	rc, err := s.RawContact(id)
	if err != nil {
		t.Fatalf("RawContact: %v", err)
	}
	if rc.AccountType != "gmail.com" || rc.SourceID != "abc" {
		t.Errorf("loaded contact = %+v", rc)
	}
	if rc.DisplayName != "" || rc.DisplayNameSource != SourceUndefined {
		t.Errorf("derived fields should start empty, got %+v", rc)
	}

	if _, err := s.RawContact(999); err != ErrNotFound {
		t.Errorf("missing contact err = %v, want ErrNotFound", err)
	}
}

func TestSetAggregate(t *testing.T) {
	s := setupStore(t, Options{})
	id := insertContact(t, s, RawContact{})
	if err := s.SetAggregate(id, 42); err != nil {
		t.Fatalf("SetAggregate: %v", err)
	}
	rc, _ := s.RawContact(id)
	if rc.AggregateID != 42 {
		t.Errorf("aggregate = %d, want 42", rc.AggregateID)
	}
	if err := s.SetAggregate(999, 1); err == nil {
		t.Error("SetAggregate on missing contact should fail")
	}
}

package lookupkey

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	records := []Record{
		{AccountType: "gmail.com", AccountName: "user@x", RawContactID: 7, SourceID: "abc"},
		{AccountType: "gmail.com", AccountName: "other@x", RawContactID: 12, SourceID: "xyz"},
		{RawContactID: 3, DisplayName: "John Smith"}, // local, no source id
	}
	key := Key(records)

	segs, err := Parse(key)
	if err != nil {
		t.Fatalf("Parse(%q): %v", key, err)
	}
	if len(segs) != 3 {
		t.Fatalf("segments = %d, want 3", len(segs))
	}

	// Encoding sorts by descending raw contact id.
	if segs[0].Type != SegmentSourceID || segs[0].Key != "xyz" {
		t.Errorf("segment 0 = %+v, want source id xyz", segs[0])
	}
	if segs[0].AccountHash != AccountHash("gmail.com", "", "other@x") {
		t.Errorf("segment 0 hash = %d", segs[0].AccountHash)
	}
	if segs[1].Type != SegmentSourceID || segs[1].Key != "abc" {
		t.Errorf("segment 1 = %+v, want source id abc", segs[1])
	}
	if segs[2].Type != SegmentRawContactID || segs[2].RawContactID != 3 || segs[2].Key != "johnsmith" {
		t.Errorf("segment 2 = %+v, want r3-johnsmith", segs[2])
	}
	for i, s := range segs {
		if s.ResolvedID != Unresolved {
			t.Errorf("segment %d resolved id = %d, want Unresolved", i, s.ResolvedID)
		}
	}
}

func TestEscaping(t *testing.T) {
	for _, sourceID := range []string{"a.b", "a..b", "a.", ".a", "..."} {
		key := Key([]Record{{AccountType: "t", AccountName: "n", RawContactID: 1, SourceID: sourceID}})
		if !strings.Contains(key, "e") {
			t.Errorf("source id %q should encode with marker e, got %q", sourceID, key)
		}
		segs, err := Parse(key)
		if err != nil {
			t.Fatalf("Parse(%q): %v", key, err)
		}
		if len(segs) != 1 || segs[0].Key != sourceID {
			t.Errorf("source id %q decoded to %q", sourceID, segs[0].Key)
		}
	}
}

func TestEscapingMultiSegment(t *testing.T) {
	key := Key([]Record{
		{AccountType: "t", AccountName: "n", RawContactID: 2, SourceID: "a.b"},
		{AccountType: "t", AccountName: "n", RawContactID: 1, SourceID: "plain"},
	})
	segs, err := Parse(key)
	if err != nil {
		t.Fatalf("Parse(%q): %v", key, err)
	}
	if len(segs) != 2 || segs[0].Key != "a.b" || segs[1].Key != "plain" {
		t.Errorf("segments = %+v", segs)
	}
}

func TestProfileSentinel(t *testing.T) {
	segs, err := Parse(ProfileKey)
	if err != nil {
		t.Fatalf("Parse(profile): %v", err)
	}
	if len(segs) != 1 || segs[0].Type != SegmentProfile {
		t.Errorf("profile decoded to %+v", segs)
	}
}

func TestParseDeprecatedDisplayName(t *testing.T) {
	segs, err := Parse("0njohnsmith")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(segs) != 1 || segs[0].Type != SegmentDisplayName || segs[0].Key != "johnsmith" {
		t.Errorf("segments = %+v", segs)
	}
}

func TestParseDashesInName(t *testing.T) {
	// Only the first dash separates id and name.
	segs, err := Parse("0r42-jeanluc-picard")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if segs[0].RawContactID != 42 || segs[0].Key != "jeanluc-picard" {
		t.Errorf("segment = %+v", segs[0])
	}
}

func TestParseMalformed(t *testing.T) {
	keys := []string{
		"",
		"123",            // digits, no marker
		"0zabc",          // unknown marker
		"0xyz",           // x is not a marker
		"0iabc.",         // trailing delimiter
		"0ea..b.",        // truncated escape at end
		"0i",             // empty payload
		"0rnoseparator",  // r without dash
		"0rNaN-name",     // r with non-numeric id
		"9999iabc",       // hash exceeds 12 bits
		"0iabc.0i",       // second segment empty
	}
	for _, k := range keys {
		if _, err := Parse(k); !errors.Is(err, ErrMalformedKey) {
			t.Errorf("Parse(%q) err = %v, want ErrMalformedKey", k, err)
		}
	}
}

func TestEncodeEndToEnd(t *testing.T) {
	// Record with account ("gmail.com","user@x"), source id "abc.def":
	// a single segment "<hash>e" + "abc..def" (literal dots doubled).
	rec := Record{AccountType: "gmail.com", AccountName: "user@x", RawContactID: 1, SourceID: "abc.def"}
	key := Key([]Record{rec})

	hash := AccountHash("gmail.com", "", "user@x")
	want := fmt.Sprintf("%de%s", hash, "abc..def")
	if key != want {
		t.Fatalf("Key = %q, want %q", key, want)
	}

	segs, err := Parse(key)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(segs) != 1 || segs[0].Key != "abc.def" || segs[0].AccountHash != hash {
		t.Errorf("segments = %+v", segs)
	}
}

func TestAccountHash(t *testing.T) {
	if AccountHash("", "", "name") != 0 {
		t.Error("absent account type should hash to 0")
	}
	if AccountHash("type", "", "") != 0 {
		t.Error("absent account name should hash to 0")
	}
	h := AccountHash("gmail.com", "", "user@x")
	if h > 0xFFF {
		t.Errorf("hash %d exceeds 12 bits", h)
	}
	if h != AccountHash("gmail.com", "", "user@x") {
		t.Error("hash should be deterministic")
	}
}

func TestEmptyDisplayNameFallback(t *testing.T) {
	key := Key([]Record{{RawContactID: 5}})
	if key != "0r5-" {
		t.Fatalf("Key = %q, want 0r5-", key)
	}
	segs, err := Parse(key)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if segs[0].RawContactID != 5 || segs[0].Key != "" {
		t.Errorf("segment = %+v", segs[0])
	}
}

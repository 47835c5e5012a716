package contacts

// DataKind is the type of fact an attribute row carries.
type DataKind int

const (
	KindStructuredName DataKind = iota + 1
	KindNickname
	KindOrganization
	KindPhone
	KindEmail
	KindIM
)

// NameType classifies a name_lookup entry.
type NameType int

const (
	// NameExact is the normalized display name in primary order.
	NameExact NameType = iota
	// NameVariant is a name-order variant (family-first vs given-first).
	NameVariant
	// NameCollation is a hex collation key, matched by key prefix.
	NameCollation
	// NamePhonetic is the normalized phonetic name.
	NamePhonetic
	// NameNickname covers nickname and organization values plus the
	// decimal nickname cluster ids.
	NameNickname
	// NameEmailLocal is the part of an email address before the "@".
	NameEmailLocal
)

// DisplayNameSource ranks where a raw contact's display name came from.
// Higher wins; the ordering is part of the resolver contract.
type DisplayNameSource int

const (
	SourceUndefined      DisplayNameSource = 0
	SourceNickname       DisplayNameSource = 10
	SourceEmail          DisplayNameSource = 20
	SourcePhone          DisplayNameSource = 30
	SourceOrganization   DisplayNameSource = 40
	SourceStructuredName DisplayNameSource = 50
)

// Phonetic name styles persisted on raw contacts.
const (
	PhoneticStyleNone    = 0
	PhoneticStyleWestern = 1
	PhoneticStyleCJK     = 2
)

// RawContact is one source-contributed contact record. The display and
// sort fields are derived by the resolver, never written by callers.
type RawContact struct {
	ID          int64
	AggregateID int64
	AccountType string // "" = local record
	AccountName string
	DataSet     string
	SourceID    string // "" = source never assigned one

	DisplayName       string
	DisplayNameAlt    string
	PhoneticName      string
	PhoneticNameStyle int
	SortKey           string
	SortKeyAlt        string
	Bucket            int
	BucketLabel       string
	BucketAlt         int
	BucketLabelAlt    string
	DisplayNameSource DisplayNameSource
}

// DataRow is one typed value attached to a raw contact. Value holds the
// payload for non-structured kinds (number, address, nickname, company);
// the name part fields apply to KindStructuredName only.
type DataRow struct {
	ID             int64
	RawContactID   int64
	Kind           DataKind
	IsPrimary      bool
	IsSuperPrimary bool
	Value          string

	Prefix         string
	GivenName      string
	MiddleName     string
	FamilyName     string
	Suffix         string
	PhoneticGiven  string
	PhoneticFamily string
}

// primary reports whether a row wins a same-precedence tie-break.
func (r *DataRow) primary() bool {
	return r.IsPrimary || r.IsSuperPrimary
}

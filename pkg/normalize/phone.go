package normalize

import "strings"

// MinMatchLength is the trailing-digit fingerprint length used to bucket
// phone numbers for fuzzy matching (caller-ID cardinality).
const MinMatchLength = 7

// keypadDigit maps a dialpad letter to its digit, or 0 if r is not a letter.
func keypadDigit(r rune) byte {
	switch {
	case r >= 'a' && r <= 'z':
		r -= 'a' - 'A'
	case r >= 'A' && r <= 'Z':
	default:
		return 0
	}
	switch {
	case r <= 'C':
		return '2'
	case r <= 'F':
		return '3'
	case r <= 'I':
		return '4'
	case r <= 'L':
		return '5'
	case r <= 'O':
		return '6'
	case r <= 'S':
		return '7'
	case r <= 'V':
		return '8'
	default:
		return '9'
	}
}

// Phone canonicalizes a raw phone number: dialpad letters become digits,
// separators are dropped, a single leading "+" survives. Returns "" when
// nothing dialable remains; callers must not index such rows.
func Phone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteByte(byte(r))
		case r == '+' && b.Len() == 0:
			b.WriteByte('+')
		default:
			if d := keypadDigit(r); d != 0 {
				b.WriteByte(d)
			}
		}
	}
	s := b.String()
	if s == "+" {
		return ""
	}
	return s
}

// MinMatch returns the last MinMatchLength digits of a normalized number,
// the coarse bucket key for fuzzy lookup. Shorter numbers return all their
// digits; "" means the number is unindexable.
func MinMatch(normalized string) string {
	d := Digits(normalized)
	if len(d) > MinMatchLength {
		return d[len(d)-MinMatchLength:]
	}
	return d
}

// Digits strips a normalized number down to its digit characters.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// countryCallingCodes covers the countries the store is deployed in.
// Numbers from unlisted countries simply get no E.164 index twin.
var countryCallingCodes = map[string]string{
	"US": "1", "CA": "1",
	"GB": "44", "FR": "33", "DE": "49", "ES": "34", "IT": "39",
	"NL": "31", "BE": "32", "CH": "41", "AT": "43", "SE": "46",
	"NO": "47", "DK": "45", "PT": "351", "IE": "353", "PL": "48",
	"JP": "81", "KR": "82", "CN": "86", "IN": "91", "SG": "65",
	"AU": "61", "NZ": "64", "BR": "55", "MX": "52", "AR": "54",
	"ZA": "27",
}

// E164 renders a normalized number in international form for the given
// ISO 3166-1 country context. Numbers already carrying "+" pass through;
// unknown countries yield "".
func E164(normalized, countryISO string) string {
	if normalized == "" {
		return ""
	}
	if strings.HasPrefix(normalized, "+") {
		return normalized
	}
	cc, ok := countryCallingCodes[strings.ToUpper(countryISO)]
	if !ok {
		return ""
	}
	return "+" + cc + normalized
}

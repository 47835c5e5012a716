package normalize

import (
	"bytes"
	"encoding/hex"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.Loose)
)

// CollationKey derives a prefix-comparable sort key: the primary-strength
// section of the x/text collation key, hex encoded. Truncating at the first
// level separator keeps the property that the key of a query prefix is a
// byte prefix of the key of any indexed name starting with it.
func CollationKey(s string) string {
	if s == "" {
		return ""
	}
	collatorMu.Lock()
	defer collatorMu.Unlock()

	var buf collate.Buffer
	key := collator.KeyFromString(&buf, s)
	if i := bytes.IndexByte(key, 0x00); i >= 0 {
		key = key[:i]
	}
	return hex.EncodeToString(key)
}

package alerts

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"stash/internal/core"
)

// Fingerprint derives the stable identity of an alert from its type, its
// event data and the calendar day of emission. Including the day (not the
// exact timestamp) lets the same type+payload legitimately re-fire on a
// different day while being suppressed within one.
func Fingerprint(t core.AlertType, data core.AlertData, emittedAt time.Time) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(t))
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(data[k])
	}
	b.WriteByte('|')
	b.WriteString(emittedAt.UTC().Format("2006-01-02"))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

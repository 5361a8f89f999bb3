// Package daily derives the daily challenge mission and records its results.
//
// Every player gets the same level and the same keywords on a given date:
// both come from HMAC-SHA256(salt, YYYY-MM-DD).
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func digest(t time.Time, salt string) []byte {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	return h.Sum(nil)
}

// Level returns the 1-based mission level for the date, in 1..levels.
func Level(t time.Time, salt string, levels int) int {
	if levels <= 0 {
		return 1
	}
	n := binary.BigEndian.Uint64(digest(t, salt)[:8])
	return int(n%uint64(levels)) + 1
}

// Seed returns the keyword sampling seed for the date.
func Seed(t time.Time, salt string) uint64 {
	return binary.BigEndian.Uint64(digest(t, salt)[8:16])
}

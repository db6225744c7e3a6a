package approval

import (
	"strconv"
	"time"

	"rollcall/registry/internal/crypto"
)

// Tenant-scoped identifiers: a time component from the millisecond clock plus
// a short random suffix. Uniqueness is enforced by the store's unique index;
// the caller retries with a fresh suffix on collision.

func StaffID(now time.Time) string {
	return "TCH-" + clockDigits(now, 5) + crypto.RandomDigits(2)
}

func StudentRegNo(now time.Time) string {
	return "STU-" + clockDigits(now, 6) + crypto.RandomDigits(3)
}

func clockDigits(now time.Time, n int) string {
	s := strconv.FormatInt(now.UnixMilli(), 10)
	return s[len(s)-n:]
}

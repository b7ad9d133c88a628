package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Seams for tests.
var (
	timeNow = time.Now

	newUploadSuffix = func() string {
		return uuid.NewString()[:8]
	}
)

// ObjectKey derives the storage key for an upload. Keys look like
//
//	uploads/{ownerID}/{name}-{MMDDHHmm}-{suffix}
//	uploads/{name}-{MMDDHHmm}-{suffix}
//
// The minute-resolution stamp keeps keys human-readable; the random suffix
// makes two uploads of the same name within the same minute land on
// distinct keys.
func ObjectKey(originalName, ownerID string) string {
	d := timeNow()
	stamp := fmt.Sprintf("%02d%02d%02d%02d", int(d.Month()), d.Day(), d.Hour(), d.Minute())
	name := fmt.Sprintf("%s-%s-%s", originalName, stamp, newUploadSuffix())
	if ownerID != "" {
		return fmt.Sprintf("uploads/%s/%s", ownerID, name)
	}
	return fmt.Sprintf("uploads/%s", name)
}

// ownerPrefix is the listing prefix that scopes keys to one owner.
func ownerPrefix(ownerID string) string {
	return fmt.Sprintf("uploads/%s/", ownerID)
}

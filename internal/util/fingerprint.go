package util

import (
	"encoding/hex"
	"fmt"

	"github.com/minio/highwayhash"
)

var fingerprintKey = make([]byte, 32)

// Fingerprint computes a stable hash identifying a warning across runs:
// same detector, file, span and context yield the same value.
func Fingerprint(detectorID, file string, line, endLine int, context string) string {
	h, _ := highwayhash.New(fingerprintKey)
	fmt.Fprintf(h, "%s|%s|%d|%d|%s", detectorID, file, line, endLine, context)
	return hex.EncodeToString(h.Sum(nil))
}

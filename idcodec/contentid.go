package idcodec

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentIDPrefix is prepended to every derived content identifier.
const ContentIDPrefix = "cid_"

// SHA256Hex returns the lowercase hex SHA-256 digest of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ContentID derives the deterministic identifier for v: "cid_" followed
// by the hex SHA-256 digest of its canonical encoding.
func ContentID(v any) (string, error) {
	canon, err := CanonicalBytes(v)
	if err != nil {
		return "", err
	}
	return ContentIDPrefix + SHA256Hex(canon), nil
}

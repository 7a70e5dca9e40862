package merkle

import (
	"encoding/hex"
	"errors"
)

// ErrIndexOutOfRange is returned by GenerateProof for an invalid leaf index.
var ErrIndexOutOfRange = errors.New("merkle: index out of range")

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

// mustDecode decodes a hex string produced by this package; any value
// reaching here was produced by hexEncode above, so a decode failure
// indicates a corrupted Proof rather than a recoverable input error.
func mustDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

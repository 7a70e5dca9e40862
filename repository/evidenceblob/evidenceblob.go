// Package evidenceblob stores raw evidence payloads (attestation.Manager
// writes each attestation's canonical evidence map here at Create and
// reads it back at Verify) addressed by IPFS CIDv1, distinct from the ledger's own "cid_"-prefixed ContentIds
// (§3 notes the two schemes serve different purposes).
//
// Adapted from the teacher's storage.CAS interface and storage/localfs
// backend: same Put/Get/Has contract and immutability discipline, minus
// the gRPC/replicating/multi-backend machinery the ledger has no use for.
package evidenceblob

import (
	"errors"

	"github.com/ipfs/go-cid"
)

var (
	ErrNotFound    = errors.New("evidenceblob: not found")
	ErrInvalidCID  = errors.New("evidenceblob: invalid cid")
	ErrCIDMismatch = errors.New("evidenceblob: cid mismatch")
	ErrImmutable   = errors.New("evidenceblob: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Store is a minimal content-addressable blob store for evidence
// attachments.
//
// Contract: Put is idempotent; stored objects are immutable; CIDs are
// derived from the bytes written; Get returns ErrNotFound for an absent
// CID.
type Store interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

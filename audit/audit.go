// Package audit implements the append-only, hash-chained audit log (C4).
//
// Grounded on other_examples' Mindburn-Labs/helm guardian.AuditLog:
// PreviousHash/Hash chained entries linking each record to its
// predecessor, an injectable Clock (real clock in production, fixed
// clock in tests), and a VerifyChain pass that recomputes every entry's
// hash and link. Canonicalization uses this module's own idcodec package
// rather than guardian's canonicalize.JCS helper, since both serve the
// identical purpose (a stable byte representation to hash) and pulling
// in a second JSON-canonicalization dependency alongside idcodec would
// be pure duplication.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/crasofuentes-hub/irrl/idcodec"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

// Log is the append-only audit trail. Writes are serialized behind a
// single mutex, following the teacher's single-writer posture for the
// KeyStore's filesystem writes.
type Log struct {
	mu      sync.Mutex
	store   repository.AuditEventStore
	clock   Clock
	enabled bool
}

// Option configures a Log at construction.
type Option func(*Log)

// WithClock overrides the default wall clock.
func WithClock(c Clock) Option {
	return func(l *Log) { l.clock = c }
}

// Disabled turns Append into a no-op, matching ENABLE_AUDIT_LOG=false
// (§6.2): operations proceed without a persisted audit trail.
func Disabled() Option {
	return func(l *Log) { l.enabled = false }
}

// New constructs a Log backed by store. Enabled by default.
func New(store repository.AuditEventStore, opts ...Option) *Log {
	l := &Log{store: store, clock: wallClock{}, enabled: true}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records a new event, chaining it to the current head of the
// log. A disabled Log still returns a well-formed event — stamped, with
// no real chain — with previousHash = hash = "disabled" and
// persists nothing.
func (l *Log) Append(eventType, actor string, entityIDs []string, payload map[string]any) (model.AuditEvent, error) {
	if !l.enabled {
		sort.Strings(entityIDs)
		return model.AuditEvent{
			ID:           "evt_" + uuid.NewString(),
			Type:         eventType,
			Actor:        actor,
			EntityIDs:    entityIDs,
			Payload:      payload,
			PreviousHash: "disabled",
			Hash:         "disabled",
			Timestamp:    l.clock.Now(),
		}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sort.Strings(entityIDs)

	prevHash := "genesis"
	if last, ok, err := l.store.Last(); err != nil {
		return model.AuditEvent{}, fmt.Errorf("audit: read chain head: %w", err)
	} else if ok {
		prevHash = last.Hash
	}

	event := model.AuditEvent{
		ID:           "evt_" + uuid.NewString(),
		Type:         eventType,
		Actor:        actor,
		EntityIDs:    entityIDs,
		Payload:      payload,
		PreviousHash: prevHash,
		Timestamp:    l.clock.Now(),
	}

	hash, err := computeHash(event)
	if err != nil {
		return model.AuditEvent{}, fmt.Errorf("audit: hash entry: %w", err)
	}
	event.Hash = hash

	if err := l.store.Append(event); err != nil {
		return model.AuditEvent{}, fmt.Errorf("audit: persist entry: %w", err)
	}
	return event, nil
}

// VerifyChain recomputes every entry's hash and link and reports the
// first integrity failure found, if any.
func (l *Log) VerifyChain() (bool, error) {
	events, err := l.store.List()
	if err != nil {
		return false, fmt.Errorf("audit: list entries: %w", err)
	}

	for i, event := range events {
		if i == 0 {
			if event.PreviousHash != "genesis" {
				return false, fmt.Errorf("audit: genesis entry at index 0 must have previousHash %q", "genesis")
			}
		} else if event.PreviousHash != events[i-1].Hash {
			return false, fmt.Errorf("audit: chain broken at index %d: previousHash mismatch", i)
		}

		want, err := computeHash(event)
		if err != nil {
			return false, fmt.Errorf("audit: recompute hash at index %d: %w", i, err)
		}
		if want != event.Hash {
			return false, fmt.Errorf("audit: integrity failure at index %d: computed %s, stored %s", i, want, event.Hash)
		}
	}
	return true, nil
}

// computeHash hashes event per §3's normative preimage: {type, actor,
// entityIds, payload, timestamp, previousHash}. ID and Hash itself are
// excluded.
func computeHash(event model.AuditEvent) (string, error) {
	data := map[string]any{
		"type":         event.Type,
		"actor":        event.Actor,
		"entityIds":    event.EntityIDs,
		"payload":      event.Payload,
		"previousHash": event.PreviousHash,
		"timestamp":    event.Timestamp,
	}
	canonical, err := idcodec.CanonicalBytes(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

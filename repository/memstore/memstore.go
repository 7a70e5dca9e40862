// Package memstore is the in-process reference implementation of
// repository.Repository, grounded on the teacher's storage.CAS
// (map-backed, mutex-guarded) and the single-writer-mutex discipline used
// throughout the corpus for shared mutable state (casregistry, the audit
// log).
package memstore

import (
	"sync"

	"github.com/crasofuentes-hub/irrl/repository"
)

// Store is an in-memory Repository. The zero value is not usable; use
// New.
type Store struct {
	mu sync.Mutex
	db database
}

// New constructs an empty Store.
func New() *Store {
	return &Store{db: newDatabase()}
}

// Realms returns the realm sub-store, each call individually locked.
func (s *Store) Realms() repository.RealmStore { return realmStore{s, true} }

// Attestations returns the attestation sub-store, each call individually
// locked.
func (s *Store) Attestations() repository.AttestationStore { return attestationStore{s, true} }

// VerificationRuns returns the verification run sub-store, each call
// individually locked.
func (s *Store) VerificationRuns() repository.VerificationRunStore { return runStore{s, true} }

// Evaluations returns the evaluation sub-store, each call individually
// locked.
func (s *Store) Evaluations() repository.EvaluationStore { return evaluationStore{s, true} }

// ReputationCache returns the reputation cache sub-store, each call
// individually locked.
func (s *Store) ReputationCache() repository.ReputationCacheStore { return reputationStore{s, true} }

// Proofs returns the proof sub-store, each call individually locked.
func (s *Store) Proofs() repository.ProofStore { return proofStore{s, true} }

// AuditEvents returns the audit event sub-store, each call individually
// locked.
func (s *Store) AuditEvents() repository.AuditEventStore { return auditStore{s, true} }

// WithTx holds the store's single writer lock for the duration of fn,
// handing fn a Repository view whose sub-stores touch the same database
// directly without re-acquiring the lock. On a non-nil return (or a
// panic, which keeps propagating after the deferred restore) the mutations
// made so far are discarded by restoring a pre-call snapshot.
func (s *Store) WithTx(fn func(tx repository.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.db.clone()
	committed := false
	defer func() {
		if !committed {
			s.db = snapshot
		}
	}()

	if err := fn(&txStore{s}); err != nil {
		return err
	}
	committed = true
	return nil
}

// txStore is the Repository view handed to WithTx's callback.
type txStore struct {
	s *Store
}

func (t *txStore) Realms() repository.RealmStore                     { return realmStore{t.s, false} }
func (t *txStore) Attestations() repository.AttestationStore         { return attestationStore{t.s, false} }
func (t *txStore) VerificationRuns() repository.VerificationRunStore { return runStore{t.s, false} }
func (t *txStore) Evaluations() repository.EvaluationStore           { return evaluationStore{t.s, false} }
func (t *txStore) ReputationCache() repository.ReputationCacheStore {
	return reputationStore{t.s, false}
}
func (t *txStore) Proofs() repository.ProofStore           { return proofStore{t.s, false} }
func (t *txStore) AuditEvents() repository.AuditEventStore { return auditStore{t.s, false} }
func (t *txStore) WithTx(fn func(tx repository.Repository) error) error {
	return fn(t)
}

// withLock runs fn under s.mu iff locked is true; used by every
// sub-store method so the same logic serves both the top-level Store
// (locked) and the in-transaction view (already locked by WithTx).
func withLock[T any](s *Store, locked bool, fn func() (T, error)) (T, error) {
	if locked {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

func withLockErr(s *Store, locked bool, fn func() error) error {
	if locked {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

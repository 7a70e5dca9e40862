// Package repository is the storage contract (C0): typed collections over
// the ledger's persistent record types, with a transactional wrapper for
// multi-step writes that must not be observed partially applied.
//
// Grounded directly on the teacher's storage.CAS (Put/Get/Has plus
// ErrNotFound/ErrImmutable sentinel errors) generalized from
// content-addressed blobs to typed collections, and on
// storage.MultiCAS/ReplicatingCAS's "deterministic ordered fallback,
// write-to-all-and-compare" discipline generalized into WithTx's
// all-or-nothing commit. A relational/SQL adapter is explicitly out of
// scope; repository/memstore is the only implementation shipped.
package repository

import (
	"errors"

	"github.com/crasofuentes-hub/irrl/model"
)

var (
	ErrNotFound      = errors.New("repository: not found")
	ErrAlreadyExists = errors.New("repository: already exists")
)

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

// RealmStore persists Realm records.
type RealmStore interface {
	Create(r model.Realm) error
	Get(id string) (model.Realm, error)
	GetByPath(path string) (model.Realm, error)
	Update(r model.Realm) error
	Children(parentID string) ([]model.Realm, error)
	List() ([]model.Realm, error)
	Delete(id string) error
}

// AttestationStore persists Attestation records.
type AttestationStore interface {
	Create(a model.Attestation) error
	Get(id string) (model.Attestation, error)
	Update(a model.Attestation) error
	ListBySubject(subject string) ([]model.Attestation, error)
	ListByRealm(realmID string) ([]model.Attestation, error)
	ListActive() ([]model.Attestation, error)
	ListAll() ([]model.Attestation, error)
}

// VerificationRunStore persists VerificationRun records.
type VerificationRunStore interface {
	Create(v model.VerificationRun) error
	Get(id string) (model.VerificationRun, error)
	ListByAttestation(attestationID string) ([]model.VerificationRun, error)
}

// EvaluationStore persists Evaluation records, keyed uniquely by
// (from, to, realmId, domain): Upsert replaces any existing row for that
// key in place.
type EvaluationStore interface {
	Upsert(e model.Evaluation) (model.Evaluation, error)
	Get(id string) (model.Evaluation, error)
	Find(from, to, realmID, domain string) (model.Evaluation, bool, error)
	ListIncoming(to, realmID, domain string) ([]model.Evaluation, error)
	ListOutgoing(from, realmID, domain string) ([]model.Evaluation, error)
	ListByDomain(domain string) ([]model.Evaluation, error)
}

// ReputationCacheStore persists memoized ReputationCache rows.
type ReputationCacheStore interface {
	Get(subject, realmID, domain string) (model.ReputationCache, bool, error)
	Put(c model.ReputationCache) error
	Invalidate(subject, realmID, domain string) error
	DeleteByRealm(realmID string) error
}

// ProofStore persists issued ReputationProof records (already signed),
// addressable both by their own id (for GET /proofs/{id} and evidence
// inclusion lookups) and by the (subject, realmId, domain) triple they
// were issued for (for "most recent proof" lookups).
type ProofStore interface {
	Create(id string, p model.ReputationProof) error
	Get(id string) (model.ReputationProof, bool, error)
	FindLatest(subject, realmID, domain string) (id string, p model.ReputationProof, found bool, err error)
	List() ([]ProofRecord, error)
	DeleteByRealm(realmID string) error
}

// ProofRecord pairs a persisted proof with its id.
type ProofRecord struct {
	ID    string
	Proof model.ReputationProof
}

// AuditEventStore persists the append-only AuditEvent chain.
type AuditEventStore interface {
	Append(e model.AuditEvent) error
	Last() (model.AuditEvent, bool, error)
	List() ([]model.AuditEvent, error)
}

// Repository is the aggregate storage facade the ledger depends on.
type Repository interface {
	Realms() RealmStore
	Attestations() AttestationStore
	VerificationRuns() VerificationRunStore
	Evaluations() EvaluationStore
	ReputationCache() ReputationCacheStore
	Proofs() ProofStore
	AuditEvents() AuditEventStore

	// WithTx runs fn against a repository view whose writes commit
	// atomically on a nil return and roll back entirely otherwise,
	// matching the Attestation Manager's verify-then-write requirement
	// (§4.6: evidence validation and the resulting status write must
	// appear atomic to concurrent readers).
	WithTx(fn func(tx Repository) error) error
}

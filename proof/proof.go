// Package proof implements the Proof Service (C10): portable, signed
// reputation snapshots with a Merkle commitment to their supporting
// evidence, independently re-verifiable without a round trip to the
// ledger that issued them.
//
// Grounded on the attestation package's content-id-then-sign pattern
// (idcodec.ContentID for the identifier, keys.SignObject for the
// signature) and on the already-built merkle package for the evidence
// commitment and its inclusion proofs.
package proof

import (
	"fmt"
	"sort"
	"time"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/audit"
	"github.com/crasofuentes-hub/irrl/idcodec"
	"github.com/crasofuentes-hub/irrl/keys"
	"github.com/crasofuentes-hub/irrl/merkle"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

// DefaultValidForDays is used when a caller doesn't specify a validity
// window.
const DefaultValidForDays = 7

// Service is the Proof Service.
type Service struct {
	repo       repository.Repository
	audit      *audit.Log
	signingKey string // PEM-encoded Ed25519 private key of the issuing instance
	publicKey  string // PEM-encoded Ed25519 public key, embedded in every proof
	issuer     string // this instance's issuer identity, checked by Verify
	now        func() time.Time
}

// New constructs a Service. signingKeyPEM/publicKeyPEM are the
// instance's Ed25519 key pair; issuer is the identity stamped into every
// proof this instance generates.
func New(repo repository.Repository, auditLog *audit.Log, signingKeyPEM, publicKeyPEM, issuer string) *Service {
	return &Service{repo: repo, audit: auditLog, signingKey: signingKeyPEM, publicKey: publicKeyPEM, issuer: issuer, now: time.Now}
}

// GenerateInput identifies the reputation to attest to and how long the
// resulting proof should remain valid.
type GenerateInput struct {
	Subject      string
	RealmID      string
	Domain       string
	ValidForDays int
}

// GenerateResult is the Proof Service's response to a generate request.
type GenerateResult struct {
	ProofID       string
	Proof         model.ReputationProof
	EvidenceCount int
}

// Generate requires an existing cached reputation for (subject, realmId,
// domain); collects the ordered evidence backing it; commits to that
// evidence with a Merkle root; and returns a signed, persisted proof.
func (s *Service) Generate(in GenerateInput) (GenerateResult, error) {
	cached, found, err := s.repo.ReputationCache().Get(in.Subject, in.RealmID, in.Domain)
	if err != nil {
		return GenerateResult{}, apierr.Internal(err)
	}
	if !found {
		return GenerateResult{}, apierr.New(apierr.CodeNotFound, fmt.Sprintf("no cached reputation for subject %q in realm %q domain %q", in.Subject, in.RealmID, in.Domain))
	}

	attestationIDs, evaluationIDs, err := s.evidenceIDs(in.Subject, in.RealmID, in.Domain)
	if err != nil {
		return GenerateResult{}, err
	}

	leaves := make([][]byte, 0, len(attestationIDs)+len(evaluationIDs))
	for _, id := range attestationIDs {
		leaves = append(leaves, []byte(id))
	}
	for _, id := range evaluationIDs {
		leaves = append(leaves, []byte(id))
	}
	root := merkle.Root(leaves)

	validForDays := in.ValidForDays
	if validForDays <= 0 {
		validForDays = DefaultValidForDays
	}

	now := s.now().UTC()
	p := model.ReputationProof{
		Version:            model.ReputationProofVersion,
		Subject:            in.Subject,
		RealmID:            in.RealmID,
		Domain:             in.Domain,
		Reputation:         cached,
		Issuer:             s.issuer,
		IssuedAt:           now,
		ValidUntil:         now.AddDate(0, 0, validForDays),
		EvidenceMerkleRoot: root,
	}

	sig, err := keys.SignObject(signableContent(p), s.signingKey)
	if err != nil {
		return GenerateResult{}, apierr.Internal(err)
	}
	p.Signature = sig

	id, err := idcodec.ContentID(signableContent(p))
	if err != nil {
		return GenerateResult{}, apierr.Internal(err)
	}

	if err := s.repo.Proofs().Create(id, p); err != nil {
		return GenerateResult{}, apierr.Internal(err)
	}

	if _, err := s.audit.Append("proof.generated", in.Subject, []string{id}, map[string]any{
		"realmId": in.RealmID, "domain": in.Domain, "evidenceCount": len(leaves),
	}); err != nil {
		return GenerateResult{}, apierr.Internal(err)
	}

	return GenerateResult{ProofID: id, Proof: p, EvidenceCount: len(leaves)}, nil
}

// evidenceIDs returns the deterministically (id-ascending) ordered
// verified-attestation and evaluation ids backing subject's reputation
// in (realmId, domain).
func (s *Service) evidenceIDs(subject, realmID, domain string) (attestationIDs, evaluationIDs []string, err error) {
	attestations, err := s.repo.Attestations().ListBySubject(subject)
	if err != nil {
		return nil, nil, apierr.Internal(err)
	}
	for _, a := range attestations {
		if a.RealmID == realmID && a.Status == model.AttestationVerified {
			attestationIDs = append(attestationIDs, a.ID)
		}
	}
	sort.Strings(attestationIDs)

	evaluations, err := s.repo.Evaluations().ListIncoming(subject, realmID, domain)
	if err != nil {
		return nil, nil, apierr.Internal(err)
	}
	for _, e := range evaluations {
		evaluationIDs = append(evaluationIDs, e.ID)
	}
	sort.Strings(evaluationIDs)

	return attestationIDs, evaluationIDs, nil
}

// signableContent returns the subset of a proof's fields that the
// signature covers — everything but the signature itself.
func signableContent(p model.ReputationProof) model.ReputationProof {
	p.Signature = ""
	return p
}

// VerifyResult reports the Proof Service's three independent checks so
// callers can distinguish tampering from mere expiry.
type VerifyResult struct {
	SignatureValid bool
	NotExpired     bool
	IssuerKnown    bool
}

// Valid reports whether every independent check passed.
func (r VerifyResult) Valid() bool {
	return r.SignatureValid && r.NotExpired && r.IssuerKnown
}

// Verify checks a proof's signature against publicKeyPEM, its validity
// window against now, and its issuer against knownIssuer. Each check is
// reported independently: a tampered proof and an expired-but-genuine
// proof are distinguishable to the caller.
func (s *Service) Verify(p model.ReputationProof, publicKeyPEM, knownIssuer string) VerifyResult {
	return VerifyResult{
		SignatureValid: keys.VerifyObject(signableContent(p), p.Signature, publicKeyPEM),
		NotExpired:     p.ValidUntil.After(s.now().UTC()),
		IssuerKnown:    p.Issuer == knownIssuer,
	}
}

// VerifyWithOwnKey runs Verify against this instance's own public key and
// issuer identity, the common case of checking a proof that claims to
// have been issued by the instance serving the request.
func (s *Service) VerifyWithOwnKey(p model.ReputationProof) VerifyResult {
	return s.Verify(p, s.publicKey, s.issuer)
}

// Get returns a previously issued proof by id.
func (s *Service) Get(proofID string) (model.ReputationProof, error) {
	p, found, err := s.repo.Proofs().Get(proofID)
	if err != nil {
		return model.ReputationProof{}, apierr.Internal(err)
	}
	if !found {
		return model.ReputationProof{}, apierr.New(apierr.CodeNotFound, fmt.Sprintf("proof %q not found", proofID))
	}
	return p, nil
}

// List returns every proof this instance has issued.
func (s *Service) List() ([]repository.ProofRecord, error) {
	records, err := s.repo.Proofs().List()
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return records, nil
}

// EvidenceProof reconstructs the ordered evidence leaf list a proof
// committed to and emits a Merkle inclusion proof for evidenceID, which
// must be one of the attestation or evaluation ids that backed it.
func (s *Service) EvidenceProof(proofID, evidenceID string) (merkle.Proof, error) {
	p, err := s.Get(proofID)
	if err != nil {
		return merkle.Proof{}, err
	}

	attestationIDs, evaluationIDs, err := s.evidenceIDs(p.Subject, p.RealmID, p.Domain)
	if err != nil {
		return merkle.Proof{}, err
	}
	ordered := append(append([]string{}, attestationIDs...), evaluationIDs...)

	index := -1
	for i, id := range ordered {
		if id == evidenceID {
			index = i
			break
		}
	}
	if index < 0 {
		return merkle.Proof{}, apierr.New(apierr.CodeNotFound, fmt.Sprintf("evidence %q not part of proof %q", evidenceID, proofID))
	}

	leaves := make([][]byte, len(ordered))
	for i, id := range ordered {
		leaves[i] = []byte(id)
	}
	mp, err := merkle.GenerateProof(leaves, index)
	if err != nil {
		return merkle.Proof{}, apierr.Internal(err)
	}
	return mp, nil
}

// VerifyEvidence reports whether merkleProof is internally consistent
// and commits to expectedRoot.
func VerifyEvidence(merkleProof merkle.Proof, expectedRoot string) bool {
	return merkle.VerifyProof(merkleProof) && merkleProof.Root == expectedRoot
}

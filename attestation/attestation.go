// Package attestation implements the Attestation Manager (C6): the
// pending/verified/failed/revoked/expired state machine over signed
// claims and their machine-verifiable evidence.
//
// Grounded on the teacher's resolver.Resolution verdict/exclusion
// bookkeeping — explicit, durable per-item status and reasons rather
// than an opaque boolean — generalized from CATF's Trusted/Excluded/
// Invalid/Revoked verdict enum to this package's AttestationStatus, and
// on catf.Error{Kind, RuleID} for resolver-dispatch failure reporting.
package attestation

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ipfs/go-cid"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/audit"
	"github.com/crasofuentes-hub/irrl/idcodec"
	"github.com/crasofuentes-hub/irrl/keys"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
	"github.com/crasofuentes-hub/irrl/repository/evidenceblob"
	"github.com/crasofuentes-hub/irrl/resolverreg"
)

// Manager is the Attestation Manager service.
type Manager struct {
	repo       repository.Repository
	resolvers  *resolverreg.Registry
	audit      *audit.Log
	evidence   evidenceblob.Store
	signingKey string // PEM-encoded Ed25519 private key of the issuing instance
	now        func() time.Time
}

// New constructs a Manager. signingKeyPEM is the instance's private key
// used to sign every attestation it creates. evidenceBlobs gives every
// attestation's evidence payload a content-addressed home distinct from
// its ContentId.
func New(repo repository.Repository, resolvers *resolverreg.Registry, auditLog *audit.Log, evidenceBlobs evidenceblob.Store, signingKeyPEM string) *Manager {
	return &Manager{repo: repo, resolvers: resolvers, audit: auditLog, evidence: evidenceBlobs, signingKey: signingKeyPEM, now: time.Now}
}

// CreateInput is the caller-supplied content of a new attestation.
type CreateInput struct {
	RealmID    string
	Attester   string
	Subject    string
	Claim      string
	ResolverID string
	Evidence   map[string]any
	References []string
	ExpiresAt  *time.Time
}

// Create validates realmId, resolverId, and evidence; computes the
// attestation's ContentId; signs it; and persists it as pending.
func (m *Manager) Create(in CreateInput) (model.Attestation, error) {
	if _, err := m.repo.Realms().Get(in.RealmID); err != nil {
		if repository.IsNotFound(err) {
			return model.Attestation{}, apierr.New(apierr.CodeInvalidRealm, fmt.Sprintf("realm %q not found", in.RealmID))
		}
		return model.Attestation{}, apierr.Internal(err)
	}

	r, ok := m.resolvers.Lookup(in.ResolverID)
	if !ok {
		return model.Attestation{}, apierr.New(apierr.CodeInvalidResolver, fmt.Sprintf("resolver %q not registered", in.ResolverID))
	}

	if valid, errs := r.ValidateEvidence(in.Evidence); !valid {
		return model.Attestation{}, apierr.Newf(apierr.CodeInvalidEvidence, "evidence failed schema validation", errs)
	}

	now := m.now().UTC()
	content := model.AttestationContent{
		RealmID:    in.RealmID,
		Subject:    in.Subject,
		Claim:      in.Claim,
		ResolverID: in.ResolverID,
		Evidence:   in.Evidence,
		References: in.References,
		Ts:         now,
	}

	id, err := idcodec.ContentID(content)
	if err != nil {
		return model.Attestation{}, apierr.Internal(err)
	}
	signature, err := keys.SignObject(content, m.signingKey)
	if err != nil {
		return model.Attestation{}, apierr.Internal(err)
	}

	evidenceCID, err := m.putEvidence(in.Evidence)
	if err != nil {
		return model.Attestation{}, apierr.Internal(err)
	}

	at := model.Attestation{
		ID:          id,
		RealmID:     in.RealmID,
		Attester:    in.Attester,
		Subject:     in.Subject,
		Claim:       in.Claim,
		ResolverID:  in.ResolverID,
		Evidence:    in.Evidence,
		EvidenceCID: evidenceCID,
		References:  in.References,
		Signature:   signature,
		Status:      model.AttestationPending,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.repo.Attestations().Create(at); err != nil {
		if repository.IsAlreadyExists(err) {
			return model.Attestation{}, apierr.New(apierr.CodeAlreadyExists, fmt.Sprintf("attestation %q already exists", id))
		}
		return model.Attestation{}, apierr.Internal(err)
	}

	if _, err := m.audit.Append("attestation.created", in.Attester, []string{id}, map[string]any{
		"realmId": in.RealmID, "resolverId": in.ResolverID, "subject": in.Subject,
	}); err != nil {
		return model.Attestation{}, apierr.Internal(err)
	}
	return at, nil
}

// Verify dispatches to the attestation's resolver unless it is already
// verified and force is false, in which case the last recorded run is
// returned instead. Revoked and expired attestations are terminal and
// are rejected without dispatch.
func (m *Manager) Verify(attestationID string, force bool, triggeredBy string) (model.Attestation, model.VerificationRun, error) {
	at, err := m.repo.Attestations().Get(attestationID)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.Attestation{}, model.VerificationRun{}, apierr.New(apierr.CodeNotFound, fmt.Sprintf("attestation %q not found", attestationID))
		}
		return model.Attestation{}, model.VerificationRun{}, apierr.Internal(err)
	}
	if at.Status == model.AttestationRevoked || at.Status == model.AttestationExpired {
		return model.Attestation{}, model.VerificationRun{}, apierr.New(apierr.CodeValidation, fmt.Sprintf("attestation %q is %s and cannot be verified", attestationID, at.Status))
	}

	if at.Status == model.AttestationVerified && !force {
		runs, err := m.repo.VerificationRuns().ListByAttestation(attestationID)
		if err != nil {
			return model.Attestation{}, model.VerificationRun{}, apierr.Internal(err)
		}
		if len(runs) > 0 {
			return at, runs[len(runs)-1], nil
		}
	}

	r, ok := m.resolvers.Lookup(at.ResolverID)
	if !ok {
		return model.Attestation{}, model.VerificationRun{}, apierr.New(apierr.CodeResolverNotFound, fmt.Sprintf("resolver %q not registered", at.ResolverID))
	}

	if err := m.checkEvidenceIntegrity(at); err != nil {
		return model.Attestation{}, model.VerificationRun{}, err
	}

	start := m.now()
	result, verr := r.Verify(at.Evidence)
	duration := m.now().Sub(start)

	runStatus := result.Status
	runError := result.Error
	if verr != nil {
		runStatus = model.VerificationError
		runError = verr.Error()
	}

	outputHash, err := hashOutput(result.Output)
	if err != nil {
		return model.Attestation{}, model.VerificationRun{}, apierr.Internal(err)
	}

	run := model.VerificationRun{
		ID:              "run_" + uuid.NewString(),
		AttestationID:   attestationID,
		ResolverID:      at.ResolverID,
		ResolverVersion: r.Metadata().Version,
		Status:          runStatus,
		Output:          result.Output,
		OutputHash:      outputHash,
		DurationMs:      duration.Milliseconds(),
		TriggeredBy:     triggeredBy,
		Error:           runError,
		CreatedAt:       m.now().UTC(),
	}

	newStatus := mapRunStatus(runStatus, at.Status)
	now := m.now().UTC()
	at.Status = newStatus
	at.VerificationCount++
	at.LastVerifiedAt = &now
	at.UpdatedAt = now

	txErr := m.repo.WithTx(func(tx repository.Repository) error {
		if err := tx.VerificationRuns().Create(run); err != nil {
			return err
		}
		return tx.Attestations().Update(at)
	})
	if txErr != nil {
		return model.Attestation{}, model.VerificationRun{}, apierr.Internal(txErr)
	}

	if _, err := m.audit.Append("attestation.verified", triggeredBy, []string{attestationID}, map[string]any{
		"status": string(at.Status), "runId": run.ID,
	}); err != nil {
		return model.Attestation{}, model.VerificationRun{}, apierr.Internal(err)
	}
	return at, run, nil
}

// mapRunStatus maps a VerificationRun's outcome onto the attestation's
// next status: verified→verified, failed→failed, error→pending (the
// attestation stays pending rather than being marked failed on a
// resolver-side error, since the claim itself was never actually judged).
func mapRunStatus(runStatus model.VerificationStatus, current model.AttestationStatus) model.AttestationStatus {
	switch runStatus {
	case model.VerificationVerified:
		return model.AttestationVerified
	case model.VerificationFailed:
		return model.AttestationFailed
	default:
		return model.AttestationPending
	}
}

// Revoke transitions an attestation to revoked from any state other than
// revoked (expired included); revoking an already-revoked attestation is
// rejected.
func (m *Manager) Revoke(attestationID, actor string) (model.Attestation, error) {
	at, err := m.repo.Attestations().Get(attestationID)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.Attestation{}, apierr.New(apierr.CodeNotFound, fmt.Sprintf("attestation %q not found", attestationID))
		}
		return model.Attestation{}, apierr.Internal(err)
	}
	if at.Status == model.AttestationRevoked {
		return model.Attestation{}, apierr.New(apierr.CodeAlreadyRevoked, fmt.Sprintf("attestation %q already revoked", attestationID))
	}

	at.Status = model.AttestationRevoked
	at.UpdatedAt = m.now().UTC()
	if err := m.repo.Attestations().Update(at); err != nil {
		return model.Attestation{}, apierr.Internal(err)
	}

	if _, err := m.audit.Append("attestation.revoked", actor, []string{attestationID}, nil); err != nil {
		return model.Attestation{}, apierr.Internal(err)
	}
	return at, nil
}

// Get resolves an attestation by id.
func (m *Manager) Get(attestationID string) (model.Attestation, error) {
	at, err := m.repo.Attestations().Get(attestationID)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.Attestation{}, apierr.New(apierr.CodeNotFound, fmt.Sprintf("attestation %q not found", attestationID))
		}
		return model.Attestation{}, apierr.Internal(err)
	}
	return at, nil
}

// List returns every attestation, optionally filtered to a subject
// and/or realm.
func (m *Manager) List(subject, realmID string) ([]model.Attestation, error) {
	all, err := m.repo.Attestations().ListAll()
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if subject == "" && realmID == "" {
		return all, nil
	}
	out := all[:0:0]
	for _, a := range all {
		if subject != "" && a.Subject != subject {
			continue
		}
		if realmID != "" && a.RealmID != realmID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// History returns every VerificationRun recorded against attestationID,
// oldest first.
func (m *Manager) History(attestationID string) ([]model.VerificationRun, error) {
	if _, err := m.Get(attestationID); err != nil {
		return nil, err
	}
	runs, err := m.repo.VerificationRuns().ListByAttestation(attestationID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return runs, nil
}

// ScanExpired transitions every non-terminal attestation whose expiresAt
// has passed into the expired state, returning the count changed.
func (m *Manager) ScanExpired() (int, error) {
	all, err := m.repo.Attestations().ListAll()
	if err != nil {
		return 0, apierr.Internal(err)
	}

	now := m.now().UTC()
	changed := 0
	for _, at := range all {
		if at.ExpiresAt == nil || at.ExpiresAt.After(now) {
			continue
		}
		if at.Status == model.AttestationRevoked || at.Status == model.AttestationExpired {
			continue
		}
		at.Status = model.AttestationExpired
		at.UpdatedAt = now
		if err := m.repo.Attestations().Update(at); err != nil {
			return changed, apierr.Internal(err)
		}
		if _, err := m.audit.Append("attestation.expired", "system", []string{at.ID}, nil); err != nil {
			return changed, apierr.Internal(err)
		}
		changed++
	}
	return changed, nil
}

// putEvidence persists evidence into the content-addressed blob store and
// returns its CID. A nil/empty evidence map still produces a stable CID
// over its canonical encoding, so every attestation carries one.
func (m *Manager) putEvidence(evidence map[string]any) (string, error) {
	canonical, err := idcodec.CanonicalBytes(evidence)
	if err != nil {
		return "", err
	}
	id, err := m.evidence.Put(canonical)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// checkEvidenceIntegrity re-fetches an attestation's evidence from the
// blob store it was written to at Create and confirms it still matches
// the inline copy, catching divergence between the two before dispatch.
func (m *Manager) checkEvidenceIntegrity(at model.Attestation) error {
	if at.EvidenceCID == "" {
		return nil
	}
	id, err := cid.Decode(at.EvidenceCID)
	if err != nil {
		return apierr.Internal(err)
	}
	stored, err := m.evidence.Get(id)
	if err != nil {
		return apierr.Internal(err)
	}
	canonical, err := idcodec.CanonicalBytes(at.Evidence)
	if err != nil {
		return apierr.Internal(err)
	}
	if !bytes.Equal(stored, canonical) {
		return apierr.New(apierr.CodeChainIntegrity, fmt.Sprintf("attestation %q evidence diverges from its content-addressed blob", at.ID))
	}
	return nil
}

func hashOutput(output map[string]any) (string, error) {
	if output == nil {
		return "", nil
	}
	canonical, err := idcodec.CanonicalBytes(output)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

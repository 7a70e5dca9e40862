package proof

import (
	"testing"
	"time"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/audit"
	"github.com/crasofuentes-hub/irrl/keys"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository/memstore"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *memstore.Store, keys.KeyPair) {
	t.Helper()
	repo := memstore.New()
	auditLog := audit.New(repo.AuditEvents())
	kp, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	svc := New(repo, auditLog, kp.PrivateKey, kp.PublicKey, "irrl-test-instance")
	return svc, repo, kp
}

func seedReputation(t *testing.T, repo *memstore.Store) {
	t.Helper()
	require.NoError(t, repo.ReputationCache().Put(model.ReputationCache{
		Subject: "bob", RealmID: "root", Domain: "code",
		Score: 77, Confidence: 0.5, ComputedAt: time.Now(), ValidUntil: time.Now().Add(time.Hour),
	}))
	require.NoError(t, repo.Attestations().Create(model.Attestation{
		ID: "att_1", RealmID: "root", Subject: "bob", Status: model.AttestationVerified, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	require.NoError(t, repo.Attestations().Create(model.Attestation{
		ID: "att_2", RealmID: "root", Subject: "bob", Status: model.AttestationPending, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	_, err := repo.Evaluations().Upsert(model.Evaluation{
		ID: "eval_1", FromEntity: "alice", ToEntity: "bob", RealmID: "root", Domain: "code",
		Score: 80, Weight: 1, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestGenerateRequiresCachedReputation(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Generate(GenerateInput{Subject: "bob", RealmID: "root", Domain: "code"})
	require.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestGenerateProducesSignedProofOverVerifiedEvidenceOnly(t *testing.T) {
	svc, repo, kp := newTestService(t)
	seedReputation(t, repo)

	result, err := svc.Generate(GenerateInput{Subject: "bob", RealmID: "root", Domain: "code"})
	require.NoError(t, err)
	require.NotEmpty(t, result.ProofID)
	require.Equal(t, 2, result.EvidenceCount) // att_1 (verified) + eval_1, att_2 (pending) excluded
	require.NotEmpty(t, result.Proof.Signature)
	require.NotEmpty(t, result.Proof.EvidenceMerkleRoot)

	verdict := svc.Verify(result.Proof, kp.PublicKey, "irrl-test-instance")
	require.True(t, verdict.Valid())
}

func TestVerifyDetectsTamperedSignature(t *testing.T) {
	svc, repo, kp := newTestService(t)
	seedReputation(t, repo)

	result, err := svc.Generate(GenerateInput{Subject: "bob", RealmID: "root", Domain: "code"})
	require.NoError(t, err)

	tampered := result.Proof
	tampered.Reputation.Score = 100

	verdict := svc.Verify(tampered, kp.PublicKey, "irrl-test-instance")
	require.False(t, verdict.SignatureValid)
	require.True(t, verdict.NotExpired)
	require.True(t, verdict.IssuerKnown)
	require.False(t, verdict.Valid())
}

func TestVerifyDetectsExpiry(t *testing.T) {
	svc, repo, kp := newTestService(t)
	seedReputation(t, repo)

	result, err := svc.Generate(GenerateInput{Subject: "bob", RealmID: "root", Domain: "code", ValidForDays: 1})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().AddDate(0, 0, 2) }
	verdict := svc.Verify(result.Proof, kp.PublicKey, "irrl-test-instance")
	require.True(t, verdict.SignatureValid)
	require.False(t, verdict.NotExpired)
	require.False(t, verdict.Valid())
}

func TestVerifyDetectsUnknownIssuer(t *testing.T) {
	svc, repo, kp := newTestService(t)
	seedReputation(t, repo)

	result, err := svc.Generate(GenerateInput{Subject: "bob", RealmID: "root", Domain: "code"})
	require.NoError(t, err)

	verdict := svc.Verify(result.Proof, kp.PublicKey, "some-other-instance")
	require.False(t, verdict.IssuerKnown)
	require.False(t, verdict.Valid())
}

func TestVerifyWithOwnKeyUsesTheInstancesOwnIdentity(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedReputation(t, repo)

	result, err := svc.Generate(GenerateInput{Subject: "bob", RealmID: "root", Domain: "code"})
	require.NoError(t, err)

	require.True(t, svc.VerifyWithOwnKey(result.Proof).Valid())
}

func TestEvidenceInclusionProofRoundTrips(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedReputation(t, repo)

	result, err := svc.Generate(GenerateInput{Subject: "bob", RealmID: "root", Domain: "code"})
	require.NoError(t, err)

	mp, err := svc.EvidenceProof(result.ProofID, "att_1")
	require.NoError(t, err)
	require.True(t, VerifyEvidence(mp, result.Proof.EvidenceMerkleRoot))

	_, err = svc.EvidenceProof(result.ProofID, "nonexistent")
	require.True(t, apierr.Is(err, apierr.CodeNotFound))
}

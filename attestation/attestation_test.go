package attestation

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/audit"
	"github.com/crasofuentes-hub/irrl/idcodec"
	"github.com/crasofuentes-hub/irrl/keys"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository/evidenceblob"
	"github.com/crasofuentes-hub/irrl/repository/memstore"
	"github.com/crasofuentes-hub/irrl/resolverreg"
	"github.com/crasofuentes-hub/irrl/resolvers"
)

func newTestManager(t *testing.T) (*Manager, *memstore.Store) {
	t.Helper()
	repo := memstore.New()
	reg := resolverreg.New()
	require.NoError(t, resolvers.RegisterBuiltins(reg))
	auditLog := audit.New(repo.AuditEvents())
	evidenceBlobs := evidenceblob.NewMemStore()

	kp, err := keys.GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, repo.Realms().Create(model.Realm{ID: "root", Path: "root"}))

	return New(repo, reg, auditLog, evidenceBlobs, kp.PrivateKey), repo
}

func TestCreateAttestationPending(t *testing.T) {
	mgr, _ := newTestManager(t)

	at, err := mgr.Create(CreateInput{
		RealmID:    "root",
		Attester:   "alice",
		Subject:    "bob",
		Claim:      "reviewed",
		ResolverID: "manualreview",
		Evidence:   map[string]any{"reviewer": "alice", "decision": "approve"},
	})
	require.NoError(t, err)
	require.Equal(t, model.AttestationPending, at.Status)
	require.NotEmpty(t, at.ID)
	require.NotEmpty(t, at.Signature)
}

func TestCreateRejectsUnknownRealm(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.Create(CreateInput{
		RealmID: "missing", Attester: "alice", Subject: "bob", Claim: "x",
		ResolverID: "manualreview", Evidence: map[string]any{"reviewer": "alice", "decision": "approve"},
	})
	require.True(t, apierr.Is(err, apierr.CodeInvalidRealm))
}

func TestCreateRejectsUnknownResolver(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.Create(CreateInput{
		RealmID: "root", Attester: "alice", Subject: "bob", Claim: "x",
		ResolverID: "nope", Evidence: map[string]any{},
	})
	require.True(t, apierr.Is(err, apierr.CodeInvalidResolver))
}

func TestCreateRejectsInvalidEvidence(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.Create(CreateInput{
		RealmID: "root", Attester: "alice", Subject: "bob", Claim: "x",
		ResolverID: "manualreview", Evidence: map[string]any{"reviewer": "alice"},
	})
	require.True(t, apierr.Is(err, apierr.CodeInvalidEvidence))
}

func TestVerifyTransitionsToVerified(t *testing.T) {
	mgr, _ := newTestManager(t)
	at, err := mgr.Create(CreateInput{
		RealmID: "root", Attester: "alice", Subject: "bob", Claim: "x",
		ResolverID: "manualreview", Evidence: map[string]any{"reviewer": "alice", "decision": "approve"},
	})
	require.NoError(t, err)

	updated, run, err := mgr.Verify(at.ID, false, "system")
	require.NoError(t, err)
	require.Equal(t, model.AttestationVerified, updated.Status)
	require.Equal(t, model.VerificationVerified, run.Status)
	require.Equal(t, 1, updated.VerificationCount)
}

func TestVerifyWithoutForceReturnsCachedRunWhenAlreadyVerified(t *testing.T) {
	mgr, _ := newTestManager(t)
	at, err := mgr.Create(CreateInput{
		RealmID: "root", Attester: "alice", Subject: "bob", Claim: "x",
		ResolverID: "manualreview", Evidence: map[string]any{"reviewer": "alice", "decision": "approve"},
	})
	require.NoError(t, err)

	_, _, err = mgr.Verify(at.ID, false, "system")
	require.NoError(t, err)

	again, run, err := mgr.Verify(at.ID, false, "system")
	require.NoError(t, err)
	require.Equal(t, 1, again.VerificationCount, "a cached verified result must not re-dispatch")
	require.Equal(t, model.VerificationVerified, run.Status)
}

func TestRevokeThenRevokeAgainFails(t *testing.T) {
	mgr, _ := newTestManager(t)
	at, err := mgr.Create(CreateInput{
		RealmID: "root", Attester: "alice", Subject: "bob", Claim: "x",
		ResolverID: "manualreview", Evidence: map[string]any{"reviewer": "alice", "decision": "approve"},
	})
	require.NoError(t, err)

	revoked, err := mgr.Revoke(at.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, model.AttestationRevoked, revoked.Status)

	_, err = mgr.Revoke(at.ID, "alice")
	require.True(t, apierr.Is(err, apierr.CodeAlreadyRevoked))
}

func TestCreatePersistsEvidenceToBlobStore(t *testing.T) {
	repo := memstore.New()
	reg := resolverreg.New()
	require.NoError(t, resolvers.RegisterBuiltins(reg))
	auditLog := audit.New(repo.AuditEvents())
	evidenceBlobs := evidenceblob.NewMemStore()
	kp, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	require.NoError(t, repo.Realms().Create(model.Realm{ID: "root", Path: "root"}))
	mgr := New(repo, reg, auditLog, evidenceBlobs, kp.PrivateKey)

	at, err := mgr.Create(CreateInput{
		RealmID: "root", Attester: "alice", Subject: "bob", Claim: "x",
		ResolverID: "manualreview", Evidence: map[string]any{"reviewer": "alice", "decision": "approve"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, at.EvidenceCID)

	id, err := cid.Decode(at.EvidenceCID)
	require.NoError(t, err)
	raw, err := evidenceBlobs.Get(id)
	require.NoError(t, err)

	canonical, err := idcodec.CanonicalBytes(at.Evidence)
	require.NoError(t, err)
	require.Equal(t, canonical, raw)
}

func TestVerifyDetectsEvidenceBlobTamper(t *testing.T) {
	repo := memstore.New()
	reg := resolverreg.New()
	require.NoError(t, resolvers.RegisterBuiltins(reg))
	auditLog := audit.New(repo.AuditEvents())
	evidenceBlobs := evidenceblob.NewMemStore()
	kp, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	require.NoError(t, repo.Realms().Create(model.Realm{ID: "root", Path: "root"}))
	mgr := New(repo, reg, auditLog, evidenceBlobs, kp.PrivateKey)

	at, err := mgr.Create(CreateInput{
		RealmID: "root", Attester: "alice", Subject: "bob", Claim: "x",
		ResolverID: "manualreview", Evidence: map[string]any{"reviewer": "alice", "decision": "approve"},
	})
	require.NoError(t, err)

	at.Evidence["decision"] = "reject"
	require.NoError(t, repo.Attestations().Update(at))

	_, _, err = mgr.Verify(at.ID, false, "system")
	require.True(t, apierr.Is(err, apierr.CodeChainIntegrity))
}

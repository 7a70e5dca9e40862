package resolvers

import (
	"testing"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/resolverreg"
	"github.com/stretchr/testify/require"
)

func TestRegisterBuiltinsNoCollisions(t *testing.T) {
	reg := resolverreg.New()
	require.NoError(t, RegisterBuiltins(reg))
	list := reg.List()
	require.Len(t, list, 4)
}

func TestManualReviewApproveReject(t *testing.T) {
	r, err := NewManualReview()
	require.NoError(t, err)

	valid, errs := r.ValidateEvidence(map[string]any{"reviewer": "alice", "decision": "approve"})
	require.True(t, valid)
	require.Empty(t, errs)

	result, err := r.Verify(map[string]any{"reviewer": "alice", "decision": "approve"})
	require.NoError(t, err)
	require.Equal(t, model.VerificationVerified, result.Status)

	result, err = r.Verify(map[string]any{"reviewer": "bob", "decision": "reject"})
	require.NoError(t, err)
	require.Equal(t, model.VerificationFailed, result.Status)
}

func TestManualReviewRejectsMissingFields(t *testing.T) {
	r, err := NewManualReview()
	require.NoError(t, err)

	valid, errs := r.ValidateEvidence(map[string]any{"reviewer": "alice"})
	require.False(t, valid)
	require.NotEmpty(t, errs)
}

func TestDomainOwnershipMatch(t *testing.T) {
	r, err := NewDomainOwnership()
	require.NoError(t, err)

	evidence := map[string]any{
		"domain":             "example.com",
		"verificationMethod": "dns-txt",
		"token":              "abcdef1234",
		"observedValue":      "site-verification=abcdef1234",
	}
	valid, _ := r.ValidateEvidence(evidence)
	require.True(t, valid)

	result, err := r.Verify(evidence)
	require.NoError(t, err)
	require.Equal(t, model.VerificationVerified, result.Status)

	evidence["observedValue"] = "no token here"
	result, err = r.Verify(evidence)
	require.NoError(t, err)
	require.Equal(t, model.VerificationFailed, result.Status)
}

func TestURLReachabilityStatusRanges(t *testing.T) {
	r, err := NewURLReachability()
	require.NoError(t, err)

	ok, err := r.Verify(map[string]any{"url": "https://example.com", "statusCode": float64(200)})
	require.NoError(t, err)
	require.Equal(t, model.VerificationVerified, ok.Status)

	bad, err := r.Verify(map[string]any{"url": "https://example.com", "statusCode": float64(503)})
	require.NoError(t, err)
	require.Equal(t, model.VerificationFailed, bad.Status)
}

func TestGithubRepoOwnerAndAdmin(t *testing.T) {
	r, err := NewGithubRepo()
	require.NoError(t, err)

	evidence := map[string]any{
		"owner": "acme", "repo": "widgets",
		"expectedOwner": "acme", "actualOwner": "acme", "hasAdminAccess": true,
	}
	result, err := r.Verify(evidence)
	require.NoError(t, err)
	require.Equal(t, model.VerificationVerified, result.Status)

	evidence["hasAdminAccess"] = false
	result, err = r.Verify(evidence)
	require.NoError(t, err)
	require.Equal(t, model.VerificationFailed, result.Status)
}

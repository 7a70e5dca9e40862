package resolvers

import (
	"time"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/resolverreg"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var githubRepoSchema = map[string]any{
	"type":     "object",
	"required": []any{"owner", "repo", "expectedOwner", "actualOwner", "hasAdminAccess"},
	"properties": map[string]any{
		"owner":          map[string]any{"type": "string", "minLength": 1},
		"repo":           map[string]any{"type": "string", "minLength": 1},
		"expectedOwner":  map[string]any{"type": "string", "minLength": 1},
		"actualOwner":    map[string]any{"type": "string", "minLength": 1},
		"hasAdminAccess": map[string]any{"type": "boolean"},
	},
}

// GithubRepo verifies control of a GitHub repository: the observed owner
// must match the claimed owner and the claimant must hold admin access,
// both collected upstream (e.g. via GITHUB_TOKEN-authenticated API calls
// the ledger's config.go names but this resolver never makes itself).
type GithubRepo struct {
	schema *jsonschema.Schema
}

func NewGithubRepo() (*GithubRepo, error) {
	schema, err := compileSchema("githubrepo.json", githubRepoSchema)
	if err != nil {
		return nil, err
	}
	return &GithubRepo{schema: schema}, nil
}

func (r *GithubRepo) Metadata() model.ResolverMetadata {
	return model.ResolverMetadata{
		ID:          "githubrepo",
		Version:     "1.0.0",
		Name:        "GitHub Repository Ownership",
		Description: "Verifies the claimant has admin access to the named GitHub repository.",
		Author:      "irrl",
		EvidenceSchema: githubRepoSchema,
		OutputSchema: map[string]any{
			"type":     "object",
			"required": []any{"owner", "repo"},
		},
		Domains:             []string{"code", "github"},
		Deterministic:       true,
		AvgVerificationTime: 300 * time.Millisecond,
	}
}

func (r *GithubRepo) ValidateEvidence(evidence map[string]any) (bool, []string) {
	return validateEvidence(r.schema, evidence)
}

func (r *GithubRepo) CanResolve(claim string, evidence map[string]any) bool {
	_, ok := evidence["repo"]
	return ok
}

func (r *GithubRepo) Verify(evidence map[string]any) (resolverreg.VerificationResult, error) {
	expected, _ := evidence["expectedOwner"].(string)
	actual, _ := evidence["actualOwner"].(string)
	hasAdmin, _ := evidence["hasAdminAccess"].(bool)

	output := map[string]any{
		"owner": evidence["owner"],
		"repo":  evidence["repo"],
	}
	if expected != "" && expected == actual && hasAdmin {
		return resolverreg.VerificationResult{Status: model.VerificationVerified, Output: output}, nil
	}
	return resolverreg.VerificationResult{Status: model.VerificationFailed, Output: output}, nil
}

package resolvers

import (
	"strings"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/resolverreg"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var domainOwnershipSchema = map[string]any{
	"type":     "object",
	"required": []any{"domain", "verificationMethod", "token", "observedValue"},
	"properties": map[string]any{
		"domain":             map[string]any{"type": "string", "minLength": 1},
		"verificationMethod": map[string]any{"type": "string", "enum": []any{"dns-txt", "http-file"}},
		"token":              map[string]any{"type": "string", "minLength": 8},
		"observedValue":      map[string]any{"type": "string"},
	},
}

// DomainOwnership verifies that a caller-supplied DNS TXT record or
// well-known HTTP file observation contains an expected challenge token.
// It does not perform the lookup itself — evidence collection happens
// upstream of the ledger — it only validates that the observation proves
// the claim, matching the teacher's "resolver receives already-gathered
// evidence, not raw network access" posture (resolver/resolver.go never
// dials out; it consumes a pre-fetched evidence bundle).
type DomainOwnership struct {
	schema *jsonschema.Schema
}

func NewDomainOwnership() (*DomainOwnership, error) {
	schema, err := compileSchema("domainownership.json", domainOwnershipSchema)
	if err != nil {
		return nil, err
	}
	return &DomainOwnership{schema: schema}, nil
}

func (r *DomainOwnership) Metadata() model.ResolverMetadata {
	return model.ResolverMetadata{
		ID:          "domainownership",
		Version:     "1.0.0",
		Name:        "Domain Ownership",
		Description: "Verifies a DNS TXT or HTTP file challenge proves control of a domain.",
		Author:      "irrl",
		EvidenceSchema: domainOwnershipSchema,
		OutputSchema: map[string]any{
			"type":     "object",
			"required": []any{"domain", "verificationMethod"},
		},
		Domains:             []string{"domain", "web"},
		Deterministic:       true,
		AvgVerificationTime: 200 * time.Millisecond,
	}
}

func (r *DomainOwnership) ValidateEvidence(evidence map[string]any) (bool, []string) {
	return validateEvidence(r.schema, evidence)
}

func (r *DomainOwnership) CanResolve(claim string, evidence map[string]any) bool {
	return strings.Contains(strings.ToLower(claim), "domain") || evidence["domain"] != nil
}

func (r *DomainOwnership) Verify(evidence map[string]any) (resolverreg.VerificationResult, error) {
	token, _ := evidence["token"].(string)
	observed, _ := evidence["observedValue"].(string)
	method, _ := evidence["verificationMethod"].(string)
	domain, _ := evidence["domain"].(string)

	output := map[string]any{"domain": domain, "verificationMethod": method}
	if token != "" && strings.Contains(observed, token) {
		output["matched"] = true
		return resolverreg.VerificationResult{Status: model.VerificationVerified, Output: output}, nil
	}
	output["matched"] = false
	return resolverreg.VerificationResult{Status: model.VerificationFailed, Output: output}, nil
}

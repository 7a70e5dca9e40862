package resolvers

import (
	"encoding/json"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/resolverreg"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var urlReachabilitySchema = map[string]any{
	"type":     "object",
	"required": []any{"url", "statusCode", "checkedAt"},
	"properties": map[string]any{
		"url":        map[string]any{"type": "string", "minLength": 1},
		"statusCode": map[string]any{"type": "integer", "minimum": 100, "maximum": 599},
		"checkedAt":  map[string]any{"type": "string"},
	},
}

// URLReachability verifies a URL was reachable at evidence-collection
// time by checking the observed status code falls in the 2xx range. Like
// DomainOwnership, the HTTP check itself happens before evidence reaches
// the ledger; this resolver only judges the recorded result.
type URLReachability struct {
	schema *jsonschema.Schema
}

func NewURLReachability() (*URLReachability, error) {
	schema, err := compileSchema("urlreachability.json", urlReachabilitySchema)
	if err != nil {
		return nil, err
	}
	return &URLReachability{schema: schema}, nil
}

func (r *URLReachability) Metadata() model.ResolverMetadata {
	return model.ResolverMetadata{
		ID:          "urlreachability",
		Version:     "1.0.0",
		Name:        "URL Reachability",
		Description: "Verifies a URL responded with a 2xx status at evidence-collection time.",
		Author:      "irrl",
		EvidenceSchema: urlReachabilitySchema,
		OutputSchema: map[string]any{
			"type":     "object",
			"required": []any{"url", "statusCode"},
		},
		Domains:             []string{"web"},
		Deterministic:       true,
		AvgVerificationTime: 100 * time.Millisecond,
	}
}

func (r *URLReachability) ValidateEvidence(evidence map[string]any) (bool, []string) {
	return validateEvidence(r.schema, evidence)
}

func (r *URLReachability) CanResolve(claim string, evidence map[string]any) bool {
	_, ok := evidence["url"]
	return ok
}

func (r *URLReachability) Verify(evidence map[string]any) (resolverreg.VerificationResult, error) {
	status := statusCodeOf(evidence["statusCode"])
	output := map[string]any{"url": evidence["url"], "statusCode": status}
	if status >= 200 && status < 300 {
		return resolverreg.VerificationResult{Status: model.VerificationVerified, Output: output}, nil
	}
	return resolverreg.VerificationResult{Status: model.VerificationFailed, Output: output}, nil
}

// statusCodeOf normalizes the evidence's statusCode, which arrives as
// float64/json.Number/int depending on the caller's encoding path.
func statusCodeOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	default:
		return 0
	}
}

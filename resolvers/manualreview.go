package resolvers

import (
	"fmt"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/resolverreg"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var manualReviewSchema = map[string]any{
	"type":     "object",
	"required": []any{"reviewer", "decision"},
	"properties": map[string]any{
		"reviewer": map[string]any{"type": "string", "minLength": 1},
		"decision": map[string]any{"type": "string", "enum": []any{"approve", "reject"}},
		"notes":    map[string]any{"type": "string"},
	},
}

// ManualReview is the fallback resolver for claims nothing else can
// automate: a named reviewer's approve/reject decision is the evidence
// itself, so Verify just transcribes it. Grounded on the teacher's
// manual-review escape hatch in resolver/options.go (a resolver that
// always "resolves", deferring judgment to the caller-supplied input).
type ManualReview struct {
	schema *jsonschema.Schema
}

// NewManualReview compiles the resolver's evidence schema once at
// construction time.
func NewManualReview() (*ManualReview, error) {
	schema, err := compileSchema("manualreview.json", manualReviewSchema)
	if err != nil {
		return nil, err
	}
	return &ManualReview{schema: schema}, nil
}

func (r *ManualReview) Metadata() model.ResolverMetadata {
	return model.ResolverMetadata{
		ID:          "manualreview",
		Version:     "1.0.0",
		Name:        "Manual Review",
		Description: "Records a named reviewer's approve/reject decision as the verification outcome.",
		Author:      "irrl",
		EvidenceSchema: manualReviewSchema,
		OutputSchema: map[string]any{
			"type":     "object",
			"required": []any{"reviewer", "decision"},
		},
		Domains:             []string{"*"},
		Deterministic:       true,
		AvgVerificationTime: 50 * time.Millisecond,
	}
}

func (r *ManualReview) ValidateEvidence(evidence map[string]any) (bool, []string) {
	return validateEvidence(r.schema, evidence)
}

func (r *ManualReview) CanResolve(claim string, evidence map[string]any) bool {
	_, ok := evidence["decision"]
	return ok
}

func (r *ManualReview) Verify(evidence map[string]any) (resolverreg.VerificationResult, error) {
	decision, _ := evidence["decision"].(string)
	switch decision {
	case "approve":
		return resolverreg.VerificationResult{
			Status: model.VerificationVerified,
			Output: map[string]any{"reviewer": evidence["reviewer"], "decision": decision},
		}, nil
	case "reject":
		return resolverreg.VerificationResult{
			Status: model.VerificationFailed,
			Output: map[string]any{"reviewer": evidence["reviewer"], "decision": decision},
		}, nil
	default:
		return resolverreg.VerificationResult{}, fmt.Errorf("manualreview: unrecognized decision %q", decision)
	}
}

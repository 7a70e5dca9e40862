// Package model defines the ledger's persistent record types (§3): realms,
// attestations, verification runs, evaluations, reputation snapshots,
// proofs, and audit events. Field names and invariants follow the
// specification verbatim; json tags give the wire (camelCase) names.
package model

import "time"

// ComplianceMode mirrors the teacher's Permissive/Strict posture. It
// declares the two mode values only: no component reads it, and resolver
// dispatch behaves the same whichever value is chosen.
type ComplianceMode string

const (
	CompliancePermissive ComplianceMode = "permissive"
	ComplianceStrict     ComplianceMode = "strict"
)

// RealmRules configures how a realm evaluates attestations and trust.
type RealmRules struct {
	MinVerifications      int      `json:"minVerifications"`
	RequiredResolvers      []string `json:"requiredResolvers"`
	OptionalResolvers      []string `json:"optionalResolvers"`
	DecayHalfLife          string   `json:"decayHalfLife"` // duration string, e.g. "30d"
	MinScore               float64  `json:"minScore"`
	MaxTransitiveDepth     int      `json:"maxTransitiveDepth"`
	TransitiveDecayFactor  float64  `json:"transitiveDecayFactor"`
	CustomRules            map[string]any `json:"customRules,omitempty"`
}

// DefaultRealmRules returns the rules applied when a caller omits fields.
func DefaultRealmRules() RealmRules {
	return RealmRules{
		MinVerifications:     1,
		DecayHalfLife:        "90d",
		MinScore:             0,
		MaxTransitiveDepth:   5,
		TransitiveDecayFactor: 0.8,
	}
}

// WithDefaults fills any zero-valued field of r from defaults.
func (r RealmRules) WithDefaults(defaults RealmRules) RealmRules {
	out := r
	if out.MinVerifications == 0 {
		out.MinVerifications = defaults.MinVerifications
	}
	if out.RequiredResolvers == nil {
		out.RequiredResolvers = defaults.RequiredResolvers
	}
	if out.OptionalResolvers == nil {
		out.OptionalResolvers = defaults.OptionalResolvers
	}
	if out.DecayHalfLife == "" {
		out.DecayHalfLife = defaults.DecayHalfLife
	}
	if out.MinScore == 0 {
		out.MinScore = defaults.MinScore
	}
	if out.MaxTransitiveDepth == 0 {
		out.MaxTransitiveDepth = defaults.MaxTransitiveDepth
	}
	if out.TransitiveDecayFactor == 0 {
		out.TransitiveDecayFactor = defaults.TransitiveDecayFactor
	}
	return out
}

// Realm is a named trust context with a hierarchical parent and rules.
//
// Invariants: path is the '/'-joined chain of ancestor ids ending in id;
// depth is the number of '/' in path; path is globally unique; if parent
// is nil then path == id and depth == 0. id, parent, path, and depth are
// immutable once created.
type Realm struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parent      *string    `json:"parent"`
	Path        string     `json:"path"`
	Depth       int        `json:"depth"`
	Domain      string     `json:"domain"`
	Rules       RealmRules `json:"rules"`
	PublicKey   string     `json:"publicKey"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// AttestationStatus is the lifecycle state of an Attestation (§4.6).
type AttestationStatus string

const (
	AttestationPending  AttestationStatus = "pending"
	AttestationVerified AttestationStatus = "verified"
	AttestationFailed   AttestationStatus = "failed"
	AttestationRevoked  AttestationStatus = "revoked"
	AttestationExpired  AttestationStatus = "expired"
)

// Attestation is a signed claim about a subject with machine-verifiable
// evidence.
//
// Invariants: evidence validates against the declared resolver's evidence
// schema; references are ContentIds of other attestations; content fields
// are immutable once created; only status, verificationCount,
// lastVerifiedAt, and updatedAt mutate.
type Attestation struct {
	ID                string            `json:"id"`
	RealmID           string            `json:"realmId"`
	Attester          string            `json:"attester"`
	Subject           string            `json:"subject"`
	Claim             string            `json:"claim"`
	ResolverID        string            `json:"resolverId"`
	Evidence          map[string]any    `json:"evidence"`
	EvidenceCID       string            `json:"evidenceCid,omitempty"`
	References        []string          `json:"references"`
	Signature         string            `json:"signature"`
	Status            AttestationStatus `json:"status"`
	ExpiresAt         *time.Time        `json:"expiresAt,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	VerificationCount int               `json:"verificationCount"`
	LastVerifiedAt    *time.Time        `json:"lastVerifiedAt,omitempty"`
}

// AttestationContent is the subset of an Attestation's content that
// defines its ContentId — everything but status/bookkeeping fields, plus
// an explicit ts so re-submission at a different instant still hashes to
// the same id only when ts is held fixed by the caller (the Attestation
// Manager stamps ts at creation time and never rehashes thereafter).
type AttestationContent struct {
	RealmID    string         `json:"realmId"`
	Subject    string         `json:"subject"`
	Claim      string         `json:"claim"`
	ResolverID string         `json:"resolverId"`
	Evidence   map[string]any `json:"evidence"`
	References []string       `json:"references"`
	Ts         time.Time      `json:"ts"`
}

// VerificationStatus is the outcome of one VerificationRun.
type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "verified"
	VerificationFailed   VerificationStatus = "failed"
	VerificationError    VerificationStatus = "error"
)

// VerificationRun is an immutable record of one dispatch to a resolver.
type VerificationRun struct {
	ID              string             `json:"id"`
	AttestationID   string             `json:"attestationId"`
	ResolverID      string             `json:"resolverId"`
	ResolverVersion string             `json:"resolverVersion"`
	Status          VerificationStatus `json:"status"`
	Output          map[string]any     `json:"output"`
	OutputHash      string             `json:"outputHash"`
	Snapshot        map[string]any     `json:"snapshot,omitempty"`
	DurationMs      int64              `json:"durationMs"`
	TriggeredBy     string             `json:"triggeredBy"`
	Error           string             `json:"error,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// Evaluation is a directed, signed trust edge scoped to a realm and
// domain.
//
// Uniqueness: at most one active evaluation per (from, to, realmId,
// domain); re-submission updates the existing row in place.
type Evaluation struct {
	ID                     string     `json:"id"`
	FromEntity             string     `json:"fromEntity"`
	ToEntity               string     `json:"toEntity"`
	RealmID                string     `json:"realmId"`
	Domain                 string     `json:"domain"`
	Score                  int        `json:"score"` // [0,100]
	Weight                 float64    `json:"weight"` // [0,1]
	Rationale              string     `json:"rationale,omitempty"`
	SupportingAttestations []string   `json:"supportingAttestations"`
	Signature              string     `json:"signature"`
	ExpiresAt              *time.Time `json:"expiresAt,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
}

// ReputationBreakdown explains the components that produced a Score.
type ReputationBreakdown struct {
	RawScore        float64 `json:"rawScore"`
	AttestationBonus float64 `json:"attestationBonus"`
	DecayPenalty    float64 `json:"decayPenalty"`
	StalenessDays   float64 `json:"stalenessDays"`
}

// ReputationCache is the memoized computed reputation for one
// (subject, realmId, domain).
type ReputationCache struct {
	Subject          string               `json:"subject"`
	RealmID          string               `json:"realmId"`
	Domain           string               `json:"domain"`
	Score            float64              `json:"score"` // [0,100]
	Confidence       float64              `json:"confidence"` // [0,1]
	EvaluationCount  int                  `json:"evaluationCount"`
	AttestationCount int                  `json:"attestationCount"`
	Breakdown        ReputationBreakdown  `json:"breakdown"`
	ComputedAt       time.Time            `json:"computedAt"`
	ValidUntil       time.Time            `json:"validUntil"`
}

// ReputationProofVersion is the only version of the proof envelope the
// ledger currently emits.
const ReputationProofVersion = "IRRL-Proof-v1"

// ReputationProof is a signed, portable snapshot of a reputation with a
// Merkle commitment to its supporting evidence.
type ReputationProof struct {
	Version            string    `json:"version"`
	Subject            string    `json:"subject"`
	RealmID            string    `json:"realmId"`
	Domain             string    `json:"domain"`
	Reputation         ReputationCache `json:"reputation"`
	Issuer             string    `json:"issuer"`
	IssuedAt           time.Time `json:"issuedAt"`
	ValidUntil         time.Time `json:"validUntil"`
	EvidenceMerkleRoot string    `json:"evidenceMerkleRoot"`
	Signature          string    `json:"signature"`
}

// AuditEvent is one entry of the append-only, hash-chained audit log.
type AuditEvent struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Actor         string         `json:"actor"`
	EntityIDs     []string       `json:"entityIds"`
	Payload       map[string]any `json:"payload"`
	PreviousHash  string         `json:"previousHash"`
	Hash          string         `json:"hash"`
	Timestamp     time.Time      `json:"timestamp"`
}

// ResolverMetadata is the immutable declaration a resolver plugin carries.
type ResolverMetadata struct {
	ID                  string   `json:"id"`
	Version             string   `json:"version"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Author              string   `json:"author"`
	EvidenceSchema      map[string]any `json:"evidenceSchema"`
	OutputSchema        map[string]any `json:"outputSchema"`
	Domains             []string `json:"domains"`
	Deterministic       bool     `json:"deterministic"`
	AvgVerificationTime time.Duration `json:"avgVerificationTime"`
}

// Package reputation implements the Reputation Aggregator (C9):
// time-decayed score computation, Sybil-resistance scoring, and a
// 5-minute TTL cache invalidated on new evaluations.
//
// Grounded on other_examples' Generativebots-ocx-backend-go-svc
// federation.PersistentTrustLedger decay-parameter math (half-life based
// weight decay over evaluation age) adapted from instance-to-instance
// federation trust to subject reputation, and on the teacher's
// KeyStore-style injectable Clock-free "now" function for testability.
package reputation

import (
	"math"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
)

// DecayInput is the evaluation/attestation snapshot ComputeWithDecay
// scores.
type DecayInput struct {
	Evaluations              []model.Evaluation
	AttestationCount         int
	VerifiedAttestationCount int
	OldestEvaluationDate     time.Time
	NewestEvaluationDate     time.Time
}

// DecayConfig bounds the output score.
type DecayConfig struct {
	HalfLifeDays float64
	MinScore     float64
	MaxScore     float64
}

const secondsPerDay = 86400

// ComputeWithDecay implements the half-life weighted average described
// by the specification verbatim, including the exact rounding points.
func ComputeWithDecay(input DecayInput, config DecayConfig, now time.Time) (score float64, confidence float64, breakdown model.ReputationBreakdown) {
	var weightedSum, weightSum float64
	for _, e := range input.Evaluations {
		ageDays := now.Sub(e.CreatedAt).Seconds() / secondsPerDay
		w := e.Weight * math.Pow(0.5, ageDays/config.HalfLifeDays)
		weightedSum += float64(e.Score) * w
		weightSum += w
	}

	rawScore := 50.0
	if weightSum != 0 {
		rawScore = weightedSum / weightSum
	}

	attestationBonus := 0.0
	if input.VerifiedAttestationCount > 0 && input.AttestationCount > 0 {
		ratio := float64(input.VerifiedAttestationCount) / float64(input.AttestationCount)
		attestationBonus = ratio * 10 * math.Min(float64(input.VerifiedAttestationCount)/5, 1)
	}

	stalenessDays := 0.0
	if !input.NewestEvaluationDate.IsZero() {
		stalenessDays = now.Sub(input.NewestEvaluationDate).Seconds() / secondsPerDay
	}
	decayPenalty := math.Max(0, (stalenessDays-config.HalfLifeDays)*0.1)

	raw := rawScore + attestationBonus - decayPenalty
	score = round(clamp(raw, config.MinScore, config.MaxScore), 1)

	conf := math.Min(1, float64(len(input.Evaluations))/10) * math.Pow(0.5, stalenessDays/config.HalfLifeDays)
	confidence = round(conf, 2)

	breakdown = model.ReputationBreakdown{
		RawScore:         round(rawScore, 1),
		AttestationBonus: round(attestationBonus, 1),
		DecayPenalty:     round(decayPenalty, 1),
		StalenessDays:    round(stalenessDays, 1),
	}
	return score, confidence, breakdown
}

// SybilFactors breaks down the components of a Sybil-resistance score.
type SybilFactors struct {
	EvaluatorDiversity    float64 `json:"evaluatorDiversity"`
	VerificationDepth     float64 `json:"verificationDepth"`
	TemporalSpread        float64 `json:"temporalSpread"`
	CrossRealmConsistency float64 `json:"crossRealmConsistency"`
}

// SybilResult is the outcome of computeSybilResistance.
type SybilResult struct {
	Score    float64      `json:"score"`
	Factors  SybilFactors `json:"factors"`
	Warnings []string     `json:"warnings"`
}

// ComputeSybilResistance scores how resistant a subject's evidence set is
// to a low-effort Sybil attack, per the specification's four factors.
func ComputeSybilResistance(evaluations []model.Evaluation, attestations []model.Attestation) SybilResult {
	uniqueFrom := make(map[string]bool)
	for _, e := range evaluations {
		uniqueFrom[e.FromEntity] = true
	}

	var totalVerifications int
	uniqueRealms := make(map[string]bool)
	var minCreated, maxCreated time.Time
	for _, a := range attestations {
		totalVerifications += a.VerificationCount
		uniqueRealms[a.RealmID] = true
		if minCreated.IsZero() || a.CreatedAt.Before(minCreated) {
			minCreated = a.CreatedAt
		}
		if maxCreated.IsZero() || a.CreatedAt.After(maxCreated) {
			maxCreated = a.CreatedAt
		}
	}

	avgVerificationCount := 0.0
	if len(attestations) > 0 {
		avgVerificationCount = float64(totalVerifications) / float64(len(attestations))
	}

	spanDays := 0.0
	if !minCreated.IsZero() && !maxCreated.IsZero() {
		spanDays = maxCreated.Sub(minCreated).Seconds() / secondsPerDay
	}

	factors := SybilFactors{
		EvaluatorDiversity:    math.Min(1, float64(len(uniqueFrom))/10),
		VerificationDepth:     math.Min(1, avgVerificationCount/3),
		TemporalSpread:        math.Min(1, spanDays/90),
		CrossRealmConsistency: math.Min(1, math.Max(0, float64(len(uniqueRealms)-1))/3),
	}

	score := round(0.35*factors.EvaluatorDiversity+0.25*factors.VerificationDepth+
		0.20*factors.TemporalSpread+0.20*factors.CrossRealmConsistency, 2)

	var warnings []string
	if len(uniqueFrom) < 3 {
		warnings = append(warnings, "fewer than 3 unique evaluators")
	}
	if avgVerificationCount < 2 {
		warnings = append(warnings, "average verification count below 2")
	}
	if spanDays < 7 {
		warnings = append(warnings, "evidence span under 7 days")
	}

	return SybilResult{Score: score, Factors: factors, Warnings: warnings}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(v*mult) / mult
}

package reputation

import (
	"testing"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/stretchr/testify/require"
)

func TestComputeWithDecayMatchesWorkedExample(t *testing.T) {
	now := time.Now()
	evaluations := []model.Evaluation{
		{Score: 80, Weight: 1, CreatedAt: now.Add(-30 * 24 * time.Hour)},
		{Score: 80, Weight: 1, CreatedAt: now.Add(-180 * 24 * time.Hour)},
	}
	score, confidence, _ := ComputeWithDecay(DecayInput{
		Evaluations:          evaluations,
		NewestEvaluationDate: now.Add(-30 * 24 * time.Hour),
	}, DecayConfig{HalfLifeDays: 180, MinScore: 0, MaxScore: 100}, now)

	require.InDelta(t, 80.0, score, 0.5)
	require.InDelta(t, 0.18, confidence, 0.02)
}

func TestComputeWithDecayNoEvaluationsDefaultsToFifty(t *testing.T) {
	score, _, breakdown := ComputeWithDecay(DecayInput{}, DecayConfig{HalfLifeDays: 90, MinScore: 0, MaxScore: 100}, time.Now())
	require.Equal(t, 50.0, score)
	require.Equal(t, 50.0, breakdown.RawScore)
}

func TestComputeWithDecayClampsToBounds(t *testing.T) {
	now := time.Now()
	evaluations := []model.Evaluation{{Score: 100, Weight: 1, CreatedAt: now}}
	score, _, _ := ComputeWithDecay(DecayInput{
		Evaluations: evaluations, VerifiedAttestationCount: 10, AttestationCount: 10,
		NewestEvaluationDate: now,
	}, DecayConfig{HalfLifeDays: 90, MinScore: 0, MaxScore: 100}, now)
	require.LessOrEqual(t, score, 100.0)
}

func TestComputeSybilResistanceWarnings(t *testing.T) {
	now := time.Now()
	evaluations := []model.Evaluation{{FromEntity: "a"}, {FromEntity: "a"}}
	attestations := []model.Attestation{{RealmID: "r1", CreatedAt: now, VerificationCount: 1}}

	result := ComputeSybilResistance(evaluations, attestations)
	require.Contains(t, result.Warnings, "fewer than 3 unique evaluators")
	require.Contains(t, result.Warnings, "average verification count below 2")
	require.Contains(t, result.Warnings, "evidence span under 7 days")
}

func TestComputeSybilResistanceHighDiversity(t *testing.T) {
	now := time.Now()
	var evaluations []model.Evaluation
	for i := 0; i < 10; i++ {
		evaluations = append(evaluations, model.Evaluation{FromEntity: string(rune('a' + i))})
	}
	attestations := []model.Attestation{
		{RealmID: "r1", CreatedAt: now.Add(-100 * 24 * time.Hour), VerificationCount: 3},
		{RealmID: "r2", CreatedAt: now, VerificationCount: 3},
	}
	result := ComputeSybilResistance(evaluations, attestations)
	require.Equal(t, 1.0, result.Factors.EvaluatorDiversity)
	require.Equal(t, 1.0, result.Factors.VerificationDepth)
	require.Empty(t, result.Warnings)
}

func TestParseHalfLifeDays(t *testing.T) {
	days, err := parseHalfLifeDays("90d")
	require.NoError(t, err)
	require.Equal(t, 90.0, days)

	_, err = parseHalfLifeDays("90")
	require.Error(t, err)
}

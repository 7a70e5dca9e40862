package trustgraph

import (
	"testing"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/stretchr/testify/require"
)

func eval(from, to, domain string, score int, weight float64) model.Evaluation {
	return model.Evaluation{FromEntity: from, ToEntity: to, Domain: domain, Score: score, Weight: weight, CreatedAt: time.Now()}
}

func TestDirectTrust(t *testing.T) {
	g := Build([]model.Evaluation{eval("A", "B", "d", 80, 1.0)}, time.Now())
	result := g.Transitive(Query{From: "A", To: "B", Domain: "d"})
	require.InDelta(t, 0.8, result.Score, 1e-9)
	require.Equal(t, 1.0, result.Confidence)
	require.Len(t, result.Paths, 1)
	require.Equal(t, 0.0, result.Paths[0].DecayApplied)
	require.Equal(t, 1, result.Metadata.PathsExplored)
}

func TestTwoHopDecay(t *testing.T) {
	g := Build([]model.Evaluation{
		eval("A", "B", "d", 100, 1.0),
		eval("B", "C", "d", 100, 1.0),
	}, time.Now())
	result := g.Transitive(Query{From: "A", To: "C", Domain: "d", DecayFactor: 0.8})
	require.InDelta(t, 0.64, result.Score, 1e-9)
	require.InDelta(t, 1.0/3, result.Confidence, 1e-9)
	require.Len(t, result.Paths, 1)
	require.Equal(t, []string{"A", "B", "C"}, result.Paths[0].Nodes)
}

func TestNoPathYieldsZero(t *testing.T) {
	g := Build([]model.Evaluation{eval("A", "B", "d", 100, 1.0)}, time.Now())
	result := g.Transitive(Query{From: "X", To: "Y", Domain: "d"})
	require.Equal(t, 0.0, result.Score)
	require.Equal(t, 0.0, result.Confidence)
	require.Empty(t, result.Paths)
}

func TestCyclePrevention(t *testing.T) {
	g := Build([]model.Evaluation{
		eval("A", "B", "d", 100, 1.0),
		eval("B", "A", "d", 100, 1.0),
		eval("B", "C", "d", 100, 1.0),
	}, time.Now())
	result := g.Transitive(Query{From: "A", To: "C", Domain: "d", DecayFactor: 0.8})
	require.Len(t, result.Paths, 1)
	require.Equal(t, []string{"A", "B", "C"}, result.Paths[0].Nodes)
}

func TestDirectTrustWeightedMeanAcrossMultipleEdges(t *testing.T) {
	g := Build([]model.Evaluation{
		eval("A", "B", "d", 100, 1.0),
		eval("A", "B", "d", 0, 1.0),
	}, time.Now())
	score, ok := g.DirectTrust("A", "B", "d")
	require.True(t, ok)
	require.InDelta(t, 0.5, score, 1e-9)
}

func TestExpiredEvaluationsExcludedFromGraph(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	e := eval("A", "B", "d", 100, 1.0)
	e.ExpiresAt = &past
	g := Build([]model.Evaluation{e}, time.Now())
	_, ok := g.DirectTrust("A", "B", "d")
	require.False(t, ok)
}

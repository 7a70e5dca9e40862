// Package trustgraph implements the Trust Graph Engine (C8): direct and
// bounded-depth transitive trust queries over a domain-scoped directed
// weighted graph of evaluations.
//
// Grounded on the teacher's resolver.Resolution path/fork bookkeeping
// (Path{ID, CIDs}, explicit path enumeration with cycle prevention)
// generalized from CATF's attestation-chain path walk to a decayed
// multi-hop trust search, and on the teacher's deterministic-iteration
// discipline (storage.MultiCAS's "fixed order, never map iteration") for
// this package's stable path sort.
package trustgraph

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
)

// edge is one directed weighted trust relationship in a single domain.
type edge struct {
	to string
	s  float64 // score/100, in [0,1]
	w  float64 // evaluation weight, in [0,1]
}

// Graph is an in-memory trust graph built from a snapshot of evaluations.
type Graph struct {
	// adjacency is indexed by fromEntity + "\x00" + domain.
	adjacency map[string][]edge
}

// Build constructs a Graph from evaluations, dropping any already
// expired as of now.
func Build(evaluations []model.Evaluation, now time.Time) *Graph {
	g := &Graph{adjacency: make(map[string][]edge)}
	for _, e := range evaluations {
		if e.ExpiresAt != nil && e.ExpiresAt.Before(now) {
			continue
		}
		key := adjacencyKey(e.FromEntity, e.Domain)
		g.adjacency[key] = append(g.adjacency[key], edge{
			to: e.ToEntity,
			s:  float64(e.Score) / 100,
			w:  e.Weight,
		})
	}
	return g
}

func adjacencyKey(from, domain string) string {
	return from + "\x00" + domain
}

func (g *Graph) edgesFrom(node, domain string) []edge {
	return g.adjacency[adjacencyKey(node, domain)]
}

// DirectTrust returns the weight-weighted mean of s across every edge
// from -> to in domain, or ok=false when no such edge exists.
func (g *Graph) DirectTrust(from, to, domain string) (score float64, ok bool) {
	var weightedSum, weightSum float64
	for _, e := range g.edgesFrom(from, domain) {
		if e.to != to {
			continue
		}
		weightedSum += e.s * e.w
		weightSum += e.w
	}
	if weightSum == 0 {
		return 0, false
	}
	return weightedSum / weightSum, true
}

// Path is one completed route from the query's source to its target.
type Path struct {
	Nodes        []string  `json:"path"`
	Scores       []float64 `json:"scores"`
	FinalTrust   float64   `json:"finalTrust"`
	DecayApplied float64   `json:"decayApplied"`
}

// Query parameterizes a transitive trust search.
type Query struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Domain        string  `json:"domain"`
	RealmID       string  `json:"realmId"`
	MaxDepth      int     `json:"maxDepth,omitempty"`
	DecayFactor   float64 `json:"decayFactor,omitempty"`
	MinConfidence float64 `json:"minConfidence,omitempty"`
}

// WithDefaults fills in the query's documented defaults for any
// zero-valued field.
func (q Query) WithDefaults() Query {
	out := q
	if out.MaxDepth == 0 {
		out.MaxDepth = 5
	}
	if out.DecayFactor == 0 {
		out.DecayFactor = 0.8
	}
	if out.MinConfidence == 0 {
		out.MinConfidence = 0.1
	}
	return out
}

// Metadata carries search diagnostics alongside a Result.
type Metadata struct {
	PathsExplored int `json:"pathsExplored"`
}

// Result is the outcome of a transitive trust query.
type Result struct {
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Paths      []Path   `json:"paths"`
	BestPath   *Path    `json:"bestPath"`
	Metadata   Metadata `json:"metadata"`
}

const maxPathsExplored = 5000

// frontierEntry is one in-flight partial path during the bounded BFS.
type frontierEntry struct {
	node   string
	path   []string
	scores []float64
	trust  float64
	depth  int
}

// Transitive computes the transitive trust between q.From and q.To.
//
// Pruning intentionally uses decayFactor^depth while the final-trust
// computation on arrival uses decayFactor^(depth-1) — this one-hop
// offset between the pruning test and the scoring formula is preserved
// as normative behavior, not "corrected", matching the documented
// asymmetry between the two formulas.
func (g *Graph) Transitive(q Query) Result {
	q = q.WithDefaults()

	if direct, ok := g.DirectTrust(q.From, q.To, q.Domain); ok {
		p := Path{Nodes: []string{q.From, q.To}, Scores: []float64{direct}, FinalTrust: direct, DecayApplied: 0}
		return Result{
			Score:      direct,
			Confidence: 1,
			Paths:      []Path{p},
			BestPath:   &p,
			Metadata:   Metadata{PathsExplored: 1},
		}
	}

	visited := make(map[string]bool)
	var queue []frontierEntry
	var completed []Path
	pathsExplored := 0

	enqueue := func(cur *frontierEntry, e edge) {
		if pathsExplored >= maxPathsExplored {
			return
		}
		pathsExplored++

		if contains(cur.path, e.to) {
			return // cycle prevention
		}
		depth := cur.depth + 1
		key := e.to + "\x00" + strconv.Itoa(depth)
		if visited[key] {
			return // visited-(node,depth) pruning
		}
		visited[key] = true

		trust := cur.trust * q.DecayFactor * e.s
		if cur.depth == 0 {
			// Seed frontier: trust = edge.s, depth=1 (§4.8 step 2). Decay
			// only applies to hops after the first.
			trust = e.s
		}
		path := appendCopy(cur.path, e.to)
		scores := appendCopyF(cur.scores, e.s)
		entry := frontierEntry{node: e.to, path: path, scores: scores, trust: trust, depth: depth}

		if entry.node == q.To {
			finalTrust := entry.trust * math.Pow(q.DecayFactor, float64(depth-1))
			completed = append(completed, Path{
				Nodes:        entry.path,
				Scores:       entry.scores,
				FinalTrust:   finalTrust,
				DecayApplied: 1 - math.Pow(q.DecayFactor, float64(depth-1)),
			})
		}

		if depth < q.MaxDepth && trust*math.Pow(q.DecayFactor, float64(depth)) >= q.MinConfidence {
			queue = append(queue, entry)
		}
	}

	seed := frontierEntry{node: q.From, path: []string{q.From}, depth: 0, trust: 1}
	for _, e := range g.edgesFrom(q.From, q.Domain) {
		enqueue(&seed, e)
		if pathsExplored >= maxPathsExplored {
			break
		}
	}

	for len(queue) > 0 && pathsExplored < maxPathsExplored {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.edgesFrom(cur.node, q.Domain) {
			enqueue(&cur, e)
			if pathsExplored >= maxPathsExplored {
				break
			}
		}
	}

	if len(completed) == 0 {
		return Result{Score: 0, Confidence: 0, Metadata: Metadata{PathsExplored: pathsExplored}}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		if completed[i].FinalTrust != completed[j].FinalTrust {
			return completed[i].FinalTrust > completed[j].FinalTrust
		}
		return len(completed[i].Nodes) < len(completed[j].Nodes)
	})

	score := completed[0].FinalTrust
	for i := 1; i <= min(4, len(completed)-1); i++ {
		score += completed[i].FinalTrust * math.Pow(0.5, float64(i))
	}
	score = clamp(score, 0, 1)
	confidence := math.Min(1, float64(len(completed))/3)

	top := completed
	if len(top) > 10 {
		top = top[:10]
	}
	best := top[0]

	return Result{
		Score:      score,
		Confidence: confidence,
		Paths:      top,
		BestPath:   &best,
		Metadata:   Metadata{PathsExplored: pathsExplored},
	}
}

func contains(path []string, node string) bool {
	for _, n := range path {
		if n == node {
			return true
		}
	}
	return false
}

func appendCopy(s []string, v string) []string {
	out := make([]string, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

func appendCopyF(s []float64, v float64) []float64 {
	out := make([]float64, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
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


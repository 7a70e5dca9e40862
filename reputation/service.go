package reputation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

// CacheTTL is how long a computed reputation is considered fresh before
// it must be recomputed.
const CacheTTL = 5 * time.Minute

// Service is the Reputation Aggregator, memoizing computed reputations
// per (subject, realmId, domain) with a 5-minute TTL, invalidated on any
// new evaluation touching that key.
type Service struct {
	repo repository.Repository
	now  func() time.Time
	ttl  time.Duration
}

// New constructs a Service over repo.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now, ttl: CacheTTL}
}

// Invalidate drops the memoized reputation for (subject, realmId, domain),
// wired as the evaluation Store's OnWrite callback.
func (s *Service) Invalidate(subject, realmID, domain string) {
	_ = s.repo.ReputationCache().Invalidate(subject, realmID, domain)
}

// Get returns the memoized reputation for (subject, realmId, domain),
// recomputing it when stale, absent, or refresh is requested.
func (s *Service) Get(subject, realmID, domain string, refresh bool) (model.ReputationCache, error) {
	now := s.now().UTC()

	if !refresh {
		if cached, ok, err := s.repo.ReputationCache().Get(subject, realmID, domain); err != nil {
			return model.ReputationCache{}, apierr.Internal(err)
		} else if ok && cached.ValidUntil.After(now) {
			return cached, nil
		}
	}

	realm, err := s.repo.Realms().Get(realmID)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.ReputationCache{}, apierr.New(apierr.CodeInvalidRealm, fmt.Sprintf("realm %q not found", realmID))
		}
		return model.ReputationCache{}, apierr.Internal(err)
	}
	halfLifeDays, err := parseHalfLifeDays(realm.Rules.DecayHalfLife)
	if err != nil {
		return model.ReputationCache{}, apierr.Internal(err)
	}

	evaluations, err := s.repo.Evaluations().ListIncoming(subject, realmID, domain)
	if err != nil {
		return model.ReputationCache{}, apierr.Internal(err)
	}
	attestations, err := s.repo.Attestations().ListBySubject(subject)
	if err != nil {
		return model.ReputationCache{}, apierr.Internal(err)
	}
	attestations = filterByRealm(attestations, realmID)

	verified := 0
	for _, a := range attestations {
		if a.Status == model.AttestationVerified {
			verified++
		}
	}

	var oldest, newest time.Time
	for _, e := range evaluations {
		if oldest.IsZero() || e.CreatedAt.Before(oldest) {
			oldest = e.CreatedAt
		}
		if newest.IsZero() || e.CreatedAt.After(newest) {
			newest = e.CreatedAt
		}
	}

	score, confidence, breakdown := ComputeWithDecay(DecayInput{
		Evaluations:              evaluations,
		AttestationCount:         len(attestations),
		VerifiedAttestationCount: verified,
		OldestEvaluationDate:     oldest,
		NewestEvaluationDate:     newest,
	}, DecayConfig{
		HalfLifeDays: halfLifeDays,
		MinScore:     realm.Rules.MinScore,
		MaxScore:     100,
	}, now)

	cache := model.ReputationCache{
		Subject:          subject,
		RealmID:          realmID,
		Domain:           domain,
		Score:            score,
		Confidence:       confidence,
		EvaluationCount:  len(evaluations),
		AttestationCount: len(attestations),
		Breakdown:        breakdown,
		ComputedAt:       now,
		ValidUntil:       now.Add(s.ttl),
	}

	if err := s.repo.ReputationCache().Put(cache); err != nil {
		return model.ReputationCache{}, apierr.Internal(err)
	}
	return cache, nil
}

func filterByRealm(attestations []model.Attestation, realmID string) []model.Attestation {
	out := attestations[:0:0]
	for _, a := range attestations {
		if a.RealmID == realmID {
			out = append(out, a)
		}
	}
	return out
}

// parseHalfLifeDays parses a duration string of the form "Nd" (e.g.
// "90d") into a day count.
func parseHalfLifeDays(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "d") {
		return 0, fmt.Errorf("reputation: invalid decayHalfLife %q, want \"Nd\"", s)
	}
	days, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
	if err != nil {
		return 0, fmt.Errorf("reputation: invalid decayHalfLife %q: %w", s, err)
	}
	if days <= 0 {
		return 0, fmt.Errorf("reputation: decayHalfLife must be positive, got %q", s)
	}
	return days, nil
}

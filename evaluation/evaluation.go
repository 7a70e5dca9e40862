// Package evaluation implements the Evaluation Store (C7): idempotent
// upsert of directed, signed trust edges keyed by
// (fromEntity, toEntity, realmId, domain).
//
// Grounded on other_examples' Generativebots-ocx-backend-go-svc
// federation.PersistentTrustLedger — InstanceTrustRecord upsert semantics
// and decay-parameter bookkeeping — adapted from inter-instance federation
// trust to the ledger's subject-scoped evaluation edges.
package evaluation

import (
	"fmt"
	"time"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/idcodec"
	"github.com/crasofuentes-hub/irrl/keys"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

// Store is the Evaluation Store service.
type Store struct {
	repo       repository.Repository
	signingKey string
	now        func() time.Time

	// onWrite, when set, is invoked after every committed write with the
	// (toEntity, realmId, domain) key whose reputation cache must be
	// invalidated. ledger.New wires this to the reputation service via
	// OnWrite; left nil, writes simply skip invalidation (e.g. in tests
	// that only exercise the Evaluation Store in isolation).
	onWrite func(toEntity, realmID, domain string)
}

// New constructs a Store over repo, signing new evaluation content with
// signingKeyPEM.
func New(repo repository.Repository, signingKeyPEM string) *Store {
	return &Store{repo: repo, signingKey: signingKeyPEM, now: time.Now}
}

// OnWrite registers a callback fired after every committed upsert, used
// to invalidate the reputation cache for the edge's recipient.
func (s *Store) OnWrite(fn func(toEntity, realmID, domain string)) {
	s.onWrite = fn
}

// UpsertInput is the caller-supplied content of an evaluation.
type UpsertInput struct {
	FromEntity             string
	ToEntity               string
	RealmID                string
	Domain                 string
	Score                  int
	Weight                 float64
	Rationale              string
	SupportingAttestations []string
	ExpiresAt              *time.Time
}

// Upsert inserts a new evaluation, or updates the existing row for the
// same (from, to, realmId, domain) key in place, retaining its id.
func (s *Store) Upsert(in UpsertInput) (model.Evaluation, error) {
	if in.Score < 0 || in.Score > 100 {
		return model.Evaluation{}, apierr.New(apierr.CodeValidation, "score must be in [0,100]")
	}
	if in.Weight < 0 || in.Weight > 1 {
		return model.Evaluation{}, apierr.New(apierr.CodeValidation, "weight must be in [0,1]")
	}
	if _, err := s.repo.Realms().Get(in.RealmID); err != nil {
		if repository.IsNotFound(err) {
			return model.Evaluation{}, apierr.New(apierr.CodeInvalidRealm, fmt.Sprintf("realm %q not found", in.RealmID))
		}
		return model.Evaluation{}, apierr.Internal(err)
	}

	now := s.now().UTC()
	content := map[string]any{
		"fromEntity": in.FromEntity,
		"toEntity":   in.ToEntity,
		"realmId":    in.RealmID,
		"domain":     in.Domain,
		"score":      in.Score,
		"ts":         now,
	}
	id, err := idcodec.ContentID(content)
	if err != nil {
		return model.Evaluation{}, apierr.Internal(err)
	}
	signature, err := keys.SignObject(content, s.signingKey)
	if err != nil {
		return model.Evaluation{}, apierr.Internal(err)
	}

	eval := model.Evaluation{
		ID:                     id,
		FromEntity:             in.FromEntity,
		ToEntity:               in.ToEntity,
		RealmID:                in.RealmID,
		Domain:                 in.Domain,
		Score:                  in.Score,
		Weight:                 in.Weight,
		Rationale:              in.Rationale,
		SupportingAttestations: in.SupportingAttestations,
		Signature:              signature,
		ExpiresAt:              in.ExpiresAt,
		CreatedAt:              now,
	}

	stored, err := s.repo.Evaluations().Upsert(eval)
	if err != nil {
		return model.Evaluation{}, apierr.Internal(err)
	}

	if s.onWrite != nil {
		s.onWrite(in.ToEntity, in.RealmID, in.Domain)
	}
	return stored, nil
}

// Get returns a single evaluation by id.
func (s *Store) Get(id string) (model.Evaluation, error) {
	eval, err := s.repo.Evaluations().Get(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.Evaluation{}, apierr.New(apierr.CodeNotFound, fmt.Sprintf("evaluation %q not found", id))
		}
		return model.Evaluation{}, apierr.Internal(err)
	}
	return eval, nil
}

// ListIncoming returns every evaluation directed at `to` within
// (realmId, domain).
func (s *Store) ListIncoming(to, realmID, domain string) ([]model.Evaluation, error) {
	out, err := s.repo.Evaluations().ListIncoming(to, realmID, domain)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return out, nil
}

// ListOutgoing returns every evaluation originating from `from` within
// (realmId, domain).
func (s *Store) ListOutgoing(from, realmID, domain string) ([]model.Evaluation, error) {
	out, err := s.repo.Evaluations().ListOutgoing(from, realmID, domain)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return out, nil
}

// Find returns the at-most-one evaluation for the (from, to, realmId,
// domain) key.
func (s *Store) Find(from, to, realmID, domain string) (model.Evaluation, bool, error) {
	eval, found, err := s.repo.Evaluations().Find(from, to, realmID, domain)
	if err != nil {
		return model.Evaluation{}, false, apierr.Internal(err)
	}
	return eval, found, nil
}

// ListByDomain returns every evaluation within domain, the bounded edge
// set the Trust Graph Engine loads up-front for a transitive query.
func (s *Store) ListByDomain(domain string) ([]model.Evaluation, error) {
	out, err := s.repo.Evaluations().ListByDomain(domain)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return out, nil
}

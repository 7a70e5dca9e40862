package memstore

import (
	"sort"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

type evaluationStore struct {
	s      *Store
	locked bool
}

// Upsert replaces any existing row keyed by (from, to, realmId, domain)
// in place, preserving the existing row's id and createdAt.
func (e evaluationStore) Upsert(eval model.Evaluation) (model.Evaluation, error) {
	return withLock(e.s, e.locked, func() (model.Evaluation, error) {
		k := evalKey(eval.FromEntity, eval.ToEntity, eval.RealmID, eval.Domain)
		if existingID, ok := e.s.db.evalKeyToID[k]; ok {
			existing := e.s.db.evaluations[existingID]
			eval.ID = existing.ID
			eval.CreatedAt = existing.CreatedAt
		} else {
			e.s.db.evalKeyToID[k] = eval.ID
		}
		e.s.db.evaluations[eval.ID] = eval
		return eval, nil
	})
}

func (e evaluationStore) Get(id string) (model.Evaluation, error) {
	return withLock(e.s, e.locked, func() (model.Evaluation, error) {
		eval, ok := e.s.db.evaluations[id]
		if !ok {
			return model.Evaluation{}, repository.ErrNotFound
		}
		return eval, nil
	})
}

func (e evaluationStore) Find(from, to, realmID, domain string) (model.Evaluation, bool, error) {
	type result struct {
		eval  model.Evaluation
		found bool
	}
	res, err := withLock(e.s, e.locked, func() (result, error) {
		k := evalKey(from, to, realmID, domain)
		id, ok := e.s.db.evalKeyToID[k]
		if !ok {
			return result{}, nil
		}
		return result{eval: e.s.db.evaluations[id], found: true}, nil
	})
	return res.eval, res.found, err
}

func (e evaluationStore) ListIncoming(to, realmID, domain string) ([]model.Evaluation, error) {
	return withLock(e.s, e.locked, func() ([]model.Evaluation, error) {
		var out []model.Evaluation
		for _, eval := range e.s.db.evaluations {
			if eval.ToEntity == to && eval.RealmID == realmID && eval.Domain == domain {
				out = append(out, eval)
			}
		}
		sortEvaluations(out)
		return out, nil
	})
}

func (e evaluationStore) ListOutgoing(from, realmID, domain string) ([]model.Evaluation, error) {
	return withLock(e.s, e.locked, func() ([]model.Evaluation, error) {
		var out []model.Evaluation
		for _, eval := range e.s.db.evaluations {
			if eval.FromEntity == from && eval.RealmID == realmID && eval.Domain == domain {
				out = append(out, eval)
			}
		}
		sortEvaluations(out)
		return out, nil
	})
}

func (e evaluationStore) ListByDomain(domain string) ([]model.Evaluation, error) {
	return withLock(e.s, e.locked, func() ([]model.Evaluation, error) {
		var out []model.Evaluation
		for _, eval := range e.s.db.evaluations {
			if eval.Domain == domain {
				out = append(out, eval)
			}
		}
		sortEvaluations(out)
		return out, nil
	})
}

func sortEvaluations(out []model.Evaluation) {
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
}

package memstore

import (
	"sort"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

type runStore struct {
	s      *Store
	locked bool
}

func (r runStore) Create(run model.VerificationRun) error {
	return withLockErr(r.s, r.locked, func() error {
		if _, exists := r.s.db.runs[run.ID]; exists {
			return repository.ErrAlreadyExists
		}
		r.s.db.runs[run.ID] = run
		r.s.db.runsByAttn[run.AttestationID] = append(r.s.db.runsByAttn[run.AttestationID], run.ID)
		return nil
	})
}

func (r runStore) Get(id string) (model.VerificationRun, error) {
	return withLock(r.s, r.locked, func() (model.VerificationRun, error) {
		run, ok := r.s.db.runs[id]
		if !ok {
			return model.VerificationRun{}, repository.ErrNotFound
		}
		return run, nil
	})
}

func (r runStore) ListByAttestation(attestationID string) ([]model.VerificationRun, error) {
	return withLock(r.s, r.locked, func() ([]model.VerificationRun, error) {
		ids := r.s.db.runsByAttn[attestationID]
		out := make([]model.VerificationRun, 0, len(ids))
		for _, id := range ids {
			out = append(out, r.s.db.runs[id])
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
		return out, nil
	})
}

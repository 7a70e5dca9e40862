package memstore

import (
	"sort"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

type attestationStore struct {
	s      *Store
	locked bool
}

func (a attestationStore) Create(at model.Attestation) error {
	return withLockErr(a.s, a.locked, func() error {
		if _, exists := a.s.db.attestations[at.ID]; exists {
			return repository.ErrAlreadyExists
		}
		a.s.db.attestations[at.ID] = at
		return nil
	})
}

func (a attestationStore) Get(id string) (model.Attestation, error) {
	return withLock(a.s, a.locked, func() (model.Attestation, error) {
		at, ok := a.s.db.attestations[id]
		if !ok {
			return model.Attestation{}, repository.ErrNotFound
		}
		return at, nil
	})
}

func (a attestationStore) Update(at model.Attestation) error {
	return withLockErr(a.s, a.locked, func() error {
		if _, exists := a.s.db.attestations[at.ID]; !exists {
			return repository.ErrNotFound
		}
		a.s.db.attestations[at.ID] = at
		return nil
	})
}

func (a attestationStore) ListBySubject(subject string) ([]model.Attestation, error) {
	return withLock(a.s, a.locked, func() ([]model.Attestation, error) {
		var out []model.Attestation
		for _, at := range a.s.db.attestations {
			if at.Subject == subject {
				out = append(out, at)
			}
		}
		sortAttestations(out)
		return out, nil
	})
}

func (a attestationStore) ListByRealm(realmID string) ([]model.Attestation, error) {
	return withLock(a.s, a.locked, func() ([]model.Attestation, error) {
		var out []model.Attestation
		for _, at := range a.s.db.attestations {
			if at.RealmID == realmID {
				out = append(out, at)
			}
		}
		sortAttestations(out)
		return out, nil
	})
}

func (a attestationStore) ListActive() ([]model.Attestation, error) {
	return withLock(a.s, a.locked, func() ([]model.Attestation, error) {
		var out []model.Attestation
		for _, at := range a.s.db.attestations {
			if at.Status == model.AttestationVerified {
				out = append(out, at)
			}
		}
		sortAttestations(out)
		return out, nil
	})
}

func (a attestationStore) ListAll() ([]model.Attestation, error) {
	return withLock(a.s, a.locked, func() ([]model.Attestation, error) {
		out := make([]model.Attestation, 0, len(a.s.db.attestations))
		for _, at := range a.s.db.attestations {
			out = append(out, at)
		}
		sortAttestations(out)
		return out, nil
	})
}

func sortAttestations(out []model.Attestation) {
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
}

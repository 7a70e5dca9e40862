package memstore

import (
	"sort"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

type proofStore struct {
	s      *Store
	locked bool
}

func (p proofStore) Create(id string, proof model.ReputationProof) error {
	return withLockErr(p.s, p.locked, func() error {
		if _, exists := p.s.db.proofs[id]; exists {
			return repository.ErrAlreadyExists
		}
		p.s.db.proofs[id] = proof
		p.s.db.proofLatest[reputationKey(proof.Subject, proof.RealmID, proof.Domain)] = id
		return nil
	})
}

func (p proofStore) Get(id string) (model.ReputationProof, bool, error) {
	type result struct {
		proof model.ReputationProof
		found bool
	}
	res, err := withLock(p.s, p.locked, func() (result, error) {
		proof, ok := p.s.db.proofs[id]
		return result{proof: proof, found: ok}, nil
	})
	return res.proof, res.found, err
}

func (p proofStore) FindLatest(subject, realmID, domain string) (string, model.ReputationProof, bool, error) {
	type result struct {
		id    string
		proof model.ReputationProof
		found bool
	}
	res, err := withLock(p.s, p.locked, func() (result, error) {
		id, ok := p.s.db.proofLatest[reputationKey(subject, realmID, domain)]
		if !ok {
			return result{}, nil
		}
		proof, ok := p.s.db.proofs[id]
		return result{id: id, proof: proof, found: ok}, nil
	})
	return res.id, res.proof, res.found, err
}

func (p proofStore) List() ([]repository.ProofRecord, error) {
	return withLock(p.s, p.locked, func() ([]repository.ProofRecord, error) {
		out := make([]repository.ProofRecord, 0, len(p.s.db.proofs))
		for id, proof := range p.s.db.proofs {
			out = append(out, repository.ProofRecord{ID: id, Proof: proof})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	})
}

func (p proofStore) DeleteByRealm(realmID string) error {
	return withLockErr(p.s, p.locked, func() error {
		for id, proof := range p.s.db.proofs {
			if proof.RealmID == realmID {
				delete(p.s.db.proofs, id)
				delete(p.s.db.proofLatest, reputationKey(proof.Subject, proof.RealmID, proof.Domain))
			}
		}
		return nil
	})
}

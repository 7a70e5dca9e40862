// Package realm implements the Realm Store (C11): a hierarchy of trust
// contexts addressed by id or materialized path, with cycle rejection
// and rule defaulting.
//
// Grounded on the teacher's "id/path computed once, immutable thereafter"
// discipline (model.Realm-equivalent types) and CROF's strict "sections
// in canonical order, immutable once rendered" posture, carried here as
// "a realm's id, parent, path, and depth never change after Create".
package realm

import (
	"fmt"
	"strings"
	"time"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

// Store is the Realm Store service.
type Store struct {
	repo repository.Repository
	now  func() time.Time
}

// New constructs a Store over repo.
func New(repo repository.Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// CreateInput is the caller-supplied content of a new realm.
type CreateInput struct {
	ID          string
	Name        string
	Description string
	Parent      *string
	Domain      string
	Rules       model.RealmRules
	PublicKey   string
	CreatedBy   string
}

// Create computes the new realm's path/depth from its parent, rejects
// cycles, applies rule defaults, and persists it.
func (s *Store) Create(in CreateInput) (model.Realm, error) {
	if in.ID == "" {
		return model.Realm{}, apierr.New(apierr.CodeValidation, "realm id is required")
	}

	path := in.ID
	depth := 0
	if in.Parent != nil {
		parent, err := s.repo.Realms().Get(*in.Parent)
		if err != nil {
			if repository.IsNotFound(err) {
				return model.Realm{}, apierr.New(apierr.CodeInvalidParent, fmt.Sprintf("parent realm %q not found", *in.Parent))
			}
			return model.Realm{}, apierr.Internal(err)
		}
		if wouldCycle(parent.Path, in.ID) {
			return model.Realm{}, apierr.New(apierr.CodeInvalidParent, "parent path must not already contain this realm id")
		}
		path = parent.Path + "/" + in.ID
		depth = parent.Depth + 1
	}

	now := s.now().UTC()
	realm := model.Realm{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Parent:      in.Parent,
		Path:        path,
		Depth:       depth,
		Domain:      in.Domain,
		Rules:       in.Rules.WithDefaults(model.DefaultRealmRules()),
		PublicKey:   in.PublicKey,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Realms().Create(realm); err != nil {
		if repository.IsAlreadyExists(err) {
			return model.Realm{}, apierr.New(apierr.CodeAlreadyExists, fmt.Sprintf("realm %q already exists", in.ID))
		}
		return model.Realm{}, apierr.Internal(err)
	}
	return realm, nil
}

// wouldCycle reports whether id already appears as a path segment of
// parentPath — i.e. id is its own ancestor.
func wouldCycle(parentPath, id string) bool {
	for _, segment := range strings.Split(parentPath, "/") {
		if segment == id {
			return true
		}
	}
	return false
}

// Get resolves a realm by id.
func (s *Store) Get(id string) (model.Realm, error) {
	realm, err := s.repo.Realms().Get(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.Realm{}, apierr.New(apierr.CodeNotFound, fmt.Sprintf("realm %q not found", id))
		}
		return model.Realm{}, apierr.Internal(err)
	}
	return realm, nil
}

// GetByPath resolves a realm by its materialized path.
func (s *Store) GetByPath(path string) (model.Realm, error) {
	realm, err := s.repo.Realms().GetByPath(path)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.Realm{}, apierr.New(apierr.CodeNotFound, fmt.Sprintf("realm path %q not found", path))
		}
		return model.Realm{}, apierr.Internal(err)
	}
	return realm, nil
}

// List returns every realm, optionally filtered to a domain.
func (s *Store) List(domain string) ([]model.Realm, error) {
	all, err := s.repo.Realms().List()
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if domain == "" {
		return all, nil
	}
	var out []model.Realm
	for _, r := range all {
		if r.Domain == domain {
			out = append(out, r)
		}
	}
	return out, nil
}

// Children returns the direct children of parentID, and every descendant
// when recursive is true.
func (s *Store) Children(parentID string, recursive bool) ([]model.Realm, error) {
	direct, err := s.repo.Realms().Children(parentID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if !recursive {
		return direct, nil
	}

	out := append([]model.Realm{}, direct...)
	for _, child := range direct {
		grandchildren, err := s.Children(child.ID, true)
		if err != nil {
			return nil, err
		}
		out = append(out, grandchildren...)
	}
	return out, nil
}

// Delete removes a realm, cascading to its reputation-cache and proof
// rows but refusing when any attestation still references it.
func (s *Store) Delete(id string) error {
	attestations, err := s.repo.Attestations().ListByRealm(id)
	if err != nil {
		return apierr.Internal(err)
	}
	if len(attestations) > 0 {
		return apierr.New(apierr.CodeValidation, fmt.Sprintf("realm %q still has %d attestation(s)", id, len(attestations)))
	}

	if err := s.repo.Realms().Delete(id); err != nil {
		if repository.IsNotFound(err) {
			return apierr.New(apierr.CodeNotFound, fmt.Sprintf("realm %q not found", id))
		}
		return apierr.Internal(err)
	}

	if err := s.repo.ReputationCache().DeleteByRealm(id); err != nil {
		return apierr.Internal(err)
	}
	if err := s.repo.Proofs().DeleteByRealm(id); err != nil {
		return apierr.Internal(err)
	}
	return nil
}

// Package resolverreg implements the Resolver Registry (C5): a catalog of
// evidence-schema-validated verification plugins, dispatched by id or
// id@version.
//
// Grounded on the teacher's storage/casregistry backend registry — the
// same "struct of functions registered into a mutex-guarded map, with an
// explicit boot-time registration call" shape, applied to evidence
// resolvers instead of CAS backends.
package resolverreg

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
)

// VerificationResult is what a resolver's Verify returns.
type VerificationResult struct {
	Status model.VerificationStatus
	Output map[string]any
	Error  string
}

// Resolver is the capability interface every verification plugin
// implements: metadata, evidence validation, applicability, and the
// actual verification call.
type Resolver interface {
	Metadata() model.ResolverMetadata
	ValidateEvidence(evidence map[string]any) (valid bool, errs []string)
	CanResolve(claim string, evidence map[string]any) bool
	Verify(evidence map[string]any) (VerificationResult, error)
}

// Registry is the process-wide resolver catalog. Construct it with New;
// the zero value has nil maps and Register on it panics.
type Registry struct {
	mu sync.RWMutex
	// byIDVersion indexes "id@version"; byID tracks the most recently
	// registered version per bare id for unversioned lookup.
	byIDVersion map[string]Resolver
	byID        map[string]Resolver
	order       []string        // id@version, registration order, for List()
	deprecated  map[string]bool // id@version
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		byIDVersion: make(map[string]Resolver),
		byID:        make(map[string]Resolver),
		deprecated:  make(map[string]bool),
	}
}

// descriptor is a metadata-only resolver: registered for discovery but
// never invokable, matching the specification's "custom resolvers may
// additionally be persisted as metadata-only descriptors; only in-process
// resolvers can be invoked".
type descriptor struct {
	md model.ResolverMetadata
}

func (d descriptor) Metadata() model.ResolverMetadata { return d.md }

func (d descriptor) ValidateEvidence(map[string]any) (bool, []string) {
	return false, []string{"resolver " + d.md.ID + " is a metadata-only descriptor and cannot validate evidence"}
}

func (d descriptor) CanResolve(string, map[string]any) bool { return false }

func (d descriptor) Verify(map[string]any) (VerificationResult, error) {
	return VerificationResult{}, fmt.Errorf("resolverreg: %s is a metadata-only descriptor, not invokable", d.md.ID)
}

// RegisterDescriptor registers metadata describing a resolver the caller
// implements out-of-process; it is discoverable via List/Lookup but
// Verify always fails.
func (reg *Registry) RegisterDescriptor(md model.ResolverMetadata) error {
	if md.ID == "" {
		return fmt.Errorf("resolverreg: descriptor missing id")
	}
	if md.Version == "" {
		return fmt.Errorf("resolverreg: descriptor %q missing version", md.ID)
	}
	return reg.Register(descriptor{md: md})
}

func key(id, version string) string {
	return id + "@" + version
}

// Register adds r to the catalog, indexed by both id and id@version.
// Registering a resolver for an id already known makes it the
// unversioned-lookup target ("most recently registered version wins").
func (reg *Registry) Register(r Resolver) error {
	if r == nil {
		return fmt.Errorf("resolverreg: nil resolver")
	}
	md := r.Metadata()
	if md.ID == "" {
		return fmt.Errorf("resolverreg: resolver metadata missing id")
	}
	if md.Version == "" {
		return fmt.Errorf("resolverreg: resolver %q missing version", md.ID)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	k := key(md.ID, md.Version)
	if _, exists := reg.byIDVersion[k]; exists {
		return fmt.Errorf("resolverreg: %s already registered", k)
	}
	reg.byIDVersion[k] = r
	reg.byID[md.ID] = r
	reg.order = append(reg.order, k)
	return nil
}

// MustRegister panics on registration failure; used at boot for built-ins
// whose registration can never legitimately fail.
func (reg *Registry) MustRegister(r Resolver) {
	if err := reg.Register(r); err != nil {
		panic(err)
	}
}

// Lookup resolves "id" (most recently registered version) or "id@version".
func (reg *Registry) Lookup(idOrVersioned string) (Resolver, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if r, ok := reg.byIDVersion[idOrVersioned]; ok {
		return r, true
	}
	r, ok := reg.byID[idOrVersioned]
	return r, ok
}

// List returns all registered resolver metadata sorted by id, then version.
func (reg *Registry) List() []model.ResolverMetadata {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]model.ResolverMetadata, 0, len(reg.order))
	for _, k := range reg.order {
		out = append(out, reg.byIDVersion[k].Metadata())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// Deprecate marks a registered resolver (bare id or id@version) as
// deprecated. Deprecation is discovery-only bookkeeping: it does not
// block Lookup/Verify, so attestations already bound to the resolver
// remain re-verifiable.
func (reg *Registry) Deprecate(idOrVersioned string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.byIDVersion[idOrVersioned]; ok {
		md := r.Metadata()
		reg.deprecated[key(md.ID, md.Version)] = true
		return nil
	}
	if r, ok := reg.byID[idOrVersioned]; ok {
		md := r.Metadata()
		reg.deprecated[key(md.ID, md.Version)] = true
		return nil
	}
	return fmt.Errorf("resolverreg: %q not registered", idOrVersioned)
}

// IsDeprecated reports whether the resolver (bare id or id@version) has
// been deprecated.
func (reg *Registry) IsDeprecated(idOrVersioned string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if r, ok := reg.byIDVersion[idOrVersioned]; ok {
		md := r.Metadata()
		return reg.deprecated[key(md.ID, md.Version)]
	}
	if r, ok := reg.byID[idOrVersioned]; ok {
		md := r.Metadata()
		return reg.deprecated[key(md.ID, md.Version)]
	}
	return false
}

// TimeoutFor returns the upper bound a dispatch to r may run for: the
// resolver's AvgVerificationTime * 10, with a 5s floor.
func TimeoutFor(md model.ResolverMetadata) time.Duration {
	t := md.AvgVerificationTime * 10
	if t < 5*time.Second {
		return 5 * time.Second
	}
	return t
}

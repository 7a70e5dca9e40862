package resolverreg

import (
	"testing"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	md model.ResolverMetadata
}

func (f fakeResolver) Metadata() model.ResolverMetadata { return f.md }
func (f fakeResolver) ValidateEvidence(map[string]any) (bool, []string) { return true, nil }
func (f fakeResolver) CanResolve(string, map[string]any) bool           { return true }
func (f fakeResolver) Verify(map[string]any) (VerificationResult, error) {
	return VerificationResult{Status: model.VerificationVerified}, nil
}

func TestRegisterAndLookupByBareIDReturnsMostRecentVersion(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(fakeResolver{md: model.ResolverMetadata{ID: "r", Version: "1.0.0"}}))
	require.NoError(t, reg.Register(fakeResolver{md: model.ResolverMetadata{ID: "r", Version: "2.0.0"}}))

	r, ok := reg.Lookup("r")
	require.True(t, ok)
	require.Equal(t, "2.0.0", r.Metadata().Version)

	r, ok = reg.Lookup("r@1.0.0")
	require.True(t, ok)
	require.Equal(t, "1.0.0", r.Metadata().Version)
}

func TestRegisterRejectsDuplicateIDVersion(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(fakeResolver{md: model.ResolverMetadata{ID: "r", Version: "1.0.0"}}))
	err := reg.Register(fakeResolver{md: model.ResolverMetadata{ID: "r", Version: "1.0.0"}})
	require.Error(t, err)
}

func TestListSortsByIDThenVersion(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(fakeResolver{md: model.ResolverMetadata{ID: "b", Version: "1.0.0"}}))
	require.NoError(t, reg.Register(fakeResolver{md: model.ResolverMetadata{ID: "a", Version: "2.0.0"}}))
	require.NoError(t, reg.Register(fakeResolver{md: model.ResolverMetadata{ID: "a", Version: "1.0.0"}}))

	list := reg.List()
	require.Len(t, list, 3)
	require.Equal(t, "a", list[0].ID)
	require.Equal(t, "1.0.0", list[0].Version)
	require.Equal(t, "a", list[1].ID)
	require.Equal(t, "2.0.0", list[1].Version)
	require.Equal(t, "b", list[2].ID)
}

func TestRegisterDescriptorIsDiscoverableButNotInvokable(t *testing.T) {
	reg := New()
	require.NoError(t, reg.RegisterDescriptor(model.ResolverMetadata{ID: "ext", Version: "1.0.0"}))

	r, ok := reg.Lookup("ext")
	require.True(t, ok)

	_, err := r.Verify(nil)
	require.Error(t, err)
}

func TestDeprecateMarksWithoutBlockingLookup(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(fakeResolver{md: model.ResolverMetadata{ID: "r", Version: "1.0.0"}}))
	require.False(t, reg.IsDeprecated("r"))

	require.NoError(t, reg.Deprecate("r"))
	require.True(t, reg.IsDeprecated("r"))

	_, ok := reg.Lookup("r")
	require.True(t, ok, "deprecation must not remove the resolver from lookup")
}

func TestDeprecateUnknownResolverFails(t *testing.T) {
	reg := New()
	err := reg.Deprecate("nope")
	require.Error(t, err)
}

package realm

import (
	"testing"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository/memstore"
	"github.com/stretchr/testify/require"
)

func TestCreateRootRealm(t *testing.T) {
	store := New(memstore.New())
	realm, err := store.Create(CreateInput{ID: "root", Name: "Root"})
	require.NoError(t, err)
	require.Equal(t, "root", realm.Path)
	require.Equal(t, 0, realm.Depth)
	require.Equal(t, model.DefaultRealmRules().MinVerifications, realm.Rules.MinVerifications)
}

func TestCreateChildComputesPathAndDepth(t *testing.T) {
	store := New(memstore.New())
	_, err := store.Create(CreateInput{ID: "root"})
	require.NoError(t, err)

	parent := "root"
	child, err := store.Create(CreateInput{ID: "child", Parent: &parent})
	require.NoError(t, err)
	require.Equal(t, "root/child", child.Path)
	require.Equal(t, 1, child.Depth)
}

func TestCreateRejectsUnknownParent(t *testing.T) {
	store := New(memstore.New())
	parent := "missing"
	_, err := store.Create(CreateInput{ID: "child", Parent: &parent})
	require.True(t, apierr.Is(err, apierr.CodeInvalidParent))
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	store := New(memstore.New())
	_, err := store.Create(CreateInput{ID: "root"})
	require.NoError(t, err)
	_, err = store.Create(CreateInput{ID: "root"})
	require.True(t, apierr.Is(err, apierr.CodeAlreadyExists))
}

func TestChildrenRecursive(t *testing.T) {
	store := New(memstore.New())
	_, err := store.Create(CreateInput{ID: "root"})
	require.NoError(t, err)
	root := "root"
	_, err = store.Create(CreateInput{ID: "a", Parent: &root})
	require.NoError(t, err)
	a := "a"
	_, err = store.Create(CreateInput{ID: "b", Parent: &a})
	require.NoError(t, err)

	direct, err := store.Children("root", false)
	require.NoError(t, err)
	require.Len(t, direct, 1)

	all, err := store.Children("root", true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestDeleteRefusedWhenAttestationsReference(t *testing.T) {
	repo := memstore.New()
	store := New(repo)
	_, err := store.Create(CreateInput{ID: "root"})
	require.NoError(t, err)

	require.NoError(t, repo.Attestations().Create(model.Attestation{ID: "att1", RealmID: "root"}))

	err = store.Delete("root")
	require.True(t, apierr.Is(err, apierr.CodeValidation))
}

func TestDeleteSucceedsWhenUnreferenced(t *testing.T) {
	repo := memstore.New()
	store := New(repo)
	_, err := store.Create(CreateInput{ID: "root"})
	require.NoError(t, err)

	require.NoError(t, store.Delete("root"))
	_, err = store.Get("root")
	require.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestDeleteCascadesReputationCacheAndProofs(t *testing.T) {
	repo := memstore.New()
	store := New(repo)
	_, err := store.Create(CreateInput{ID: "root"})
	require.NoError(t, err)

	require.NoError(t, repo.ReputationCache().Put(model.ReputationCache{Subject: "bob", RealmID: "root", Domain: "code"}))
	require.NoError(t, repo.Proofs().Create("proof_1", model.ReputationProof{Subject: "bob", RealmID: "root", Domain: "code"}))

	require.NoError(t, store.Delete("root"))

	_, found, err := repo.ReputationCache().Get("bob", "root", "code")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = repo.Proofs().Get("proof_1")
	require.NoError(t, err)
	require.False(t, found)
}

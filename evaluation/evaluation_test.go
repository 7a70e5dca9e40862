package evaluation

import (
	"testing"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/keys"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository/memstore"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *memstore.Store) {
	t.Helper()
	repo := memstore.New()
	require.NoError(t, repo.Realms().Create(model.Realm{ID: "root", Path: "root"}))
	kp, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	return New(repo, kp.PrivateKey), repo
}

func TestUpsertInsertsNewRow(t *testing.T) {
	store, _ := newTestStore(t)
	eval, err := store.Upsert(UpsertInput{FromEntity: "a", ToEntity: "b", RealmID: "root", Domain: "code", Score: 70, Weight: 1})
	require.NoError(t, err)
	require.NotEmpty(t, eval.ID)
}

func TestUpsertUpdatesExistingRowInPlace(t *testing.T) {
	store, _ := newTestStore(t)
	first, err := store.Upsert(UpsertInput{FromEntity: "a", ToEntity: "b", RealmID: "root", Domain: "code", Score: 70, Weight: 1})
	require.NoError(t, err)

	second, err := store.Upsert(UpsertInput{FromEntity: "a", ToEntity: "b", RealmID: "root", Domain: "code", Score: 90, Weight: 0.5})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 90, second.Score)

	incoming, err := store.ListIncoming("b", "root", "code")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
}

func TestUpsertInvokesOnWriteCallback(t *testing.T) {
	store, _ := newTestStore(t)
	var gotTo, gotRealm, gotDomain string
	store.OnWrite(func(to, realmID, domain string) {
		gotTo, gotRealm, gotDomain = to, realmID, domain
	})

	_, err := store.Upsert(UpsertInput{FromEntity: "a", ToEntity: "b", RealmID: "root", Domain: "code", Score: 70, Weight: 1})
	require.NoError(t, err)
	require.Equal(t, "b", gotTo)
	require.Equal(t, "root", gotRealm)
	require.Equal(t, "code", gotDomain)
}

func TestUpsertRejectsOutOfRangeScore(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Upsert(UpsertInput{FromEntity: "a", ToEntity: "b", RealmID: "root", Domain: "code", Score: 150, Weight: 1})
	require.True(t, apierr.Is(err, apierr.CodeValidation))
}

func TestFindReturnsTheUniqueRowForAKey(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Upsert(UpsertInput{FromEntity: "a", ToEntity: "b", RealmID: "root", Domain: "code", Score: 70, Weight: 1})
	require.NoError(t, err)

	eval, found, err := store.Find("a", "b", "root", "code")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 70, eval.Score)

	_, found, err = store.Find("a", "c", "root", "code")
	require.NoError(t, err)
	require.False(t, found)
}

func TestListByDomainReturnsEveryEvaluationRegardlessOfRealm(t *testing.T) {
	store, repo := newTestStore(t)
	require.NoError(t, repo.Realms().Create(model.Realm{ID: "other", Path: "other"}))

	_, err := store.Upsert(UpsertInput{FromEntity: "a", ToEntity: "b", RealmID: "root", Domain: "code", Score: 70, Weight: 1})
	require.NoError(t, err)
	_, err = store.Upsert(UpsertInput{FromEntity: "c", ToEntity: "d", RealmID: "other", Domain: "code", Score: 60, Weight: 1})
	require.NoError(t, err)
	_, err = store.Upsert(UpsertInput{FromEntity: "a", ToEntity: "b", RealmID: "root", Domain: "design", Score: 50, Weight: 1})
	require.NoError(t, err)

	evals, err := store.ListByDomain("code")
	require.NoError(t, err)
	require.Len(t, evals, 2)
}

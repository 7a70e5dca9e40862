package reputation

import (
	"testing"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository/memstore"
	"github.com/stretchr/testify/require"
)

func TestServiceGetComputesAndCaches(t *testing.T) {
	repo := memstore.New()
	require.NoError(t, repo.Realms().Create(model.Realm{ID: "root", Path: "root", Rules: model.DefaultRealmRules()}))
	_, err := repo.Evaluations().Upsert(model.Evaluation{
		ID: "e1", FromEntity: "a", ToEntity: "bob", RealmID: "root", Domain: "code",
		Score: 80, Weight: 1, CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	svc := New(repo)
	cache, err := svc.Get("bob", "root", "code", false)
	require.NoError(t, err)
	require.InDelta(t, 80, cache.Score, 1)

	_, found, err := repo.ReputationCache().Get("bob", "root", "code")
	require.NoError(t, err)
	require.True(t, found)
}

func TestServiceInvalidateForcesRecompute(t *testing.T) {
	repo := memstore.New()
	require.NoError(t, repo.Realms().Create(model.Realm{ID: "root", Path: "root", Rules: model.DefaultRealmRules()}))
	svc := New(repo)

	_, err := svc.Get("bob", "root", "code", false)
	require.NoError(t, err)

	svc.Invalidate("bob", "root", "code")
	_, found, err := repo.ReputationCache().Get("bob", "root", "code")
	require.NoError(t, err)
	require.False(t, found)
}

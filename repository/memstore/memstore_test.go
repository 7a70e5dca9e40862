package memstore

import (
	"errors"
	"testing"
	"time"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
	"github.com/stretchr/testify/require"
)

func TestRealmCreateGetUpdate(t *testing.T) {
	s := New()
	realm := model.Realm{ID: "r1", Name: "root", Path: "r1", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, s.Realms().Create(realm))

	_, err := s.Realms().Get("missing")
	require.True(t, repository.IsNotFound(err))

	got, err := s.Realms().Get("r1")
	require.NoError(t, err)
	require.Equal(t, "root", got.Name)

	got.Name = "root-renamed"
	require.NoError(t, s.Realms().Update(got))
	got2, err := s.Realms().Get("r1")
	require.NoError(t, err)
	require.Equal(t, "root-renamed", got2.Name)
}

func TestRealmCreateDuplicateRejected(t *testing.T) {
	s := New()
	realm := model.Realm{ID: "r1", Path: "r1"}
	require.NoError(t, s.Realms().Create(realm))
	err := s.Realms().Create(realm)
	require.True(t, repository.IsAlreadyExists(err))
}

func TestEvaluationUpsertReplacesInPlace(t *testing.T) {
	s := New()
	e1 := model.Evaluation{ID: "e1", FromEntity: "a", ToEntity: "b", RealmID: "r1", Domain: "code", Score: 50, CreatedAt: time.Unix(100, 0)}
	stored, err := s.Evaluations().Upsert(e1)
	require.NoError(t, err)
	require.Equal(t, "e1", stored.ID)

	e2 := model.Evaluation{ID: "e2", FromEntity: "a", ToEntity: "b", RealmID: "r1", Domain: "code", Score: 80, CreatedAt: time.Unix(200, 0)}
	stored2, err := s.Evaluations().Upsert(e2)
	require.NoError(t, err)
	require.Equal(t, "e1", stored2.ID, "upsert must preserve the existing row's id")
	require.Equal(t, time.Unix(100, 0), stored2.CreatedAt)
	require.Equal(t, 80, stored2.Score)

	all, err := s.Evaluations().ListIncoming("b", "r1", "code")
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	s := New()
	err := s.WithTx(func(tx repository.Repository) error {
		return tx.Realms().Create(model.Realm{ID: "r1", Path: "r1"})
	})
	require.NoError(t, err)

	_, err = s.Realms().Get("r1")
	require.NoError(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := New()
	require.NoError(t, s.Realms().Create(model.Realm{ID: "r1", Path: "r1"}))

	sentinel := errors.New("boom")
	err := s.WithTx(func(tx repository.Repository) error {
		if createErr := tx.Realms().Create(model.Realm{ID: "r2", Path: "r2"}); createErr != nil {
			return createErr
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = s.Realms().Get("r2")
	require.True(t, repository.IsNotFound(err), "r2 must not survive a rolled-back transaction")
}

func TestAuditAppendAndLast(t *testing.T) {
	s := New()
	require.NoError(t, s.AuditEvents().Append(model.AuditEvent{ID: "a1", Hash: "h1"}))
	require.NoError(t, s.AuditEvents().Append(model.AuditEvent{ID: "a2", Hash: "h2", PreviousHash: "h1"}))

	last, ok, err := s.AuditEvents().Last()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a2", last.ID)

	all, err := s.AuditEvents().List()
	require.NoError(t, err)
	require.Len(t, all, 2)
}

package fakeaccountrepo_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/seatwise/go-seat-server/accounts"
	fakeaccountrepo "github.com/seatwise/go-seat-server/accounts/repofake"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	repo := fakeaccountrepo.NewFakeAccountRepo()

	account := &accounts.Account{Login: "alice", CredentialHash: "hash"}
	require.NoError(t, repo.Create(account))
	require.NotEmpty(t, account.ID)
	require.False(t, account.CreatedAt.IsZero())

	err := repo.Create(&accounts.Account{Login: "alice"})
	require.ErrorIs(t, err, accounts.ErrLoginTaken)
}

func TestGet(t *testing.T) {
	repo := fakeaccountrepo.NewFakeAccountRepo()
	require.NoError(t, repo.Create(&accounts.Account{Login: "alice"}))

	t.Run("unknown login", func(t *testing.T) {
		_, err := repo.Get("nobody")
		require.ErrorIs(t, err, accounts.ErrNotFound)
	})

	t.Run("returned account does not alias stored state", func(t *testing.T) {
		fetched, err := repo.Get("alice")
		require.NoError(t, err)
		fetched.SessionActive = true

		again, err := repo.Get("alice")
		require.NoError(t, err)
		require.False(t, again.SessionActive)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("applies the mutation", func(t *testing.T) {
		repo := fakeaccountrepo.NewFakeAccountRepo()
		require.NoError(t, repo.Create(&accounts.Account{Login: "alice"}))

		updated, err := repo.Update("alice", func(a *accounts.Account) error {
			a.SessionActive = true
			return nil
		})
		require.NoError(t, err)
		require.True(t, updated.SessionActive)

		stored, err := repo.Get("alice")
		require.NoError(t, err)
		require.True(t, stored.SessionActive)
	})

	t.Run("mutator error leaves the account untouched", func(t *testing.T) {
		repo := fakeaccountrepo.NewFakeAccountRepo()
		require.NoError(t, repo.Create(&accounts.Account{Login: "alice"}))

		boom := errors.New("boom")
		_, err := repo.Update("alice", func(a *accounts.Account) error {
			a.SessionActive = true
			return boom
		})
		require.ErrorIs(t, err, boom)

		stored, err := repo.Get("alice")
		require.NoError(t, err)
		require.False(t, stored.SessionActive)
	})

	t.Run("unknown login", func(t *testing.T) {
		repo := fakeaccountrepo.NewFakeAccountRepo()
		_, err := repo.Update("nobody", func(a *accounts.Account) error { return nil })
		require.ErrorIs(t, err, accounts.ErrNotFound)
	})

	t.Run("mutations on one login are serialized", func(t *testing.T) {
		repo := fakeaccountrepo.NewFakeAccountRepo()
		require.NoError(t, repo.Create(&accounts.Account{Login: "alice"}))

		const workers = 32
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				repo.Update("alice", func(a *accounts.Account) error {
					if a.SessionActive {
						return errors.New("taken")
					}
					a.SessionActive = true
					return nil
				})
			}()
		}
		wg.Wait()

		stored, err := repo.Get("alice")
		require.NoError(t, err)
		require.True(t, stored.SessionActive)
	})
}

func TestList(t *testing.T) {
	repo := fakeaccountrepo.NewFakeAccountRepo()
	for _, login := range []string{"carol", "alice", "bob"} {
		require.NoError(t, repo.Create(&accounts.Account{Login: login}))
	}

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "alice", list[0].Login)
	require.Equal(t, "bob", list[1].Login)
	require.Equal(t, "carol", list[2].Login)
}

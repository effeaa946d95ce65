package fakeaccountrepo

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/seatwise/go-seat-server/accounts"
)

var _ accounts.Store = (*FakeAccountRepo)(nil)

// FakeAccountRepo is an in-memory account store. It is the store used in
// tests and in dev deployments that do not need durability.
type FakeAccountRepo struct {
	lock     sync.RWMutex
	accounts map[string]*accounts.Account // login to account
	updates  map[string]*sync.Mutex       // per-login update sections
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[string]*accounts.Account),
		updates:  make(map[string]*sync.Mutex),
	}
}

func (ar *FakeAccountRepo) Create(account *accounts.Account) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if _, ok := ar.accounts[account.Login]; ok {
		return accounts.ErrLoginTaken
	}

	stored := account.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	ar.accounts[stored.Login] = stored
	account.ID = stored.ID
	account.CreatedAt = stored.CreatedAt
	return nil
}

func (ar *FakeAccountRepo) Get(login string) (*accounts.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	account, ok := ar.accounts[login]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return account.Clone(), nil
}

// Update serializes mutations per login. The mutator runs on a copy; the copy
// only replaces the stored account when the mutator returns nil.
func (ar *FakeAccountRepo) Update(login string, mutate accounts.Mutator) (*accounts.Account, error) {
	ar.updateLock(login).Lock()
	defer ar.updateLock(login).Unlock()

	ar.lock.RLock()
	stored, ok := ar.accounts[login]
	ar.lock.RUnlock()
	if !ok {
		return nil, accounts.ErrNotFound
	}

	candidate := stored.Clone()
	if err := mutate(candidate); err != nil {
		return nil, err
	}
	candidate.UpdatedAt = time.Now()

	ar.lock.Lock()
	ar.accounts[login] = candidate
	ar.lock.Unlock()
	return candidate.Clone(), nil
}

func (ar *FakeAccountRepo) List() ([]*accounts.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	list := make([]*accounts.Account, 0, len(ar.accounts))
	for _, account := range ar.accounts {
		list = append(list, account.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Login < list[j].Login
	})
	return list, nil
}

func (ar *FakeAccountRepo) updateLock(login string) *sync.Mutex {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	mu, ok := ar.updates[login]
	if !ok {
		mu = &sync.Mutex{}
		ar.updates[login] = mu
	}
	return mu
}

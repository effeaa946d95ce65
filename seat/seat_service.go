package seat

import (
	"time"

	"github.com/pkg/errors"
	"github.com/seatwise/go-seat-server/accounts"
)

// Service is the seat authority: it decides, per account, whether a caller
// may register, take the single permitted seat, release it, or override the
// subscription window. Every mutating decision runs inside the store's
// per-login critical section so two callers can never both observe an idle
// seat and both take it.
type Service struct {
	store    accounts.Store
	verifier accounts.Verifier
	policy   Policy
	nowTime  func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithVerifier replaces the default bcrypt verifier.
func WithVerifier(verifier accounts.Verifier) ServiceOption {
	return func(s *Service) {
		s.verifier = verifier
	}
}

// NewService initializes the seat authority with its account store and
// gating policy. Optional configuration can be provided via options.
func NewService(store accounts.Store, policy Policy, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("[NewService] account store is required")
	}

	service := &Service{
		store:    store,
		verifier: accounts.BcryptVerifier{},
		policy:   policy,
		nowTime:  time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// AuthResult is returned on a successful Authenticate.
type AuthResult struct {
	Login              string
	SubscriptionValid  bool
	IsAdmin            bool
	SubscriptionExpiry *time.Time
	BoundDeviceID      string
}

// Register creates a new non-admin account in the Idle state. The new
// account receives the policy's trial period; with a zero trial period the
// subscription starts unactivated and waits for an admin.
func (s *Service) Register(login, secret string) error {
	if login == "" || secret == "" {
		return ErrInvalidInput
	}

	hash, err := accounts.HashSecret(secret)
	if err != nil {
		return errors.Wrap(err, "[Service.Register] hash secret")
	}

	account := &accounts.Account{
		Login:          login,
		CredentialHash: hash,
	}
	if s.policy.DefaultTrialPeriod > 0 {
		expiry := s.nowTime().Add(s.policy.DefaultTrialPeriod)
		account.SubscriptionExpiry = &expiry
	}

	if err := s.store.Create(account); err != nil {
		if errors.Is(err, accounts.ErrLoginTaken) {
			return ErrLoginTaken
		}
		return s.storeFailure(err)
	}
	return nil
}

// Authenticate runs the seat state machine for one login. The credential
// check, the subscription gate, the seat-conflict check and the state write
// all happen inside the store's per-login critical section; any failed check
// aborts with the account unmodified.
func (s *Service) Authenticate(login, secret, deviceID string) (*AuthResult, error) {
	if login == "" || secret == "" || deviceID == "" {
		return nil, ErrInvalidInput
	}

	var result *AuthResult
	_, err := s.store.Update(login, func(account *accounts.Account) error {
		if !s.verifier.Verify(account.CredentialHash, secret) {
			return ErrInvalidCredentials
		}
		if !s.subscriptionValid(account, s.nowTime()) {
			return ErrSubscriptionExpired
		}
		if err := s.checkSeat(account, deviceID); err != nil {
			return err
		}

		if account.BoundDeviceID == nil {
			bound := deviceID
			account.BoundDeviceID = &bound
		}
		account.SessionActive = true

		result = &AuthResult{
			Login:              account.Login,
			SubscriptionValid:  true,
			IsAdmin:            account.IsAdmin,
			SubscriptionExpiry: account.SubscriptionExpiry,
			BoundDeviceID:      *account.BoundDeviceID,
		}
		return nil
	})
	if err != nil {
		return nil, s.credentialFailure(err, secret)
	}
	return result, nil
}

// Logout releases the seat. Logging out an already-idle account succeeds;
// the device binding always survives.
func (s *Service) Logout(login, secret string) error {
	if login == "" || secret == "" {
		return ErrInvalidInput
	}

	_, err := s.store.Update(login, func(account *accounts.Account) error {
		if !s.verifier.Verify(account.CredentialHash, secret) {
			return ErrInvalidCredentials
		}
		account.SessionActive = false
		return nil
	})
	if err != nil {
		return s.credentialFailure(err, secret)
	}
	return nil
}

// SetSubscription moves the target account's validity window. A past expiry
// deactivates the account for future Authenticates without evicting a
// currently bound session.
func (s *Service) SetSubscription(adminLogin, adminSecret, targetLogin string, newExpiry *time.Time) error {
	if adminLogin == "" || adminSecret == "" || targetLogin == "" {
		return ErrInvalidInput
	}
	if err := s.verifyAdmin(adminLogin, adminSecret); err != nil {
		return err
	}

	_, err := s.store.Update(targetLogin, func(account *accounts.Account) error {
		if newExpiry == nil {
			account.SubscriptionExpiry = nil
			return nil
		}
		expiry := *newExpiry
		account.SubscriptionExpiry = &expiry
		return nil
	})
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrNotFound
		}
		return s.storeFailure(err)
	}
	return nil
}

// ListAccounts returns the admin-visible summary of every account.
func (s *Service) ListAccounts(adminLogin, adminSecret string) ([]accounts.Summary, error) {
	if adminLogin == "" || adminSecret == "" {
		return nil, ErrInvalidInput
	}
	if err := s.verifyAdmin(adminLogin, adminSecret); err != nil {
		return nil, err
	}

	list, err := s.store.List()
	if err != nil {
		return nil, s.storeFailure(err)
	}

	summaries := make([]accounts.Summary, 0, len(list))
	for _, account := range list {
		summaries = append(summaries, account.Summary())
	}
	return summaries, nil
}

func (s *Service) subscriptionValid(account *accounts.Account, now time.Time) bool {
	if account.SubscriptionExpiry == nil {
		return false
	}
	if s.policy.SubscriptionModel == SubscriptionModelBoolean {
		return true
	}
	return account.SubscriptionExpiry.After(now)
}

func (s *Service) checkSeat(account *accounts.Account, deviceID string) error {
	switch s.policy.SeatPolicy {
	case SeatPolicyDeviceBound:
		if account.BoundDeviceID != nil && *account.BoundDeviceID != deviceID {
			return ErrSeatConflict
		}
		return nil
	default:
		if account.SessionActive {
			return ErrSeatConflict
		}
		return nil
	}
}

// verifyAdmin checks the admin credentials and privilege outside any update
// section; it only reads the admin account.
func (s *Service) verifyAdmin(adminLogin, adminSecret string) error {
	account, err := s.store.Get(adminLogin)
	if err != nil {
		return s.credentialFailure(err, adminSecret)
	}
	if !s.verifier.Verify(account.CredentialHash, adminSecret) {
		return ErrInvalidCredentials
	}
	if !account.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// credentialFailure normalizes the failure paths of a credential check.
// An absent login burns a comparison against the dummy credential and then
// reports the same error as a wrong secret, so callers cannot enumerate
// logins through responses or timing.
func (s *Service) credentialFailure(err error, secret string) error {
	if errors.Is(err, accounts.ErrNotFound) {
		s.verifier.Verify(accounts.DummyCredential(), secret)
		return ErrInvalidCredentials
	}
	if isDecision(err) {
		return err
	}
	return s.storeFailure(err)
}

func (s *Service) storeFailure(err error) error {
	return errors.WithMessage(ErrStoreUnavailable, err.Error())
}

// isDecision reports whether err is one of the authority's own verdicts as
// opposed to a store I/O failure.
func isDecision(err error) bool {
	for _, decision := range []error{
		ErrInvalidInput,
		ErrLoginTaken,
		ErrInvalidCredentials,
		ErrSubscriptionExpired,
		ErrSeatConflict,
		ErrForbidden,
		ErrNotFound,
	} {
		if errors.Is(err, decision) {
			return true
		}
	}
	return false
}

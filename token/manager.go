// Package token issues and validates the access tokens handed out when a
// seat is granted. Tokens are bearer proofs for resource servers; the seat
// state itself lives in the account store, so dropping a token does not
// release the seat.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims is the payload carried by an access token.
type Claims struct {
	Login    string `json:"login"`
	DeviceID string `json:"device_id,omitempty"`
	jwt.RegisteredClaims
}

// Manager creates and validates HS256 access tokens.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	nowTime func() time.Time
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func NewManager(secret string, ttl time.Duration, options ...ManagerOption) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("[NewManager] signing secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	manager := &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(manager)
	}
	return manager, nil
}

// Issue mints a token for an authenticated login. The lifetime is the
// manager's ttl capped by notBeyond, so a token never outlives the
// subscription window it was granted under.
func (m *Manager) Issue(login, deviceID string, notBeyond *time.Time) (string, error) {
	now := m.nowTime()
	expiresAt := now.Add(m.ttl)
	if notBeyond != nil && notBeyond.Before(expiresAt) {
		expiresAt = *notBeyond
	}

	claims := &Claims{
		Login:    login,
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.Issue] sign token")
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.nowTime))
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Parse] parse token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("[Manager.Parse] invalid claims")
	}
	return claims, nil
}

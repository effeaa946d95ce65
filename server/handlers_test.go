package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fakeaccountrepo "github.com/seatwise/go-seat-server/accounts/repofake"
	"github.com/seatwise/go-seat-server/internal/config"
	"github.com/seatwise/go-seat-server/server"
	"github.com/stretchr/testify/require"
)

// testConfig is a static stand-in for the viper-backed configuration.
type testConfig struct {
	seatPolicy        string
	subscriptionModel string
	trialPeriod       time.Duration
	adminLogin        string
	adminPassword     string
	allowedOrigins    []string
}

func (c testConfig) GetPort() string         { return ":0" }
func (c testConfig) GetAppName() string      { return "Seat Server" }
func (c testConfig) GetBaseURL() string      { return "http://localhost" }
func (c testConfig) GetDatabasePath() string { return "" }
func (c testConfig) GetEnv() string          { return "TEST" }

func (c testConfig) GetSeatPolicy() string                { return c.seatPolicy }
func (c testConfig) GetSubscriptionModel() string         { return c.subscriptionModel }
func (c testConfig) GetDefaultTrialPeriod() time.Duration { return c.trialPeriod }

func (c testConfig) GetAdminLogin() string         { return c.adminLogin }
func (c testConfig) GetAdminPassword() string      { return c.adminPassword }
func (c testConfig) GetTokenSecret() string        { return "test-signing-secret" }
func (c testConfig) GetTokenExpiry() time.Duration { return time.Hour }

func (c testConfig) GetAllowedOrigins() config.AllowedOrigins {
	origins := config.AllowedOrigins{}
	for _, origin := range c.allowedOrigins {
		origins[origin] = struct{}{}
	}
	return origins
}
func (c testConfig) GetAllowedMethods() string { return "GET, POST" }
func (c testConfig) GetAllowedHeaders() string { return "Content-Type, Authorization" }

var _ config.Config = testConfig{}

func defaultTestConfig() testConfig {
	return testConfig{
		trialPeriod:   30 * 24 * time.Hour,
		adminLogin:    "root",
		adminPassword: "adminpw",
	}
}

func newTestServer(t *testing.T, cfg testConfig) *server.Server {
	t.Helper()

	s, err := server.New(cfg, fakeaccountrepo.NewFakeAccountRepo())
	require.NoError(t, err)
	return s
}

// doJSON posts a JSON body and decodes the JSON response.
func doJSON(t *testing.T, s *server.Server, method, path string, body any, modify ...func(*http.Request)) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range modify {
		m(req)
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	return rec.Code, payload
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates the account", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		code, payload := doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": "alice", "password": "p1"})
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "success", payload["status"])
	})

	t.Run("duplicate login", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": "alice", "password": "p1"})
		code, payload := doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": "alice", "password": "p2"})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "error", payload["status"])
	})

	t.Run("missing fields", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		code, _ := doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": "alice"})
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		req := httptest.NewRequest(http.MethodPost, server.RouteAPIRegister, bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthEndpoint(t *testing.T) {
	register := func(t *testing.T, s *server.Server, login, password string) {
		t.Helper()
		code, _ := doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": login, "password": password})
		require.Equal(t, http.StatusOK, code)
	}

	t.Run("grants the seat and an access token", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())
		register(t, s, "alice", "p1")

		code, payload := doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
			map[string]string{"login": "alice", "password": "p1", "device_id": "dev-A"})
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "success", payload["status"])
		require.Equal(t, true, payload["subscription_active"])
		require.Equal(t, false, payload["is_admin"])
		require.NotEmpty(t, payload["access_token"])
	})

	t.Run("wrong secret and unknown login both map to 401 with one message", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())
		register(t, s, "alice", "p1")

		codeWrong, payloadWrong := doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
			map[string]string{"login": "alice", "password": "bad", "device_id": "dev-A"})
		codeUnknown, payloadUnknown := doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
			map[string]string{"login": "nobody", "password": "p1", "device_id": "dev-A"})

		require.Equal(t, http.StatusUnauthorized, codeWrong)
		require.Equal(t, http.StatusUnauthorized, codeUnknown)
		require.Equal(t, payloadWrong["message"], payloadUnknown["message"])
	})

	t.Run("expired subscription maps to 403", func(t *testing.T) {
		cfg := defaultTestConfig()
		cfg.trialPeriod = 0 // accounts start unactivated
		s := newTestServer(t, cfg)
		register(t, s, "alice", "p1")

		code, _ := doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
			map[string]string{"login": "alice", "password": "p1", "device_id": "dev-A"})
		require.Equal(t, http.StatusForbidden, code)
	})

	t.Run("busy seat maps to 403", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())
		register(t, s, "alice", "p1")

		code, _ := doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
			map[string]string{"login": "alice", "password": "p1", "device_id": "dev-A"})
		require.Equal(t, http.StatusOK, code)

		code, _ = doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
			map[string]string{"login": "alice", "password": "p1", "device_id": "dev-B"})
		require.Equal(t, http.StatusForbidden, code)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	s := newTestServer(t, defaultTestConfig())

	doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
		map[string]string{"login": "alice", "password": "p1"})
	doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
		map[string]string{"login": "alice", "password": "p1", "device_id": "dev-A"})

	code, payload := doJSON(t, s, http.MethodPost, server.RouteAPILogout,
		map[string]string{"login": "alice", "password": "p1"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "success", payload["status"])

	// The seat is free again for another device.
	code, _ = doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
		map[string]string{"login": "alice", "password": "p1", "device_id": "dev-B"})
	require.Equal(t, http.StatusOK, code)
}

func TestSessionEndpoint(t *testing.T) {
	s := newTestServer(t, defaultTestConfig())

	doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
		map[string]string{"login": "alice", "password": "p1"})
	_, authPayload := doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
		map[string]string{"login": "alice", "password": "p1", "device_id": "dev-A"})
	accessToken, _ := authPayload["access_token"].(string)
	require.NotEmpty(t, accessToken)

	t.Run("valid token", func(t *testing.T) {
		code, payload := doJSON(t, s, http.MethodGet, server.RouteAPISession, nil,
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+accessToken) })
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "alice", payload["login"])
		require.Equal(t, "dev-A", payload["device_id"])
	})

	t.Run("missing bearer token", func(t *testing.T) {
		code, _ := doJSON(t, s, http.MethodGet, server.RouteAPISession, nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("garbage token", func(t *testing.T) {
		code, _ := doJSON(t, s, http.MethodGet, server.RouteAPISession, nil,
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") })
		require.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestSetSubscriptionEndpoint(t *testing.T) {
	t.Run("admin reactivates an unactivated account", func(t *testing.T) {
		cfg := defaultTestConfig()
		cfg.trialPeriod = 0
		s := newTestServer(t, cfg)

		doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": "alice", "password": "p1"})

		code, _ := doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
			map[string]string{"login": "alice", "password": "p1", "device_id": "dev-A"})
		require.Equal(t, http.StatusForbidden, code)

		expiry := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
		code, payload := doJSON(t, s, http.MethodPost, server.RouteAdminSubscription,
			map[string]any{"login": "root", "password": "adminpw", "target_login": "alice", "new_expiry": expiry})
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "success", payload["status"])

		code, _ = doJSON(t, s, http.MethodPost, server.RouteAPIAuth,
			map[string]string{"login": "alice", "password": "p1", "device_id": "dev-A"})
		require.Equal(t, http.StatusOK, code)
	})

	t.Run("non-admin caller maps to 403", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": "alice", "password": "p1"})
		doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": "bob", "password": "p2"})

		expiry := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
		code, _ := doJSON(t, s, http.MethodPost, server.RouteAdminSubscription,
			map[string]any{"login": "alice", "password": "p1", "target_login": "bob", "new_expiry": expiry})
		require.Equal(t, http.StatusForbidden, code)
	})

	t.Run("bad admin credentials map to 401", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		code, _ := doJSON(t, s, http.MethodPost, server.RouteAdminSubscription,
			map[string]any{"login": "root", "password": "wrong", "target_login": "alice", "new_expiry": nil})
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("unknown target maps to 404", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		code, _ := doJSON(t, s, http.MethodPost, server.RouteAdminSubscription,
			map[string]any{"login": "root", "password": "adminpw", "target_login": "nobody", "new_expiry": nil})
		require.Equal(t, http.StatusNotFound, code)
	})
}

func TestListAccountsEndpoint(t *testing.T) {
	t.Run("admin sees every account without credentials", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": "alice", "password": "p1"})

		code, payload := doJSON(t, s, http.MethodGet, server.RouteAdminAccounts, nil,
			func(r *http.Request) { r.SetBasicAuth("root", "adminpw") })
		require.Equal(t, http.StatusOK, code)

		users, ok := payload["users"].([]any)
		require.True(t, ok)
		require.Len(t, users, 2) // alice plus the bootstrap admin

		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		require.NotContains(t, string(raw), "credential")
		require.NotContains(t, string(raw), "$2a$")
	})

	t.Run("missing basic auth maps to 401", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		code, _ := doJSON(t, s, http.MethodGet, server.RouteAdminAccounts, nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("non-admin caller maps to 403", func(t *testing.T) {
		s := newTestServer(t, defaultTestConfig())

		doJSON(t, s, http.MethodPost, server.RouteAPIRegister,
			map[string]string{"login": "alice", "password": "p1"})

		code, _ := doJSON(t, s, http.MethodGet, server.RouteAdminAccounts, nil,
			func(r *http.Request) { r.SetBasicAuth("alice", "p1") })
		require.Equal(t, http.StatusForbidden, code)
	})
}

func TestCorsHeaders(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.allowedOrigins = []string{"https://app.example.com"}
	s := newTestServer(t, cfg)

	t.Run("allowed origin is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, server.RouteAPIRegister,
			bytes.NewBufferString(`{"login":"alice","password":"p1"}`))
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, server.RouteAPIRegister,
			bytes.NewBufferString(`{"login":"bob","password":"p2"}`))
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

package server

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/seatwise/go-seat-server/accounts"
	"github.com/seatwise/go-seat-server/internal/config"
	"github.com/seatwise/go-seat-server/seat"
	"github.com/seatwise/go-seat-server/token"
)

// Server is the thin JSON request layer over the seat authority. All
// decisions live in seat.Service; the server only maps requests to
// operations and verdicts to status codes.
type Server struct {
	env    string // Environment (e.g., "DEV", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config
	store  accounts.Store
	seats  *seat.Service
	tokens *token.Manager
}

func New(cfg config.Config, store accounts.Store) (*Server, error) {
	policy, err := policyFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("[Server New] invalid seat policy configuration: %w", err)
	}

	seatService, err := seat.NewService(store, policy)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create seat service: %w", err)
	}

	tokenSecret := cfg.GetTokenSecret()
	if tokenSecret == "" {
		tokenSecret = randomSecret()
		log.Warn().Msg("no token secret configured; generated one - issued tokens will not survive a restart")
	}
	tokens, err := token.NewManager(tokenSecret, cfg.GetTokenExpiry())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token manager: %w", err)
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		store:  store,
		seats:  seatService,
		tokens: tokens,
	}
	s.env = cfg.GetEnv()

	// Bootstrap: ensure the initial admin account exists
	if err := s.BootstrapAdmin(); err != nil {
		return nil, fmt.Errorf("[Server New] failed to bootstrap admin account: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Info().Str("route", route).Msg("registered")
	}
}

func policyFromConfig(cfg config.Config) (seat.Policy, error) {
	model, err := seat.ParseSubscriptionModel(cfg.GetSubscriptionModel())
	if err != nil {
		return seat.Policy{}, err
	}
	seatPolicy, err := seat.ParseSeatPolicy(cfg.GetSeatPolicy())
	if err != nil {
		return seat.Policy{}, err
	}
	return seat.Policy{
		SubscriptionModel:  model,
		SeatPolicy:         seatPolicy,
		DefaultTrialPeriod: cfg.GetDefaultTrialPeriod(),
	}, nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("server: failed to generate token secret: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

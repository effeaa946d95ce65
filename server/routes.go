package server

func (s *Server) initRoutes() {
	// Account lifecycle
	s.RegisterRouteHandler("POST "+RouteAPIRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIAuth, ChainMiddleware(s.AuthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPILogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// Token introspection for resource servers
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))

	// Admin overrides (credential-gated inside the seat authority)
	s.RegisterRouteHandler("POST "+RouteAdminSubscription, ChainMiddleware(s.SetSubscriptionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminAccounts, ChainMiddleware(s.ListAccountsHandler(), s.APIMiddleware()...))
}

package server

const (
	RouteAPIRegister = "/api/register"
	RouteAPIAuth     = "/api/auth"
	RouteAPILogout   = "/api/logout"
	RouteAPISession  = "/api/session"

	RouteAdminSubscription = "/api/admin/subscription"
	RouteAdminAccounts     = "/api/admin/accounts"
)

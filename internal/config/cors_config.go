package config

import "strings"

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type Cors struct{}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (Cors) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, origin := range v.GetStringSlice("cors.allowed_origins") {
		origins[origin] = nullValue{}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return v.GetString("cors.allowed_methods")
}

func (Cors) GetAllowedHeaders() string {
	return v.GetString("cors.allowed_headers")
}

// Package metrics defines Prometheus collectors for the auth service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the service's Prometheus collectors. A single instance is
// constructed in main and passed to the components that record into it.
type Metrics struct {
	LoginAttempts        *prometheus.CounterVec
	TokenRefreshes       *prometheus.CounterVec
	PermissionCacheHits  prometheus.Counter
	PermissionCacheMiss  prometheus.Counter
	RateLimitRejections  *prometheus.CounterVec
	ExpiredTokensSwept   prometheus.Counter
}

// New registers the auth service collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		TokenRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_refreshes_total",
			Help: "Refresh token exchanges by outcome.",
		}, []string{"outcome"}),
		PermissionCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_permission_cache_hits_total",
			Help: "Permission cache lookups served from memory.",
		}),
		PermissionCacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_permission_cache_misses_total",
			Help: "Permission cache lookups that queried the store.",
		}),
		RateLimitRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_rate_limit_rejections_total",
			Help: "Requests rejected by rate limiting, by limiter.",
		}, []string{"limiter"}),
		ExpiredTokensSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_expired_tokens_swept_total",
			Help: "Expired refresh tokens removed by the periodic sweep.",
		}),
	}
}

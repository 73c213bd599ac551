package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SwipesTotal counts recorded swipes by verdict ("like" or "pass").
	SwipesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dateflix_swipes_total",
		Help: "Swipes appended to the ledger, by verdict.",
	}, []string{"verdict"})

	MatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dateflix_matches_total",
		Help: "Matches created by reconciliation.",
	})

	MatchCheckFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dateflix_match_check_failures_total",
		Help: "Reconciliation runs that failed after the swipe was stored.",
	})

	// InvitationsTotal counts invitation operations by outcome
	// (created, accepted, expired, not_found, failed).
	InvitationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dateflix_invitations_total",
		Help: "Invitation operations by outcome.",
	}, []string{"outcome"})

	CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dateflix_catalog_requests_total",
		Help: "Movie catalog requests by endpoint and result.",
	}, []string{"endpoint", "result"})

	CatalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dateflix_catalog_request_duration_seconds",
		Help:    "Movie catalog request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Decision results.
const (
	ResultAllowed = "allowed"
	ResultDenied  = "denied"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

var (
	// AuthzDecisionsTotal counts authorization decisions.
	AuthzDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"resource", "action", "result"},
	)

	// AuthzMemberLookupsTotal counts membership resolutions.
	AuthzMemberLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_member_lookups_total",
			Help: "Total number of membership resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// HttpRequestsTotal counts HTTP requests by route and status.
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HttpRequestDurationSeconds measures request latency.
	HttpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"method", "route"},
	)
)

// Collectors lists the application collectors.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		AuthzDecisionsTotal,
		AuthzMemberLookupsTotal,
		HttpRequestsTotal,
		HttpRequestDurationSeconds,
	}
}

// RecordDecision counts one authorization decision.
func RecordDecision(resource, action, result string) {
	AuthzDecisionsTotal.WithLabelValues(resource, action, result).Inc()
}

// RecordMemberLookup counts one membership resolution.
func RecordMemberLookup(outcome string) {
	AuthzMemberLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordRequest counts one HTTP request.
func RecordRequest(method, route string, status int, elapsed time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HttpRequestDurationSeconds.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Copyright 2017 uSwitch
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package creds

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHit = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "creds",
			Name:      "cache_hit_total",
			Help:      "Number of credential requests served from cache",
		},
	)

	cacheMiss = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "creds",
			Name:      "cache_miss_total",
			Help:      "Number of credential requests that waited on a refresh",
		},
	)

	refreshError = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "creds",
			Name:      "refresh_errors_total",
			Help:      "Number of failed credential refreshes",
		},
	)

	providerError = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "creds",
			Name:      "provider_errors_total",
			Help:      "Number of failed resolutions per provider",
		},
		[]string{"provider"},
	)

	remoteFetchError = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "creds",
			Name:      "remote_fetch_errors_total",
			Help:      "Number of failed fetches against remote credential endpoints",
		},
		[]string{"endpoint"},
	)

	processError = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "creds",
			Name:      "process_errors_total",
			Help:      "Number of failed credential_process executions",
		},
	)

	processDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "awscreds",
			Subsystem: "creds",
			Name:      "process_duration_seconds",
			Help:      "Bucketed histogram of credential_process execution timings",

			// 1ms to 5min
			Buckets: prometheus.ExponentialBuckets(.001, 2, 13),
		},
	)
)

func init() {
	prometheus.MustRegister(cacheHit)
	prometheus.MustRegister(cacheMiss)
	prometheus.MustRegister(refreshError)
	prometheus.MustRegister(providerError)
	prometheus.MustRegister(remoteFetchError)
	prometheus.MustRegister(processError)
	prometheus.MustRegister(processDuration)
}

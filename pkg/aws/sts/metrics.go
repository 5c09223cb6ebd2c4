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
package sts

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "awscreds",
			Subsystem: "sts",
			Name:      "session_cache_size",
			Help:      "Current number of cached assume-role sessions",
		})

	sessionCacheHit = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "sts",
			Name:      "session_cache_hit_total",
			Help:      "Number of assume-role requests served from the session cache",
		},
	)

	sessionCacheMiss = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "sts",
			Name:      "session_cache_miss_total",
			Help:      "Number of assume-role requests that called STS",
		},
	)

	errorIssuing = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "sts",
			Name:      "issuing_errors_total",
			Help:      "Number of errors issuing assume-role credentials",
		},
	)

	assumeRole = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "awscreds",
			Subsystem: "sts",
			Name:      "assumerole_timing_seconds",
			Help:      "Bucketed histogram of assumeRole timings",

			// 1ms to 5min
			Buckets: prometheus.ExponentialBuckets(.001, 2, 13),
		},
	)

	assumeRoleExecuting = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "awscreds",
			Subsystem: "sts",
			Name:      "assumerole_current",
			Help:      "Number of assume role calls currently executing",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionCacheSize)
	prometheus.MustRegister(sessionCacheHit)
	prometheus.MustRegister(sessionCacheMiss)
	prometheus.MustRegister(errorIssuing)
	prometheus.MustRegister(assumeRole)
	prometheus.MustRegister(assumeRoleExecuting)
}

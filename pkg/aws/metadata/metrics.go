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
package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	handlerTimer = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "awscreds",
			Subsystem: "metadata",
			Name:      "handler_latency_seconds",
			Help:      "Bucketed histogram of handler timings",

			// 1ms to 5min
			Buckets: prometheus.ExponentialBuckets(.001, 2, 13),
		},
		[]string{"handler"},
	)

	credentialFetchError = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "metadata",
			Name:      "credential_fetch_errors_total",
			Help:      "Number of errors resolving credentials for a request",
		},
		[]string{"handler"},
	)

	credentialEncodeError = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "metadata",
			Name:      "credential_encode_errors_total",
			Help:      "Number of errors encoding credentials for a request",
		},
		[]string{"handler"},
	)

	success = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "metadata",
			Name:      "success_total",
			Help:      "Number of successful responses from a handler",
		},
		[]string{"handler"},
	)

	responses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awscreds",
			Subsystem: "metadata",
			Name:      "responses_total",
			Help:      "Responses per handler and status code",
		},
		[]string{"handler", "code"},
	)
)

func init() {
	prometheus.MustRegister(handlerTimer)
	prometheus.MustRegister(credentialFetchError)
	prometheus.MustRegister(credentialEncodeError)
	prometheus.MustRegister(success)
	prometheus.MustRegister(responses)
}

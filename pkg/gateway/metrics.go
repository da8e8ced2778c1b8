// Copyright (c) 2026, Verdant Labs.  All rights reserved.
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

package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	identifyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantgate_identify_requests_total",
			Help: "Total number of identification requests by outcome",
		},
		[]string{"outcome"},
	)

	identifyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plantgate_identify_duration_seconds",
			Help:    "Identification request latency in seconds by outcome",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plantgate_cache_hits_total",
			Help: "Total number of identification requests served from cache",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plantgate_cache_misses_total",
			Help: "Total number of identification requests that required an upstream call",
		},
	)
)

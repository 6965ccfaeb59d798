// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "filmify",
		Subsystem: "pipeline",
		Name:      "stage_seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"stage"})
	ModelScore = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "filmify",
		Subsystem: "pipeline",
		Name:      "model_r2_score",
	})
	BuildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "filmify",
		Subsystem: "pipeline",
		Name:      "build_total",
	}, []string{"result"})
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "filmify",
		Subsystem: "pipeline",
		Name:      "cache_hits_total",
	})
)

// Copyright 2026 The bierverify Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package verify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bierproto/bierverify/pkg/log"
	"github.com/bierproto/bierverify/pkg/private/serrors"
)

// These are the metrics exported by a verification run.
var (
	PositionsTotalMeta = MetricMeta{
		Name:   "bierverify_positions_total",
		Help:   "Total number of checked bit positions, by verdict.",
		Labels: []string{"scenario", "kind", "verdict"},
	}
	ScenarioPassMeta = MetricMeta{
		Name:   "bierverify_scenario_pass",
		Help:   "Whether the scenario passed (1) or failed (0).",
		Labels: []string{"scenario"},
	}
	ReferenceCountMeta = MetricMeta{
		Name:   "bierverify_reference_count",
		Help:   "Number of packets expected at every authorized position.",
		Labels: []string{"scenario"},
	}
	ArtifactsTotalMeta = MetricMeta{
		Name:   "bierverify_artifacts_total",
		Help:   "Total number of loaded artifacts, by result.",
		Labels: []string{"scenario", "kind", "result"},
	}
	LogEntriesTotalMeta = MetricMeta{
		Name:   "bierverify_log_entries_total",
		Help:   "Total number of log entries emitted, by level.",
		Labels: []string{"level"},
	}
)

type MetricMeta struct {
	Name   string
	Help   string
	Labels []string
}

func (mm *MetricMeta) NewCounterVec(reg prometheus.Registerer) *prometheus.CounterVec {
	return promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: mm.Name,
			Help: mm.Help,
		},
		mm.Labels,
	)
}

func (mm *MetricMeta) NewGaugeVec(reg prometheus.Registerer) *prometheus.GaugeVec {
	return promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: mm.Name,
			Help: mm.Help,
		},
		mm.Labels,
	)
}

// Metrics records the outcome of verification runs. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry        *prometheus.Registry
	PositionsTotal  *prometheus.CounterVec
	ScenarioPass    *prometheus.GaugeVec
	ReferenceCount  *prometheus.GaugeVec
	ArtifactsTotal  *prometheus.CounterVec
	LogEntriesTotal *prometheus.CounterVec
}

// NewMetrics creates the metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		Registry:        reg,
		PositionsTotal:  PositionsTotalMeta.NewCounterVec(reg),
		ScenarioPass:    ScenarioPassMeta.NewGaugeVec(reg),
		ReferenceCount:  ReferenceCountMeta.NewGaugeVec(reg),
		ArtifactsTotal:  ArtifactsTotalMeta.NewCounterVec(reg),
		LogEntriesTotal: LogEntriesTotalMeta.NewCounterVec(reg),
	}
}

// EntriesCounter returns the log entries counter for log.Setup.
func (m *Metrics) EntriesCounter() log.EntriesCounter {
	if m == nil {
		return log.EntriesCounter{}
	}
	return log.EntriesCounter{
		Debug: m.LogEntriesTotal.WithLabelValues("debug"),
		Info:  m.LogEntriesTotal.WithLabelValues("info"),
		Error: m.LogEntriesTotal.WithLabelValues("error"),
	}
}

func (m *Metrics) observe(r *Report) {
	if m == nil {
		return
	}
	pass := 0.0
	if r.Pass {
		pass = 1
	}
	m.ScenarioPass.WithLabelValues(r.Scenario).Set(pass)
	if r.Result.HasReference {
		m.ReferenceCount.WithLabelValues(r.Scenario).Set(float64(r.Result.Reference))
	}
	for _, p := range r.Result.Positions {
		m.PositionsTotal.WithLabelValues(r.Scenario, p.Ref.Kind.String(),
			p.Verdict.String()).Inc()
		for _, ob := range p.Observations {
			result := "ok"
			switch {
			case ob.Missing():
				result = "missing"
			case ob.Err != nil:
				result = "error"
			}
			m.ArtifactsTotal.WithLabelValues(r.Scenario, ob.Artifact.Kind.String(),
				result).Inc()
		}
	}
}

// WriteTextfile writes all metrics in the text exposition format to file,
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(file string) error {
	if err := prometheus.WriteToTextfile(file, m.Registry); err != nil {
		return serrors.Wrap("writing metrics", err, "file", file)
	}
	return nil
}

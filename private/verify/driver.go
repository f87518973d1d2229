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
	"context"
	"sort"

	"github.com/bierproto/bierverify/pkg/bier"
	"github.com/bierproto/bierverify/pkg/bier/mapping"
	"github.com/bierproto/bierverify/pkg/log"
	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/trace"
)

// Scenario is one bit-string checked against the traces of one run.
type Scenario struct {
	Name      string
	BitString bier.BitString
	// BIFT is the forwarding table identifier. It is reported and substituted
	// into artifact name templates.
	BIFT string
	// ExpectedCount pins the reference count if it is set. A pinned count of
	// zero expects no traffic at any position.
	ExpectedCount *int
	// LinksOnly skips all node positions.
	LinksOnly bool
	// Skip lists positions that are not checked.
	Skip []uint
	// TraceDir is the directory that holds the artifacts of the run.
	TraceDir string
}

// Driver runs scenarios against a mapping.
type Driver struct {
	// Mapping resolves bit positions.
	Mapping mapping.Resolver
	// Reader returns the artifact reader of a scenario.
	Reader func(Scenario) trace.Reader
	// Naming derives artifact names. Its BIFT is replaced by the scenario's.
	Naming trace.Naming
	// Parallelism bounds the concurrent artifact loads per scenario.
	Parallelism int
	// Metrics is optional.
	Metrics *Metrics
}

// Run checks a single scenario. The returned error is only set for fatal
// problems, in which case the report is nil.
func (d *Driver) Run(ctx context.Context, s Scenario) (*Report, error) {
	ctx, logger := log.WithLabels(ctx, "scenario", s.Name)
	if d.Mapping == nil || d.Reader == nil {
		return nil, serrors.New("driver not initialized")
	}
	naming := d.Naming
	naming.BIFT = s.BIFT
	opts := []Option{
		WithNaming(naming),
		WithParallelism(d.Parallelism),
		WithSkip(s.Skip...),
	}
	if s.ExpectedCount != nil {
		opts = append(opts, WithReference(*s.ExpectedCount))
	}
	if s.LinksOnly {
		opts = append(opts, WithLinksOnly())
	}

	res, err := ComputeExpectation(ctx, s.BitString, d.Mapping, d.Reader(s), opts...)
	if err != nil {
		return nil, serrors.WrapNoStack("checking scenario", err, "scenario", s.Name,
			"bitstring", s.BitString)
	}
	r := newReport(s, res)
	d.Metrics.observe(r)
	if r.Pass {
		logger.Info("Scenario passed", "positions", len(res.Positions),
			"reference", res.Reference)
	} else {
		logger.Info("Scenario failed", "positions", len(res.Positions),
			"mismatch", res.Count(Mismatch), "inconclusive", res.Count(Inconclusive),
			"errors", res.Errors())
	}
	return r, nil
}

// RunAll runs all scenarios in order of their names. A fatal error of one
// scenario does not stop the others; the reports of failed scenarios are
// missing from the result and their errors are combined in the returned
// error. Cancellation of ctx stops the run.
func (d *Driver) RunAll(ctx context.Context, scenarios []Scenario) ([]*Report, error) {
	sorted := append([]Scenario(nil), scenarios...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var reports []*Report
	var errs serrors.List
	for _, s := range sorted {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		r, err := d.Run(ctx, s)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return reports, ctxErr
			}
			errs = append(errs, err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, errs.ToError()
}

// Pass reports whether all reports pass.
func Pass(reports []*Report) bool {
	for _, r := range reports {
		if !r.Pass {
			return false
		}
	}
	return true
}

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

package trace

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/bierproto/bierverify/pkg/log"
)

// DefaultParallelism is the default number of concurrent artifact loads.
const DefaultParallelism = 8

// Observation is the outcome of loading one artifact.
type Observation struct {
	Artifact Artifact
	Count    int
	Err      error
}

// Missing reports whether the artifact does not exist.
func (o Observation) Missing() bool {
	return errors.Is(o.Err, ErrMissingArtifact)
}

// LoadAll loads all artifacts concurrently, with at most parallelism loads in
// flight. The result has one observation per artifact, in input order. Errors
// of individual artifacts are recorded in their observation; LoadAll only
// fails if ctx is done.
func LoadAll(ctx context.Context, r Reader, artifacts []Artifact,
	parallelism int) ([]Observation, error) {

	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	logger := log.FromCtx(ctx)
	obs := make([]Observation, len(artifacts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, a := range artifacts {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			n, err := r.Count(gCtx, a)
			if err != nil && gCtx.Err() != nil {
				return gCtx.Err()
			}
			obs[i] = Observation{Artifact: a, Count: n, Err: err}
			if err != nil {
				logger.Debug("Artifact not loaded", "artifact", a.Name, "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return obs, nil
}

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

// Package verify decides whether the traffic observed during an emulation run
// matches the paths encoded in a BIER bit-string.
//
// For every bit position up to the most significant set bit, the associated
// artifacts are loaded: the application log of the receiver for node
// positions, and the captures of both link endpoints for link positions. A
// position whose bit is 0 must not see any packet. A position whose bit is 1
// must see exactly the reference count at every artifact. The reference count
// is established by the first expected position, in ascending order, whose
// artifacts show traffic, unless the scenario pins it.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/bierproto/bierverify/pkg/bier"
	"github.com/bierproto/bierverify/pkg/bier/mapping"
	"github.com/bierproto/bierverify/pkg/log"
	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/trace"
)

// ErrCountMismatch indicates that an artifact shows a different number of
// packets than expected.
var ErrCountMismatch = errors.New("count mismatch")

// Expectation is the traffic expected at a bit position.
type Expectation struct {
	// Traffic is set if the position's bit is 1.
	Traffic bool
	// Count is the number of packets expected at every artifact. It is only
	// meaningful if Traffic is set and a reference was established.
	Count int
}

// NotExpected is the expectation of positions whose bit is 0.
var NotExpected = Expectation{}

// Expected returns the expectation of a position whose bit is 1.
func Expected(count int) Expectation {
	return Expectation{Traffic: true, Count: count}
}

func (e Expectation) String() string {
	if !e.Traffic {
		return "none"
	}
	return fmt.Sprintf("%d", e.Count)
}

// Verdict is the outcome of checking one bit position.
type Verdict int

const (
	// Match means every artifact shows the expected count.
	Match Verdict = iota
	// Mismatch means at least one artifact deviates from the expectation, or
	// a required artifact is missing or undecodable.
	Mismatch
	// Inconclusive means no traffic was expected, no artifact showed traffic,
	// but at least one artifact is missing.
	Inconclusive
	// Skipped means the position was excluded from the check.
	Skipped
)

func (v Verdict) String() string {
	switch v {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case Inconclusive:
		return "inconclusive"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(text []byte) error {
	for _, c := range []Verdict{Match, Mismatch, Inconclusive, Skipped} {
		if c.String() == string(text) {
			*v = c
			return nil
		}
	}
	return serrors.New("unknown verdict", "verdict", string(text))
}

// Position is the check result of one bit position.
type Position struct {
	Ref         mapping.Ref
	Bit         bool
	Expectation Expectation
	// Observations holds one entry per artifact in artifact order. It is empty
	// for skipped positions.
	Observations []trace.Observation
	Verdict      Verdict
	// Observed is the first count that deviates from the expectation. It is
	// only set for count mismatches.
	Observed int
	// Err describes why the verdict is not Match.
	Err error
}

// Result is the outcome of checking a bit-string.
type Result struct {
	BitString bier.BitString
	// Reference is the reference count. It is only meaningful if
	// HasReference is set.
	Reference    int
	HasReference bool
	// ReferenceFrom is the position that established the reference. It is
	// not set if the reference was pinned.
	ReferenceFrom *uint
	Positions     []Position
}

// Pass reports whether every checked position matches.
func (r Result) Pass() bool {
	for _, p := range r.Positions {
		if p.Verdict != Match && p.Verdict != Skipped {
			return false
		}
	}
	return true
}

// Count returns the number of positions with verdict v.
func (r Result) Count(v Verdict) int {
	var n int
	for _, p := range r.Positions {
		if p.Verdict == v {
			n++
		}
	}
	return n
}

// Errors returns the errors of all positions that did not match.
func (r Result) Errors() serrors.List {
	var errs serrors.List
	for _, p := range r.Positions {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return errs
}

type options struct {
	naming      trace.Naming
	parallelism int
	reference   *int
	linksOnly   bool
	skip        map[uint]bool
}

// Option configures ComputeExpectation.
type Option func(*options)

// WithNaming sets the artifact naming.
func WithNaming(n trace.Naming) Option {
	return func(o *options) { o.naming = n }
}

// WithParallelism bounds the number of concurrent artifact loads.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// WithReference pins the reference count.
func WithReference(count int) Option {
	return func(o *options) { o.reference = &count }
}

// WithLinksOnly skips all node positions.
func WithLinksOnly() Option {
	return func(o *options) { o.linksOnly = true }
}

// WithSkip skips the given positions.
func WithSkip(positions ...uint) Option {
	return func(o *options) {
		if o.skip == nil {
			o.skip = make(map[uint]bool, len(positions))
		}
		for _, p := range positions {
			o.skip[p] = true
		}
	}
}

// ComputeExpectation checks the traffic read by reader against the bit-string
// bs. Positions are evaluated from 0 up to and including the most significant
// set bit. Per-position problems are reported in the result. The returned
// error is only set for fatal problems: a set bit beyond the positions of
// resolver (matching mapping.ErrIndex), an unresolvable position, or a
// canceled context.
func ComputeExpectation(ctx context.Context, bs bier.BitString, resolver mapping.Resolver,
	reader trace.Reader, opts ...Option) (Result, error) {

	o := options{parallelism: trace.DefaultParallelism}
	for _, opt := range opts {
		opt(&o)
	}
	if bs.Len() > resolver.NumPositions() {
		return Result{}, serrors.JoinNoStack(mapping.ErrIndex, nil,
			"position", bs.Len()-1, "positions", resolver.NumPositions())
	}

	res := Result{BitString: bs}
	var artifacts []trace.Artifact
	for _, p := range bs.Positions() {
		ref, err := resolver.Resolve(p)
		if err != nil {
			return Result{}, serrors.WrapNoStack("resolving bit position", err, "position", p)
		}
		pos := Position{Ref: ref, Bit: bs.IsSet(p)}
		if o.skip[p] || (o.linksOnly && ref.IsNode()) {
			pos.Verdict = Skipped
		} else {
			artifacts = append(artifacts, o.naming.Artifacts(ref)...)
		}
		res.Positions = append(res.Positions, pos)
	}

	obs, err := trace.LoadAll(ctx, reader, artifacts, o.parallelism)
	if err != nil {
		return Result{}, err
	}
	byPosition := make(map[uint][]trace.Observation, len(res.Positions))
	for _, ob := range obs {
		p := ob.Artifact.Position
		byPosition[p] = append(byPosition[p], ob)
	}
	for i := range res.Positions {
		pos := &res.Positions[i]
		pos.Observations = byPosition[pos.Ref.Position]
	}

	if o.reference != nil {
		res.Reference, res.HasReference = *o.reference, true
	} else {
		res.establishReference()
	}
	for i := range res.Positions {
		res.Positions[i].decide(res.Reference, res.HasReference)
	}

	logger := log.FromCtx(ctx)
	logger.Debug("Bit-string checked", "bitstring", bs.String(), "reference", res.Reference,
		"has_reference", res.HasReference, "pass", res.Pass())
	return res, nil
}

// establishReference folds over the positions in ascending order. The first
// expected position with a non-zero artifact sets the reference.
func (r *Result) establishReference() {
	for _, pos := range r.Positions {
		if !pos.Bit || pos.Verdict == Skipped {
			continue
		}
		for _, ob := range pos.Observations {
			if ob.Err == nil && ob.Count > 0 {
				r.Reference, r.HasReference = ob.Count, true
				from := pos.Ref.Position
				r.ReferenceFrom = &from
				return
			}
		}
	}
}

func (p *Position) decide(reference int, hasReference bool) {
	if p.Verdict == Skipped {
		return
	}
	if p.Bit {
		p.Expectation = Expected(reference)
	} else {
		p.Expectation = NotExpected
	}
	var missing []trace.Observation
	for _, ob := range p.Observations {
		switch {
		case ob.Missing():
			missing = append(missing, ob)
		case ob.Err != nil:
			p.fail(0, serrors.WrapNoStack("reading artifact", ob.Err, "position",
				p.Ref.Position, "artifact", ob.Artifact.Name))
			return
		case !p.Bit && ob.Count != 0:
			p.fail(ob.Count, serrors.JoinNoStack(ErrCountMismatch, nil, "position",
				p.Ref.Position, "artifact", ob.Artifact.Name, "expected", 0,
				"observed", ob.Count))
			return
		case p.Bit && !hasReference:
			p.fail(ob.Count, serrors.JoinNoStack(ErrCountMismatch, nil, "position",
				p.Ref.Position, "artifact", ob.Artifact.Name, "expected", "traffic",
				"observed", ob.Count))
			return
		case p.Bit && ob.Count != reference:
			p.fail(ob.Count, serrors.JoinNoStack(ErrCountMismatch, nil, "position",
				p.Ref.Position, "artifact", ob.Artifact.Name, "expected", reference,
				"observed", ob.Count))
			return
		}
	}
	if len(missing) == 0 {
		p.Verdict = Match
		return
	}
	err := serrors.WrapNoStack("artifact not found", missing[0].Err, "position",
		p.Ref.Position, "artifact", missing[0].Artifact.Name)
	if p.Bit {
		p.fail(0, err)
		return
	}
	p.Verdict, p.Err = Inconclusive, err
}

func (p *Position) fail(observed int, err error) {
	p.Verdict, p.Observed, p.Err = Mismatch, observed, err
}

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

package trace_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/trace"
	"github.com/bierproto/bierverify/private/trace/mock_trace"
)

func TestLoadAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifacts := []trace.Artifact{
		{Kind: trace.KindApp, Name: "app-1.txt", Position: 1},
		{Kind: trace.KindCapture, Name: "a-0.json", Position: 2},
		{Kind: trace.KindCapture, Name: "b-0.json", Position: 2},
	}
	missing := serrors.JoinNoStack(trace.ErrMissingArtifact, nil, "file", "b-0.json")

	r := mock_trace.NewMockReader(ctrl)
	r.EXPECT().Count(gomock.Any(), artifacts[0]).Return(4, nil)
	r.EXPECT().Count(gomock.Any(), artifacts[1]).Return(4, nil)
	r.EXPECT().Count(gomock.Any(), artifacts[2]).Return(0, missing)

	obs, err := trace.LoadAll(context.Background(), r, artifacts, 2)
	require.NoError(t, err)
	require.Len(t, obs, 3)
	for i, o := range obs {
		assert.Equal(t, artifacts[i], o.Artifact)
	}
	assert.Equal(t, 4, obs[0].Count)
	assert.False(t, obs[0].Missing())
	assert.Equal(t, 4, obs[1].Count)
	assert.True(t, obs[2].Missing())
	assert.ErrorIs(t, obs[2].Err, trace.ErrMissingArtifact)
}

// delayReader answers slower for earlier artifacts.
type delayReader struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (r *delayReader) Count(ctx context.Context, a trace.Artifact) (int, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		m := r.maxSeen.Load()
		if n <= m || r.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	select {
	case <-time.After(time.Duration(10-a.Position) * time.Millisecond):
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return int(a.Position), nil
}

func TestLoadAllKeepsOrder(t *testing.T) {
	var artifacts []trace.Artifact
	for i := uint(0); i < 10; i++ {
		artifacts = append(artifacts, trace.Artifact{Kind: trace.KindCapture, Position: i})
	}
	r := &delayReader{}
	obs, err := trace.LoadAll(context.Background(), r, artifacts, 3)
	require.NoError(t, err)
	for i, o := range obs {
		assert.Equal(t, i, o.Count)
	}
	assert.LessOrEqual(t, r.maxSeen.Load(), int32(3))
}

func TestLoadAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	artifacts := []trace.Artifact{{Kind: trace.KindApp, Name: "app-0.txt"}}
	_, err := trace.LoadAll(ctx, &delayReader{}, artifacts, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

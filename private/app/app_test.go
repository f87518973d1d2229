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

package app_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bierproto/bierverify/pkg/log"
	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/app"
)

func TestExitCode(t *testing.T) {
	base := serrors.New("scenario failed")
	testCases := map[string]struct {
		Err      error
		Expected int
	}{
		"nil":      {Err: nil, Expected: -1},
		"plain":    {Err: base, Expected: -1},
		"attached": {Err: app.WithExitCode(base, app.ExitFail), Expected: app.ExitFail},
		"wrapped": {
			Err:      serrors.Wrap("running", app.WithExitCode(base, app.ExitFatal)),
			Expected: app.ExitFatal,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, app.ExitCode(tc.Err))
		})
	}
	assert.ErrorIs(t, app.WithExitCode(base, 1), base)
}

func TestSetupLog(t *testing.T) {
	defer log.Discard()
	assert.NoError(t, app.SetupLog(""))
	assert.NoError(t, app.SetupLog("debug"))
	assert.Error(t, app.SetupLog("loud"))
}

func TestColorEnabled(t *testing.T) {
	assert.False(t, app.ColorEnabled(&bytes.Buffer{}, false))
	assert.False(t, app.ColorEnabled(&bytes.Buffer{}, true))
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, app.VersionInfo(), "Version")
}

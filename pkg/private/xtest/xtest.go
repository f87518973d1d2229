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

// Package xtest implements common functionality for unit tests.
package xtest

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenFiles registers the '-update' flag for the test.
//
// Golden file tests check this flag to decide whether the golden files are
// rewritten instead of compared. Golden files must be deterministic.
//
// To update the golden files of a package, run:
//
//	go test ./path/to/package -update
//
// The flag is registered as a package global variable:
//
//	var update = xtest.UpdateGoldenFiles()
func UpdateGoldenFiles() *bool {
	return flag.Bool("update", false, "set to regenerate the golden files")
}

// ExpandPath returns testdata/file.
func ExpandPath(file string) string {
	return filepath.Join("testdata", file)
}

// MustWriteToFile writes b to file testdata/baseName. If the file exists, it
// is truncated; if it doesn't exist, it is created.
func MustWriteToFile(t testing.TB, b []byte, baseName string) {
	t.Helper()

	name := ExpandPath(baseName)
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0755))
	require.NoError(t, os.WriteFile(name, b, 0644))
}

// MustReadFromFile reads testdata/baseName and returns the raw content.
func MustReadFromFile(t testing.TB, baseName string) []byte {
	t.Helper()

	b, err := os.ReadFile(ExpandPath(baseName))
	require.NoError(t, err)
	return b
}

// AssertGolden compares actual with the golden file testdata/baseName. If
// update is set, the golden file is rewritten instead.
func AssertGolden(t testing.TB, update bool, actual []byte, baseName string) {
	t.Helper()

	if update {
		MustWriteToFile(t, actual, baseName)
	}
	assert.Equal(t, string(MustReadFromFile(t, baseName)), string(actual))
}

// AssertErrorsIs checks that errors.Is(actualErr, expectedErr) returns true,
// if expectedErr is not nil.
func AssertErrorsIs(t testing.TB, actualErr, expectedErr error) {
	t.Helper()

	if expectedErr == nil {
		assert.NoError(t, actualErr)
		return
	}
	assert.True(t, errors.Is(actualErr, expectedErr), "Expect '%v' to be or contain '%v'",
		actualErr, expectedErr)
}

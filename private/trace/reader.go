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
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bierproto/bierverify/pkg/private/serrors"
)

var (
	// ErrMissingArtifact indicates that a trace file does not exist.
	ErrMissingArtifact = errors.New("missing artifact")
	// ErrMalformedArtifact indicates that a trace file cannot be decoded.
	ErrMalformedArtifact = errors.New("malformed artifact")
)

// Reader derives the observed packet count of an artifact.
type Reader interface {
	// Count returns the number of packets recorded in artifact a. It returns an
	// error matching ErrMissingArtifact if the artifact does not exist.
	Count(ctx context.Context, a Artifact) (int, error)
}

// Dir reads artifacts from a trace directory.
type Dir struct {
	// Root is the trace directory.
	Root string
	// CaptureFormat is the encoding of capture artifacts. The zero value is
	// FormatJSON.
	CaptureFormat Format
	// CaptureFilter selects the counted packets of pcap captures.
	CaptureFilter Filter
	// AppRecord frames the records of application logs. If nil,
	// DefaultAppRecordPattern is used.
	AppRecord *regexp.Regexp
}

var _ Reader = Dir{}

// Count implements Reader.
func (d Dir) Count(ctx context.Context, a Artifact) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	file := filepath.Join(d.Root, a.Name)
	f, err := os.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, serrors.JoinNoStack(ErrMissingArtifact, nil, "file", file)
	}
	if err != nil {
		return 0, serrors.Wrap("opening artifact", err, "file", file)
	}
	defer f.Close()

	var n int
	switch {
	case a.Kind == KindApp:
		n, err = CountRecords(f, d.AppRecord)
	case d.CaptureFormat == FormatPcap:
		n, err = CountPcap(f, d.CaptureFilter)
	default:
		n, err = CountJSON(f)
	}
	if err != nil {
		return 0, serrors.WrapNoStack("reading artifact", err, "file", file,
			"kind", a.Kind)
	}
	return n, nil
}

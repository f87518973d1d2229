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

// Package trace loads the traces captured during an emulation run and derives
// observed packet counts from them.
//
// Two kinds of artifacts exist: per-interface packet captures, named after the
// node and the local interface index, and per-receiver application logs, named
// after the bit position of the receiving node.
package trace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bierproto/bierverify/pkg/bier/mapping"
	"github.com/bierproto/bierverify/pkg/private/serrors"
)

// Kind is the kind of an artifact.
type Kind int

const (
	// KindCapture is a per-interface packet capture.
	KindCapture Kind = iota
	// KindApp is a per-receiver application log.
	KindApp
)

func (k Kind) String() string {
	switch k {
	case KindCapture:
		return "capture"
	case KindApp:
		return "app"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Artifact identifies one trace file.
type Artifact struct {
	Kind Kind `json:"kind" yaml:"kind"`
	// Name is the file name relative to the trace directory.
	Name string `json:"name" yaml:"name"`
	// Position is the bit position the artifact is checked for.
	Position uint `json:"-" yaml:"-"`
}

// Template placeholders.
const (
	PlaceholderNode      = "{node}"
	PlaceholderInterface = "{intf}"
	PlaceholderPosition  = "{bp}"
	PlaceholderBIFT      = "{bift}"
)

// Default artifact name templates.
const (
	DefaultJSONCaptureTemplate = "{node}-{intf}.json"
	DefaultPcapCaptureTemplate = "{node}-{intf}.pcap"
	DefaultAppTemplate         = "app-{bp}.txt"
)

// Naming derives artifact names from resolved bit positions.
type Naming struct {
	// CaptureTemplate names per-interface captures.
	CaptureTemplate string
	// AppTemplate names per-receiver application logs.
	AppTemplate string
	// BIFT is substituted for the {bift} placeholder.
	BIFT string
}

// Artifacts returns the artifacts associated with ref: the application log of
// a node, or the captures of both link endpoints in endpoint order.
func (n Naming) Artifacts(ref mapping.Ref) []Artifact {
	if ref.IsNode() {
		return []Artifact{{
			Kind:     KindApp,
			Name:     n.expand(n.appTemplate(), ref.Name, 0, ref.Position),
			Position: ref.Position,
		}}
	}
	return []Artifact{
		{
			Kind:     KindCapture,
			Name:     n.expand(n.captureTemplate(), ref.A.Name, ref.A.Interface, ref.Position),
			Position: ref.Position,
		},
		{
			Kind:     KindCapture,
			Name:     n.expand(n.captureTemplate(), ref.B.Name, ref.B.Interface, ref.Position),
			Position: ref.Position,
		},
	}
}

func (n Naming) captureTemplate() string {
	if n.CaptureTemplate == "" {
		return DefaultJSONCaptureTemplate
	}
	return n.CaptureTemplate
}

func (n Naming) appTemplate() string {
	if n.AppTemplate == "" {
		return DefaultAppTemplate
	}
	return n.AppTemplate
}

func (n Naming) expand(tmpl, node string, intf, pos uint) string {
	return strings.NewReplacer(
		PlaceholderNode, node,
		PlaceholderInterface, strconv.FormatUint(uint64(intf), 10),
		PlaceholderPosition, strconv.FormatUint(uint64(pos), 10),
		PlaceholderBIFT, n.BIFT,
	).Replace(tmpl)
}

// ValidateTemplate checks that tmpl only uses known placeholders and contains
// the ones in required.
func ValidateTemplate(tmpl string, required ...string) error {
	if tmpl == "" {
		return serrors.New("empty template")
	}
	for _, r := range required {
		if !strings.Contains(tmpl, r) {
			return serrors.New("template lacks placeholder", "template", tmpl,
				"placeholder", r)
		}
	}
	rest := strings.NewReplacer(
		PlaceholderNode, "",
		PlaceholderInterface, "",
		PlaceholderPosition, "",
		PlaceholderBIFT, "",
	).Replace(tmpl)
	if strings.ContainsAny(rest, "{}") {
		return serrors.New("template contains an unknown placeholder", "template", tmpl)
	}
	return nil
}

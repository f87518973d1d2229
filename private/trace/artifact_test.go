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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bierproto/bierverify/pkg/bier/mapping"
	"github.com/bierproto/bierverify/private/trace"
)

func TestNamingArtifacts(t *testing.T) {
	link := mapping.LinkRef(7,
		mapping.Endpoint{Node: 1, Name: "b", Interface: 2},
		mapping.Endpoint{Node: 3, Name: "d", Interface: 0},
	)
	node := mapping.NodeRef(4, "e")

	testCases := map[string]struct {
		Naming   trace.Naming
		Ref      mapping.Ref
		Expected []trace.Artifact
	}{
		"node defaults": {
			Ref: node,
			Expected: []trace.Artifact{
				{Kind: trace.KindApp, Name: "app-4.txt", Position: 4},
			},
		},
		"link defaults": {
			Ref: link,
			Expected: []trace.Artifact{
				{Kind: trace.KindCapture, Name: "b-2.json", Position: 7},
				{Kind: trace.KindCapture, Name: "d-0.json", Position: 7},
			},
		},
		"custom templates": {
			Naming: trace.Naming{
				CaptureTemplate: "{bift}/{node}-eth{intf}.pcap",
				AppTemplate:     "{bift}/{node}-{bp}.log",
				BIFT:            "bift1",
			},
			Ref: link,
			Expected: []trace.Artifact{
				{Kind: trace.KindCapture, Name: "bift1/b-eth2.pcap", Position: 7},
				{Kind: trace.KindCapture, Name: "bift1/d-eth0.pcap", Position: 7},
			},
		},
		"custom app template": {
			Naming: trace.Naming{AppTemplate: "{node}-{bp}.log"},
			Ref:    node,
			Expected: []trace.Artifact{
				{Kind: trace.KindApp, Name: "e-4.log", Position: 4},
			},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, tc.Naming.Artifacts(tc.Ref))
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	testCases := map[string]struct {
		Template  string
		Required  []string
		Assertion assert.ErrorAssertionFunc
	}{
		"default capture": {
			Template:  trace.DefaultJSONCaptureTemplate,
			Required:  []string{trace.PlaceholderNode, trace.PlaceholderInterface},
			Assertion: assert.NoError,
		},
		"default app": {
			Template:  trace.DefaultAppTemplate,
			Required:  []string{trace.PlaceholderPosition},
			Assertion: assert.NoError,
		},
		"with bift": {
			Template:  "{bift}/app-{bp}.txt",
			Assertion: assert.NoError,
		},
		"empty": {
			Assertion: assert.Error,
		},
		"missing required": {
			Template:  "{node}.json",
			Required:  []string{trace.PlaceholderNode, trace.PlaceholderInterface},
			Assertion: assert.Error,
		},
		"unknown placeholder": {
			Template:  "{node}-{port}.json",
			Assertion: assert.Error,
		},
		"unbalanced brace": {
			Template:  "{node-{intf}.json",
			Assertion: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			tc.Assertion(t, trace.ValidateTemplate(tc.Template, tc.Required...))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "capture", trace.KindCapture.String())
	assert.Equal(t, "app", trace.KindApp.String())
	assert.Equal(t, "Kind(9)", trace.Kind(9).String())
}

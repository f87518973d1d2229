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

// Package config provides a common pattern for configuration structs.
//
// Every configuration struct implements the Config interface, which has three
// parts:
//
//   - InitDefaults sets all fields that were left empty to their defaults.
//   - Validate checks the values of all fields, recursively.
//   - Sample writes a commented TOML sample of the struct.
//
// Sample output must decode into the struct without error, and the decoded
// values must equal the defaults. Every config struct has a unit test that
// checks this.
//
// Sample may panic if writing fails.
package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/bierproto/bierverify/pkg/private/serrors"
)

// Config is implemented by all configuration structs.
type Config interface {
	Sampler
	Validator
	Defaulter
}

// Validator defines the validation part of Config.
type Validator interface {
	// Validate recursively checks that all fields contain valid values.
	Validate() error
}

// Defaulter defines the initialization part of Config.
type Defaulter interface {
	// InitDefaults recursively initializes the default values of all
	// uninitialized fields.
	InitDefaults()
}

// Sampler defines the sample generation part of Config.
type Sampler interface {
	// Sample writes a sample config to dst. ctx provides values that are
	// substituted into the sample. Sample panics if an error occurs.
	Sample(dst io.Writer, path Path, ctx CtxMap)
}

// TableSampler is a Sampler that is written as its own TOML table.
type TableSampler interface {
	Sampler
	// ConfigName returns the name of the table.
	ConfigName() string
}

// Path is the header of a table, possibly consisting of multiple parts.
type Path []string

// Extend creates a copy of the path with s appended.
func (p Path) Extend(s string) Path {
	c := append(Path(nil), p...)
	return append(c, s)
}

// StringSampler is a Sampler that writes Text and has the ConfigName Name.
type StringSampler struct {
	// Text is the sample.
	Text string
	// Name is the config name.
	Name string
}

// Sample writes the text to dst.
func (s StringSampler) Sample(dst io.Writer, _ Path, _ CtxMap) {
	WriteString(dst, s.Text)
}

// ConfigName returns the name.
func (s StringSampler) ConfigName() string {
	return s.Name
}

// ValidateAll validates all validators. The first error encountered is
// returned.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return serrors.Wrap("Unable to validate", err, "type", fmt.Sprintf("%T", v))
		}
	}
	return nil
}

// InitAll initializes all defaulters.
func InitAll(defaulters ...Defaulter) {
	for _, v := range defaulters {
		v.InitDefaults()
	}
}

// Decode decodes a raw TOML config. Unknown keys are rejected.
func Decode(raw []byte, cfg any) error {
	return toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(cfg)
}

// LoadFile loads the config from location, see LoadResource.
func LoadFile(location string, cfg any) error {
	rc, err := LoadResource(location)
	if err != nil {
		return err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return serrors.Wrap("reading config", err, "location", location)
	}
	if err := Decode(raw, cfg); err != nil {
		return serrors.Wrap("decoding config", err, "location", location)
	}
	return nil
}

type formatDataSampler struct {
	Sampler
	data []any
}

func (s formatDataSampler) Sample(dst io.Writer, path Path, ctx CtxMap) {
	buf := &bytes.Buffer{}
	s.Sampler.Sample(buf, path, ctx)
	WriteString(dst, fmt.Sprintf(buf.String(), s.data...))
}

// FormatData creates a sampler that calls fmt.Sprintf on the sample written
// by s with the supplied arguments.
func FormatData(s Sampler, a ...any) Sampler {
	return formatDataSampler{Sampler: s, data: a}
}

// LoadResource returns a reader for the resource at location.
//
// If location starts with "http://" or "https://", LoadResource issues an
// HTTP GET and returns the body of the reply. Otherwise location is a file
// path.
//
// The caller must close the returned reader.
func LoadResource(location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		response, err := http.Get(location)
		if err != nil {
			return nil, serrors.Wrap("fetching config over HTTP", err)
		}
		if response.StatusCode != http.StatusOK {
			response.Body.Close()
			return nil, serrors.New("fetching config over HTTP", "status", response.Status)
		}
		return response.Body, nil
	}
	rc, err := os.Open(location)
	if err != nil {
		return nil, serrors.Wrap("loading config from disk", err)
	}
	return rc, nil
}

// Digest calculates the SHA256 sum of the JSON encoding of cfg.
func Digest(cfg any) ([]byte, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

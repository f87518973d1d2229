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

package log

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option is a function that sets an option.
type Option func(o *options)

type options struct {
	zapOpts        []zap.Option
	entriesCounter EntriesCounter
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EntriesCounter defines the metrics that are incremented when emitting a log
// entry. Nil counters are skipped.
type EntriesCounter struct {
	Debug prometheus.Counter
	Info  prometheus.Counter
	Error prometheus.Counter
}

func (c EntriesCounter) hook() func(zapcore.Entry) error {
	if c.Debug == nil && c.Info == nil && c.Error == nil {
		return nil
	}
	return func(e zapcore.Entry) error {
		var counter prometheus.Counter
		switch {
		case e.Level >= zapcore.ErrorLevel:
			counter = c.Error
		case e.Level == zapcore.InfoLevel || e.Level == zapcore.WarnLevel:
			counter = c.Info
		default:
			counter = c.Debug
		}
		if counter != nil {
			counter.Inc()
		}
		return nil
	}
}

// WithEntriesCounter configures a metric that counts the emitted log entries
// per level.
func WithEntriesCounter(m EntriesCounter) Option {
	return func(o *options) {
		o.entriesCounter = m
	}
}

// AddCallerSkip increases the number of callers skipped by caller annotation.
func AddCallerSkip(skip int) Option {
	return func(o *options) {
		o.zapOpts = append(o.zapOpts, zap.AddCallerSkip(skip))
	}
}
